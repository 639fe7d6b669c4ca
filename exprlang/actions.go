package exprlang

import "github.com/nburns/scxml/value"

// ActionFunc is a registered built-in. recv is nil for a top-level
// call (method(args...)); non-nil for the postfix form
// (receiver.method(args...)).
type ActionFunc func(recv *value.Value, args []value.Value) value.Value

// Registry is the Action Registry (specification component C): the
// set of built-in functions the expression grammar's Call production
// dispatches to, keyed by name. Grounded on the teacher's
// interpreters registry pattern in core/actions.go, which keys a
// dynamic-dispatch table by action name rather than switching on a
// closed set of Go types.
type Registry struct {
	fns map[string]ActionFunc
}

// NewRegistry builds a Registry preloaded with the grammar's
// standard built-ins.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]ActionFunc, 8)}
	r.Register("abs", actionAbs)
	r.Register("length", actionLength)
	r.Register("isDefined", actionIsDefined)
	r.Register("indexOf", actionIndexOf)
	r.Register("In", actionIn)
	return r
}

func (r *Registry) Register(name string, fn ActionFunc) {
	r.fns[name] = fn
}

func (r *Registry) Lookup(name string) (ActionFunc, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// SetInPredicate wires the "In(stateID)" built-in to a configuration
// membership test; until wired, In always reports false.
func (r *Registry) SetInPredicate(pred func(stateID string) bool) {
	r.Register("In", func(recv *value.Value, args []value.Value) value.Value {
		if len(args) != 1 || args[0].Kind != value.KindString {
			return value.NewError("In() expects a single string argument")
		}
		if pred == nil {
			return value.NewBoolean(false)
		}
		return value.NewBoolean(pred(args[0].String()))
	})
}

func actionAbs(recv *value.Value, args []value.Value) value.Value {
	x := firstArg(recv, args)
	if x == nil {
		return value.NewError("abs() expects one argument")
	}
	switch x.Kind {
	case value.KindInteger:
		i := x.Integer()
		if i < 0 {
			i = -i
		}
		return value.NewInteger(i)
	case value.KindDouble:
		f := x.Double()
		if f < 0 {
			f = -f
		}
		return value.NewDouble(f)
	default:
		return value.NewErrorf("abs() not defined for %s", x.Kind)
	}
}

func actionLength(recv *value.Value, args []value.Value) value.Value {
	x := firstArg(recv, args)
	if x == nil {
		return value.NewError("length() expects one argument")
	}
	switch x.Kind {
	case value.KindArray:
		return value.NewInteger(int64(len(x.Array())))
	case value.KindString:
		return value.NewInteger(int64(len(x.String())))
	case value.KindMap:
		return value.NewInteger(int64(x.Map().Len()))
	default:
		return value.NewErrorf("length() not defined for %s", x.Kind)
	}
}

func actionIsDefined(recv *value.Value, args []value.Value) value.Value {
	x := firstArg(recv, args)
	if x == nil {
		return value.NewBoolean(false)
	}
	return value.NewBoolean(!x.IsNone() && !x.IsError())
}

func actionIndexOf(recv *value.Value, args []value.Value) value.Value {
	var arr value.Value
	var target value.Value
	if recv != nil {
		arr = *recv
		if len(args) != 1 {
			return value.NewError("indexOf() expects one argument")
		}
		target = args[0]
	} else {
		if len(args) != 2 {
			return value.NewError("indexOf() expects two arguments")
		}
		arr = args[0]
		target = args[1]
	}
	if arr.Kind != value.KindArray {
		return value.NewErrorf("indexOf() not defined for %s", arr.Kind)
	}
	for i, v := range arr.Array() {
		if value.Equal(v, target) {
			return value.NewInteger(int64(i))
		}
	}
	return value.NewInteger(-1)
}

// actionIn is the default In() implementation before the
// interpreter wires SetInPredicate; it is never used by a running
// session since interp always calls SetInPredicate at session start.
func actionIn(recv *value.Value, args []value.Value) value.Value {
	return value.NewBoolean(false)
}

func firstArg(recv *value.Value, args []value.Value) *value.Value {
	if recv != nil {
		return recv
	}
	if len(args) > 0 {
		return &args[0]
	}
	return nil
}
