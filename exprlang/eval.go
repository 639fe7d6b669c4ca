package exprlang

import (
	"fmt"

	"github.com/nburns/scxml/value"
)

// Env is the evaluation environment: the datamodel's top-level
// variables plus any foreach-introduced local bindings, which shadow
// the datamodel while a <foreach> body executes.
type Env struct {
	vars    *value.OrderedMap
	locals  []map[string]*value.Value
	actions *Registry
}

// NewEnv builds an environment over a datamodel variable map.
func NewEnv(vars *value.OrderedMap, actions *Registry) *Env {
	if vars == nil {
		vars = value.NewOrderedMap()
	}
	if actions == nil {
		actions = NewRegistry()
	}
	return &Env{vars: vars, actions: actions}
}

// PushLocal introduces a new innermost shadowing frame, used by
// <foreach> for its item and index variables.
func (e *Env) PushLocal(frame map[string]*value.Value) {
	e.locals = append(e.locals, frame)
}

func (e *Env) PopLocal() {
	e.locals = e.locals[:len(e.locals)-1]
}

func (e *Env) lookup(name string) (*value.Value, bool) {
	for i := len(e.locals) - 1; i >= 0; i-- {
		if v, ok := e.locals[i][name]; ok {
			return v, true
		}
	}
	if v, ok := e.vars.Get(name); ok {
		return &v, true
	}
	return nil, false
}

// Eval evaluates a parsed expression tree against env.
func Eval(node Node, env *Env) value.Value {
	switch n := node.(type) {
	case NullLit:
		return value.Null
	case NoneLit:
		return value.None
	case BoolLit:
		return value.NewBoolean(n.Value)
	case NumberLit:
		if n.IsInt {
			return value.NewInteger(n.I)
		}
		return value.NewDouble(n.F)
	case StringLit:
		return value.NewString(n.Value)
	case arrayLit:
		items := make([]value.Value, len(n.Items))
		for i, it := range n.Items {
			items[i] = Eval(it, env)
		}
		return value.NewArray(items)
	case Ident:
		v, ok := env.lookup(n.Name)
		if !ok {
			return value.NewErrorf("undefined identifier %q", n.Name)
		}
		return *v
	case Not:
		return value.Not(Eval(n.X, env))
	case Neg:
		return value.Neg(Eval(n.X, env))
	case Field:
		return evalField(n, env)
	case Index:
		return evalIndex(n, env)
	case Call:
		return evalCall(n, env)
	case BinOp:
		return evalBinOp(n, env)
	case Assign:
		return evalAssign(n, env)
	case ExprList:
		var last value.Value
		for _, item := range n.Items {
			last = Eval(item, env)
		}
		return last
	default:
		return value.NewErrorf("unhandled expression node %T", node)
	}
}

func evalField(n Field, env *Env) value.Value {
	x := Eval(n.X, env)
	if x.IsError() {
		return x
	}
	if x.Kind != value.KindMap {
		return value.NewErrorf("field %q not defined for %s", n.Name, x.Kind)
	}
	v, ok := x.Map().Get(n.Name)
	if !ok {
		return value.NewErrorf("no such field %q", n.Name)
	}
	return v
}

func evalIndex(n Index, env *Env) value.Value {
	x := Eval(n.X, env)
	if x.IsError() {
		return x
	}
	idx := Eval(n.Index, env)
	if idx.IsError() {
		return idx
	}
	switch x.Kind {
	case value.KindArray:
		i, ok := idx.AsFloat()
		if !ok {
			return value.NewErrorf("array index must be numeric, got %s", idx.Kind)
		}
		arr := x.Array()
		ii := int(i)
		if ii < 0 || ii >= len(arr) {
			return value.NewErrorf("array index %d out of range (len %d)", ii, len(arr))
		}
		return arr[ii]
	case value.KindMap:
		if idx.Kind != value.KindString {
			return value.NewErrorf("map index must be a string, got %s", idx.Kind)
		}
		v, ok := x.Map().Get(idx.String())
		if !ok {
			return value.NewErrorf("no such key %q", idx.String())
		}
		return v
	default:
		return value.NewErrorf("indexing not defined for %s", x.Kind)
	}
}

// evalCall handles both top-level "method(args)" and postfix
// "receiver.method(args)". The grammar has no Map method syntax of
// its own, so every Call dispatches to the Action Registry; a
// receiver.method(args) call is the postfix fallback for when the
// field name is not a Map entry but a registered Action.
func evalCall(n Call, env *Env) value.Value {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = Eval(a, env)
		if args[i].IsError() {
			return args[i]
		}
	}
	if n.Receiver == nil {
		fn, ok := env.actions.Lookup(n.Method)
		if !ok {
			return value.NewErrorf("no such action %q", n.Method)
		}
		return fn(nil, args)
	}
	recv := Eval(n.Receiver, env)
	if recv.IsError() {
		return recv
	}
	fn, ok := env.actions.Lookup(n.Method)
	if !ok {
		return value.NewErrorf("%q is neither a field of %s nor a registered action", n.Method, recv.Kind)
	}
	return fn(&recv, args)
}

func evalBinOp(n BinOp, env *Env) value.Value {
	l := Eval(n.L, env)
	if l.IsError() {
		return l
	}
	r := Eval(n.R, env)
	if r.IsError() {
		return r
	}
	switch n.Op {
	case "+":
		return value.Add(l, r)
	case "-":
		return value.Sub(l, r)
	case "*":
		return value.Mul(l, r)
	case "/":
		return value.Div(l, r)
	case ":":
		return value.Ratio(l, r)
	case "%":
		return value.Mod(l, r)
	case "&":
		return value.And(l, r)
	case "|":
		return value.Or(l, r)
	case "==":
		return value.NewBoolean(value.Equal(l, r))
	case "!=":
		// Accepted as the plain inverse of '==': the grammar lists no
		// distinct semantics for '!=' beyond negating equality.
		return value.NewBoolean(!value.Equal(l, r))
	case "<", "<=", ">", ">=":
		cmp, ok := value.Compare(l, r)
		if !ok {
			return value.NewErrorf("%q not defined for %s and %s", n.Op, l.Kind, r.Kind)
		}
		switch n.Op {
		case "<":
			return value.NewBoolean(cmp < 0)
		case "<=":
			return value.NewBoolean(cmp <= 0)
		case ">":
			return value.NewBoolean(cmp > 0)
		case ">=":
			return value.NewBoolean(cmp >= 0)
		}
	}
	return value.NewErrorf("unknown operator %q", n.Op)
}

func evalAssign(n Assign, env *Env) value.Value {
	v := Eval(n.Value, env)
	if v.IsError() {
		return v
	}
	if err := assignTo(n.Target, v, env, n.Op == "?="); err != nil {
		return value.NewError(err.Error())
	}
	return v
}

func assignTo(target Node, v value.Value, env *Env, create bool) error {
	switch t := target.(type) {
	case Ident:
		for i := len(env.locals) - 1; i >= 0; i-- {
			if p, ok := env.locals[i][t.Name]; ok {
				*p = v
				return nil
			}
		}
		if _, ok := env.vars.Get(t.Name); !ok && !create {
			return fmt.Errorf("assignment to undeclared location %q", t.Name)
		}
		env.vars.Set(t.Name, v)
		return nil
	case Field:
		x := Eval(t.X, env)
		if x.IsError() {
			return fmt.Errorf(x.ErrorMessage())
		}
		if x.Kind != value.KindMap {
			return fmt.Errorf("cannot assign field %q on a %s", t.Name, x.Kind)
		}
		if _, ok := x.Map().Get(t.Name); !ok && !create {
			return fmt.Errorf("assignment to undeclared location %q", t.Name)
		}
		x.Map().Set(t.Name, v)
		return nil
	case Index:
		x := Eval(t.X, env)
		if x.IsError() {
			return fmt.Errorf(x.ErrorMessage())
		}
		idx := Eval(t.Index, env)
		if idx.IsError() {
			return fmt.Errorf(idx.ErrorMessage())
		}
		switch x.Kind {
		case value.KindArray:
			i, ok := idx.AsFloat()
			if !ok {
				return fmt.Errorf("array index must be numeric, got %s", idx.Kind)
			}
			arr := x.Array()
			ii := int(i)
			if ii < 0 || ii >= len(arr) {
				return fmt.Errorf("array index %d out of range (len %d)", ii, len(arr))
			}
			arr[ii] = v
			return nil
		case value.KindMap:
			if idx.Kind != value.KindString {
				return fmt.Errorf("map index must be a string, got %s", idx.Kind)
			}
			if _, ok := x.Map().Get(idx.String()); !ok && !create {
				return fmt.Errorf("assignment to undeclared location %q", idx.String())
			}
			x.Map().Set(idx.String(), v)
			return nil
		default:
			return fmt.Errorf("indexed assignment not defined for %s", x.Kind)
		}
	default:
		return fmt.Errorf("invalid assignment target %T", target)
	}
}
