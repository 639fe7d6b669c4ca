// Package ecmadatamodel implements the ECMAScript-compatible
// datamodel.DataModel using goja (specification component B's second
// implementation). Grounded on the teacher's interpreters/goja/goja.go
// Interpreter, which runs compiled goja.Programs against a runtime
// populated with ctx/bindings/props globals and a handful of host
// functions (out, log, match, gensym); this package keeps the same
// "populate globals, RunProgram, Export the result" shape but exposes
// the SCXML system variables and In() predicate instead of sheens'
// action-level globals.
package ecmadatamodel

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/value"
)

// Model adapts a goja.Runtime to the datamodel.DataModel trait. One
// Model is created per session and never shared, matching the
// interpreter core's single-worker-per-session rule; goja.Runtime
// itself is not safe for concurrent use.
type Model struct {
	rt *goja.Runtime
}

// New builds an ECMAScript data model with a fresh goja.Runtime.
func New() *Model {
	m := &Model{rt: goja.New()}
	m.rt.Set("In", func(id string) bool { return false })
	return m
}

var _ datamodel.DataModel = (*Model)(nil)

func (m *Model) InitializeGlobal(sessionID, name string, ioProcessorNames []string) error {
	m.rt.Set("_sessionid", sessionID)
	m.rt.Set("_name", name)
	procs := make(map[string]interface{}, len(ioProcessorNames))
	for _, p := range ioProcessorNames {
		procs[p] = map[string]interface{}{}
	}
	m.rt.Set("_ioprocessors", procs)
	m.rt.Set("_event", nil)
	return nil
}

func (m *Model) DeclareData(id, expr string) error {
	if expr == "" {
		m.rt.Set(id, goja.Undefined())
		return nil
	}
	v, err := m.rt.RunString(expr)
	if err != nil {
		return err
	}
	m.rt.Set(id, v)
	return nil
}

func (m *Model) EvaluateValue(expr string) (value.Value, error) {
	v, err := m.rt.RunString(expr)
	if err != nil {
		return value.Value{}, err
	}
	return exportValue(v), nil
}

func (m *Model) EvaluateCondition(expr string) (bool, error) {
	v, err := m.rt.RunString(expr)
	if err != nil {
		return false, err
	}
	return exportValue(v).Truthy(), nil
}

func (m *Model) EvaluateLocation(expr string) (datamodel.LocationHandle, error) {
	// A location is any assignable ECMAScript reference expression;
	// goja has no static way to validate this ahead of assignment,
	// so the check happens lazily in Assign.
	return datamodel.LocationHandle(expr), nil
}

func (m *Model) Assign(location string, v value.Value) error {
	m.rt.Set("__scxml_assign_value", toGoja(m.rt, v))
	_, err := m.rt.RunString(fmt.Sprintf("%s = __scxml_assign_value;", location))
	return err
}

func (m *Model) ExecuteScript(src string) error {
	_, err := m.rt.RunString(src)
	return err
}

func (m *Model) SetEventVariable(ev value.Value) error {
	m.rt.Set("_event", toGoja(m.rt, ev))
	return nil
}

func (m *Model) SetInPredicate(pred func(stateID string) bool) {
	m.rt.Set("In", func(id string) bool {
		if pred == nil {
			return false
		}
		return pred(id)
	})
}

func (m *Model) Snapshot() value.Value {
	global := m.rt.GlobalObject()
	out := value.NewOrderedMap()
	for _, k := range global.Keys() {
		v := global.Get(k)
		out.Set(k, exportValue(v))
	}
	return value.NewMap(out)
}

func exportValue(v goja.Value) value.Value {
	if v == nil || goja.IsUndefined(v) {
		return value.None
	}
	if goja.IsNull(v) {
		return value.Null
	}
	return fromGo(v.Export())
}

func fromGo(x interface{}) value.Value {
	switch vv := x.(type) {
	case nil:
		return value.Null
	case bool:
		return value.NewBoolean(vv)
	case int64:
		return value.NewInteger(vv)
	case int:
		return value.NewInteger(int64(vv))
	case float64:
		if float64(int64(vv)) == vv {
			return value.NewInteger(int64(vv))
		}
		return value.NewDouble(vv)
	case string:
		return value.NewString(vv)
	case []interface{}:
		items := make([]value.Value, len(vv))
		for i, it := range vv {
			items[i] = fromGo(it)
		}
		return value.NewArray(items)
	case map[string]interface{}:
		m := value.NewOrderedMap()
		for k, v := range vv {
			m.Set(k, fromGo(v))
		}
		return value.NewMap(m)
	default:
		return value.NewString(fmt.Sprintf("%v", vv))
	}
}

func toGoja(rt *goja.Runtime, v value.Value) interface{} {
	switch v.Kind {
	case value.KindNull, value.KindNone:
		return nil
	case value.KindInteger:
		return v.Integer()
	case value.KindDouble:
		return v.Double()
	case value.KindBoolean:
		return v.Boolean()
	case value.KindString:
		return v.String()
	case value.KindArray:
		out := make([]interface{}, len(v.Array()))
		for i, it := range v.Array() {
			out[i] = toGoja(rt, it)
		}
		return out
	case value.KindMap:
		out := make(map[string]interface{}, v.Map().Len())
		v.Map().Range(func(k string, vv value.Value) {
			out[k] = toGoja(rt, vv)
		})
		return out
	default:
		return v.String()
	}
}
