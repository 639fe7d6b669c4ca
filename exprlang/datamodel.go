package exprlang

import (
	"fmt"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/value"
)

// Model adapts the bundled expression language to the datamodel.DataModel
// trait. It owns one Env per session and is never shared across
// sessions, matching the interpreter core's single-worker-per-session
// rule.
type Model struct {
	env *Env
}

// New builds an empty bundled-language data model.
func New() *Model {
	return &Model{env: NewEnv(value.NewOrderedMap(), NewRegistry())}
}

var _ datamodel.DataModel = (*Model)(nil)

func (m *Model) InitializeGlobal(sessionID, name string, ioProcessorNames []string) error {
	m.env.vars.Set("_sessionid", value.NewString(sessionID))
	m.env.vars.Set("_name", value.NewString(name))
	procs := value.NewOrderedMap()
	for _, p := range ioProcessorNames {
		procs.Set(p, value.NewMap(value.NewOrderedMap()))
	}
	m.env.vars.Set("_ioprocessors", value.NewMap(procs))
	m.env.vars.Set("_event", value.None)
	return nil
}

func (m *Model) DeclareData(id, expr string) error {
	if expr == "" {
		m.env.vars.Set(id, value.None)
		return nil
	}
	v, err := m.eval(expr)
	if err != nil {
		return err
	}
	m.env.vars.Set(id, v)
	return nil
}

func (m *Model) EvaluateValue(expr string) (value.Value, error) {
	return m.eval(expr)
}

func (m *Model) EvaluateCondition(expr string) (bool, error) {
	v, err := m.eval(expr)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

func (m *Model) EvaluateLocation(expr string) (datamodel.LocationHandle, error) {
	node, err := Parse(expr)
	if err != nil {
		return "", err
	}
	switch node.(type) {
	case Ident, Field, Index:
		return datamodel.LocationHandle(expr), nil
	default:
		return "", fmt.Errorf("%q is not a valid assignment location", expr)
	}
}

func (m *Model) Assign(location string, v value.Value) error {
	target, err := Parse(location)
	if err != nil {
		return err
	}
	return assignTo(target, v, m.env, true)
}

func (m *Model) ExecuteScript(src string) error {
	node, err := Parse(src)
	if err != nil {
		return err
	}
	result := Eval(node, m.env)
	if result.IsError() {
		return fmt.Errorf(result.ErrorMessage())
	}
	return nil
}

func (m *Model) SetEventVariable(ev value.Value) error {
	m.env.vars.Set("_event", ev)
	return nil
}

func (m *Model) SetInPredicate(pred func(stateID string) bool) {
	m.env.actions.SetInPredicate(pred)
}

func (m *Model) Snapshot() value.Value {
	return value.NewMap(m.env.vars.Copy())
}

func (m *Model) eval(expr string) (value.Value, error) {
	node, err := Parse(expr)
	if err != nil {
		return value.Value{}, err
	}
	result := Eval(node, m.env)
	if result.IsError() {
		return value.Value{}, fmt.Errorf(result.ErrorMessage())
	}
	return result, nil
}
