// Package datamodel defines the trait every data-model
// implementation must satisfy (specification component B). The
// interpreter core depends only on this interface, never on a
// concrete expression language, so the bundled exprlang model and
// the ECMA-backed model plug in identically.
//
// Grounded on the teacher's core/actions.go Interpreter interface,
// which the same way separates "what the stepper needs done" from
// "how a specific action implementation does it".
package datamodel

import "github.com/nburns/scxml/value"

// LocationHandle names a bound piece of data: a datamodel variable,
// an array element, or a map field. It is opaque to the interpreter
// core, which only ever passes back a string location expression the
// underlying data model parses itself.
type LocationHandle string

// DataModel is the trait SCXML's <datamodel>, <assign>, <if>,
// <foreach> and the cond/expr attributes are evaluated against.
//
// Implementations must be safe to call only from the single worker
// goroutine that owns the session; the interpreter core never shares
// one DataModel across sessions or calls it concurrently.
type DataModel interface {
	// InitializeGlobal populates the system variables every session
	// exposes: _sessionid, _name, _event, _ioprocessors, and (if
	// present) _x for invoke-returned data.
	InitializeGlobal(sessionID, name string, ioProcessorNames []string) error

	// DeclareData binds a <data> element's id to the value its expr
	// (or inline content) evaluates to. An empty expr binds None.
	DeclareData(id, expr string) error

	// EvaluateValue evaluates expr and returns its value. Errors in
	// the expression are returned as Go errors, per the
	// specification's error-handling design: the interpreter core
	// turns them into error.execution events, not panics.
	EvaluateValue(expr string) (value.Value, error)

	// EvaluateCondition evaluates a <transition cond="..."> or
	// <if cond="..."> expression and applies truthiness coercion.
	EvaluateCondition(expr string) (bool, error)

	// EvaluateLocation resolves a location expression (an <assign
	// location="...">, or a <foreach> item/index target) to a handle
	// the model can later Assign through.
	EvaluateLocation(expr string) (LocationHandle, error)

	// Assign stores value at the location named by the location
	// expression, creating the binding if it does not already exist.
	Assign(location string, v value.Value) error

	// ExecuteScript runs a <script> body for side effects only.
	ExecuteScript(src string) error

	// SetEventVariable updates the system _event variable ahead of
	// running a state's executable content for a processed event.
	SetEventVariable(ev value.Value) error

	// SetInPredicate wires the In(stateID) builtin (or ECMA
	// equivalent) to the session's active-configuration membership
	// test. Called once at session construction.
	SetInPredicate(pred func(stateID string) bool)

	// Snapshot exports the current variable bindings as a Map value,
	// used to populate <donedata> namelist/content and <invoke>
	// namelist parameters without re-evaluating expressions that
	// reference local scope.
	Snapshot() value.Value
}
