// Package ioprocessor defines the Event I/O Processor trait
// (specification component E) that <send>'s type attribute selects
// among, plus the fixed location/target URI conventions every
// processor must honor. Grounded on the teacher's sio/couplings.go
// Couplings interface, which plays the same "pluggable transport
// behind a small interface" role for a crew's IO.
package ioprocessor

import "github.com/nburns/scxml/event"

// Location is the URI a processor exposes as the session's binding
// for itself in _ioprocessors, e.g. "scxml:sessionid" for the
// SCXML processor.
type Location string

// Processor is an Event I/O Processor: something capable of sending
// an event to a target named by a type-specific URI, and of
// identifying where it can be reached (its Location).
type Processor interface {
	// Type is the URI or shorthand <send type="..."> selects.
	Type() string

	// Location returns the processor's own address, bound into
	// _ioprocessors[type].location in the sending session's data
	// model.
	Location(sessionID string) string

	// Send delivers ev to target. target's syntax is processor
	// specific; the bundled SCXML processor understands
	// "#_internal", "#_parent", "#_<invokeid>",
	// "#_scxml_<sessionid>", and the implicit same-session target.
	Send(target string, ev event.Event) error
}
