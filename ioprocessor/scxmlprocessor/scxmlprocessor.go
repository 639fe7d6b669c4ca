// Package scxmlprocessor implements the bundled SCXML Event I/O
// Processor every session carries, routing the fixed target forms
// the specification requires: "#_internal", "#_parent",
// "#_<invokeid>", "#_scxml_<sessionid>", and the implicit
// same-session target. Grounded on the teacher's sio/captainspec.go
// and sio/couplings.go, which route a crew-level operation to the
// right machine or channel by a similarly small fixed vocabulary of
// target strings.
package scxmlprocessor

import (
	"fmt"
	"strings"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/registry"
)

// Type is the URI <send type="..."> recognizes as this processor,
// along with its shorthand.
const (
	Type          = "http://www.w3.org/TR/scxml/#SCXMLEventProcessor"
	TypeShorthand = "scxml"
)

// InvokeRouter resolves an invokeid to the child session's external
// queue, for "#_<invokeid>" targets and autoforwarding.
type InvokeRouter interface {
	InvokeQueue(invokeID string) (*event.ExternalQueue, bool)
}

// Processor is the SCXML processor for one session.
type Processor struct {
	SessionID string
	Internal  *event.InternalQueue
	External  *event.ExternalQueue
	// Parent is the enclosing session's external queue, non-nil only
	// when this session was started by <invoke>.
	Parent *event.ExternalQueue
	// Invokes resolves invokeid targets for this session's own
	// <invoke> children.
	Invokes InvokeRouter
	// Registry resolves "#_scxml_<sessionid>" targets to another
	// session anywhere in the process.
	Registry *registry.Registry
}

func (p *Processor) Type() string { return Type }

func (p *Processor) Location(sessionID string) string {
	return fmt.Sprintf("#_scxml_%s", sessionID)
}

// Send routes ev according to target's fixed vocabulary. An empty
// target means "this session's own external queue", per the
// specification's default-target rule.
func (p *Processor) Send(target string, ev event.Event) error {
	switch {
	case target == "" || target == "#_scxml_"+p.SessionID:
		p.External.Enqueue(ev)
		return nil
	case target == "#_internal":
		p.Internal.Push(ev)
		return nil
	case target == "#_parent":
		if p.Parent == nil {
			return fmt.Errorf("session %s has no parent session to target", p.SessionID)
		}
		ev.InvokeID = p.SessionID
		p.Parent.Enqueue(ev)
		return nil
	case strings.HasPrefix(target, "#_scxml_"):
		sessionID := strings.TrimPrefix(target, "#_scxml_")
		h, ok := p.Registry.Lookup(sessionID)
		if !ok {
			return fmt.Errorf("no registered session %q", sessionID)
		}
		return h.Deliver(ev.Name, ev.Data, p.Location(p.SessionID), Type)
	case strings.HasPrefix(target, "#_"):
		invokeID := strings.TrimPrefix(target, "#_")
		if p.Invokes == nil {
			return fmt.Errorf("session %s has no invoked children", p.SessionID)
		}
		q, ok := p.Invokes.InvokeQueue(invokeID)
		if !ok {
			return fmt.Errorf("no invoked child %q", invokeID)
		}
		q.Enqueue(ev)
		return nil
	default:
		return fmt.Errorf("unrecognized scxml processor target %q", target)
	}
}
