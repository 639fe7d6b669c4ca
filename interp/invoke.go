package interp

import (
	"context"
	"fmt"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/ioprocessor/scxmlprocessor"
	"github.com/nburns/scxml/ir"
	"github.com/nburns/scxml/value"
)

// Invoker starts one <invoke> on behalf of parent and returns a
// handle the parent can later Cancel. Grounded on the teacher's
// crew.Machine construction in cmd/mcrew, which likewise builds and
// starts a fresh worker from a spec handed to it by an enclosing
// process.
type Invoker func(ctx context.Context, parent *Session, inv *ir.Invoke, invokeID string) (InvokeHandle, error)

// InvokeHandle lets the invoking session stop an invocation when its
// containing state is exited or the session itself terminates.
type InvokeHandle interface {
	Cancel() error
}

// externalQueueHandle is implemented by handles that can be
// autoforwarded to and targeted by "#_<invokeid>" sends; the bundled
// in-process invoker's handle satisfies it.
type externalQueueHandle interface {
	ExternalQueue() *event.ExternalQueue
}

// NewInProcessInvoker returns an Invoker that runs the invoked
// document as another Session in this process, wiring its Parent
// queue back to parent's External queue so done.invoke.<id> and
// <send target="#_parent"> reach the invoking session. newDM builds
// a fresh, unshared data model instance for the child.
func NewInProcessInvoker(newDM func() datamodel.DataModel) Invoker {
	return func(ctx context.Context, parent *Session, inv *ir.Invoke, invokeID string) (InvokeHandle, error) {
		doc := inv.InlineDoc
		if doc == nil {
			return nil, fmt.Errorf("invoke %q: no document available (src resolution is not supported)", invokeID)
		}

		child := New(Options{
			ID:             invokeID,
			Doc:            doc,
			DM:             newDM(),
			Processors:     parent.processors,
			Invokers:       parent.invokers,
			Registry:       parent.Registry,
			Scheduler:      parent.Scheduler,
			Parent:         parent.External,
			ParentInvokeID: invokeID,
			Verbose:        parent.Verbose,
		})

		for _, name := range inv.Namelist {
			v, err := parent.DM.EvaluateValue(name)
			if err != nil {
				return nil, fmt.Errorf("invoke %q namelist %q: %w", invokeID, name, err)
			}
			if err := child.DM.DeclareData(name, ""); err != nil {
				return nil, fmt.Errorf("invoke %q namelist %q: %w", invokeID, name, err)
			}
			if err := child.DM.Assign(name, v); err != nil {
				return nil, fmt.Errorf("invoke %q namelist %q: %w", invokeID, name, err)
			}
		}
		for _, p := range inv.Params {
			expr := p.Expr
			if expr == "" {
				expr = p.Location
			}
			v, err := parent.DM.EvaluateValue(expr)
			if err != nil {
				return nil, fmt.Errorf("invoke %q param %q: %w", invokeID, p.Name, err)
			}
			if err := child.DM.DeclareData(p.Name, ""); err != nil {
				return nil, fmt.Errorf("invoke %q param %q: %w", invokeID, p.Name, err)
			}
			if err := child.DM.Assign(p.Name, v); err != nil {
				return nil, fmt.Errorf("invoke %q param %q: %w", invokeID, p.Name, err)
			}
		}

		go func() {
			if err := child.Start(ctx); err != nil {
				child.Errorf("invoked session failed to start: %v", err)
				return
			}
			child.Run(ctx)
		}()

		return &sessionInvokeHandle{child: child}, nil
	}
}

type sessionInvokeHandle struct {
	child *Session
}

func (h *sessionInvokeHandle) Cancel() error { return h.child.Cancel() }

func (h *sessionInvokeHandle) ExternalQueue() *event.ExternalQueue { return h.child.External }

// Cancel stops a session from the outside: its containing session is
// exiting or its <invoke> is being canceled directly. Unlike
// exitInterpreter, Cancel never notifies a parent session, since the
// parent is the one doing the canceling.
func (s *Session) Cancel() error {
	if !s.running {
		return nil
	}
	s.running = false
	s.Scheduler.CancelAll()
	s.mu.Lock()
	handles := make([]InvokeHandle, 0, len(s.invokes))
	for _, h := range s.invokes {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	for _, h := range handles {
		_ = h.Cancel()
	}
	if s.Registry != nil {
		s.Registry.Deregister(s.ID)
	}
	s.External.Close()
	return nil
}

// SessionID implements registry.Handle.
func (s *Session) SessionID() string { return s.ID }

// Deliver implements registry.Handle: another session in this
// process is targeting us via "#_scxml_<sessionid>".
func (s *Session) Deliver(name string, data interface{}, origin, origintype string) error {
	s.External.Enqueue(event.Event{Name: name, Data: toValue(data), Origin: origin, OriginType: origintype})
	return nil
}

func toValue(data interface{}) value.Value {
	switch d := data.(type) {
	case nil:
		return value.None
	case value.Value:
		return d
	case string:
		return value.NewString(d)
	case bool:
		return value.NewBoolean(d)
	case int:
		return value.NewInteger(int64(d))
	case int64:
		return value.NewInteger(d)
	case float64:
		return value.NewDouble(d)
	default:
		return value.NewErrorf("unsupported delivered data type %T", data)
	}
}

// InvokeQueue implements scxmlprocessor.InvokeRouter, resolving
// "#_<invokeid>" targets and autoforwarding to this session's own
// invoked children.
func (s *Session) InvokeQueue(invokeID string) (*event.ExternalQueue, bool) {
	s.mu.Lock()
	h, ok := s.invokes[invokeID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	eq, ok := h.(externalQueueHandle)
	if !ok {
		return nil, false
	}
	return eq.ExternalQueue(), true
}

// ensureDefaultProcessor wires the bundled SCXML Event I/O Processor
// in under its shorthand and full type URI unless the caller already
// supplied one, so every session can use <send>'s implicit target,
// #_internal, #_parent, and #_<invokeid> without extra Options wiring.
func (s *Session) ensureDefaultProcessor() {
	if _, ok := s.processors[scxmlprocessor.TypeShorthand]; ok {
		return
	}
	p := &scxmlprocessor.Processor{
		SessionID: s.ID,
		Internal:  s.Internal,
		External:  s.External,
		Parent:    s.Parent,
		Invokes:   s,
		Registry:  s.Registry,
	}
	s.processors[scxmlprocessor.TypeShorthand] = p
	s.processors[scxmlprocessor.Type] = p
}

// processorFor resolves a <send type="..."> value (literal URI or
// shorthand) to a registered Event I/O Processor.
func (s *Session) processorFor(typ string) (interface {
	Send(string, event.Event) error
}, bool) {
	p, ok := s.processors[typ]
	return p, ok
}

// executeInvokes implements the specification's executeInvokes:
// start every <invoke> belonging to a state entered since the last
// call, skipping any whose containing state has since been exited
// again within the same macrostep.
func (s *Session) executeInvokes(ctx context.Context) {
	pending := s.statesToInvoke
	s.statesToInvoke = nil
	for _, idx := range pending {
		if !s.configuration[idx] {
			continue
		}
		st := s.Doc.State(idx)
		for _, inv := range st.Invokes {
			s.startInvoke(ctx, idx, inv)
		}
	}
}

func (s *Session) startInvoke(ctx context.Context, idx ir.StateIndex, inv *ir.Invoke) {
	typ := inv.Type
	if typ == "" && inv.TypeExpr != "" {
		v, err := s.DM.EvaluateValue(inv.TypeExpr)
		if err != nil {
			s.raiseExecutionError("invoke typeexpr %q: %v", inv.TypeExpr, err)
			return
		}
		typ = v.String()
	}
	if typ == "" {
		typ = scxmlprocessor.TypeShorthand
	}

	invokeID := inv.ID
	if invokeID == "" {
		invokeID = s.ID + "." + ir.Gensym(8)
	}
	if inv.IDLocation != "" {
		if err := s.DM.Assign(inv.IDLocation, value.NewString(invokeID)); err != nil {
			s.raiseExecutionError("invoke idlocation %q: %v", inv.IDLocation, err)
		}
	}

	invoker, ok := s.invokers[typ]
	if !ok {
		s.raiseCommunicationError("no invoker registered for type %q", typ)
		return
	}

	handle, err := invoker(ctx, s, inv, invokeID)
	if err != nil {
		s.raiseCommunicationError("invoke %q: %v", invokeID, err)
		return
	}

	s.mu.Lock()
	s.invokes[invokeID] = handle
	s.invokeStates[invokeID] = idx
	s.invokeSpecs[invokeID] = inv
	if inv.Autoforward {
		s.autoforwardIDs[invokeID] = true
	}
	s.mu.Unlock()
}

// cancelInvokesIn cancels every invocation owned by the state being
// exited, per the specification's "cancel the invoke" exit action.
func (s *Session) cancelInvokesIn(idx ir.StateIndex) {
	s.mu.Lock()
	var toCancel []InvokeHandle
	for id, owner := range s.invokeStates {
		if owner != idx {
			continue
		}
		toCancel = append(toCancel, s.invokes[id])
		delete(s.invokes, id)
		delete(s.invokeStates, id)
		delete(s.invokeSpecs, id)
		delete(s.autoforwardIDs, id)
	}
	s.mu.Unlock()
	for _, h := range toCancel {
		_ = h.Cancel()
	}
}

// autoforward implements the specification's rule that autoforwarded
// external events are delivered to every currently invoked child
// whose <invoke autoforward="true">.
func (s *Session) autoforward(ev event.Event) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.autoforwardIDs))
	for id := range s.autoforwardIDs {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		if q, ok := s.InvokeQueue(id); ok {
			q.Enqueue(ev)
		}
	}
}
