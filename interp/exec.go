package interp

import (
	"context"
	"log"
	"time"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/ir"
	"github.com/nburns/scxml/value"
)

// raiseExecutionError pushes an error.execution event onto the
// internal queue, per the specification's error-handling design:
// expression and executable-content failures become ordinary SCXML
// events, never Go panics.
func (s *Session) raiseExecutionError(format string, args ...interface{}) {
	msg := value.NewErrorf(format, args...)
	s.Errorf("%s", msg.ErrorMessage())
	s.Internal.Push(event.Event{Name: "error.execution", Data: msg})
}

func (s *Session) raiseCommunicationError(format string, args ...interface{}) {
	msg := value.NewErrorf(format, args...)
	s.Errorf("%s", msg.ErrorMessage())
	s.Internal.Push(event.Event{Name: "error.communication", Data: msg})
}

// executeContent runs a block of executable content in document
// order, matching the specification's executeContentBlock.
func (s *Session) executeContent(ctx context.Context, block []ir.Content) {
	for _, c := range block {
		s.executeOne(ctx, c)
	}
}

func (s *Session) executeOne(ctx context.Context, c ir.Content) {
	switch n := c.(type) {
	case ir.Raise:
		s.Internal.Push(event.Event{Name: n.Event})
	case ir.Send:
		s.execSend(ctx, n)
	case ir.Cancel:
		s.execCancel(n)
	case ir.Assign:
		s.execAssign(n)
	case ir.Log:
		s.execLog(n)
	case ir.If:
		s.execIf(ctx, n)
	case ir.Foreach:
		s.execForeach(ctx, n)
	case ir.Script:
		if err := s.DM.ExecuteScript(n.Src); err != nil {
			s.raiseExecutionError("script: %v", err)
		}
	default:
		s.raiseExecutionError("unhandled executable content %T", c)
	}
}

func (s *Session) execLog(n ir.Log) {
	v, err := s.DM.EvaluateValue(n.Expr)
	if err != nil {
		s.raiseExecutionError("log expr %q: %v", n.Expr, err)
		return
	}
	if n.Label != "" {
		log.Printf("[%s] %s: %s", s.ID, n.Label, v.String())
	} else {
		log.Printf("[%s] %s", s.ID, v.String())
	}
}

func (s *Session) execAssign(n ir.Assign) {
	v, err := s.DM.EvaluateValue(n.Expr)
	if err != nil {
		s.raiseExecutionError("assign expr %q: %v", n.Expr, err)
		return
	}
	if err := s.DM.Assign(n.Location, v); err != nil {
		s.raiseExecutionError("assign to %q: %v", n.Location, err)
	}
}

func (s *Session) execIf(ctx context.Context, n ir.If) {
	for _, clause := range n.Clauses {
		if clause.Cond == "" {
			s.executeContent(ctx, clause.Body)
			return
		}
		ok, err := s.DM.EvaluateCondition(clause.Cond)
		if err != nil {
			s.raiseExecutionError("if cond %q: %v", clause.Cond, err)
			continue
		}
		if ok {
			s.executeContent(ctx, clause.Body)
			return
		}
	}
}

func (s *Session) execForeach(ctx context.Context, n ir.Foreach) {
	arr, err := s.DM.EvaluateValue(n.Array)
	if err != nil {
		s.raiseExecutionError("foreach array %q: %v", n.Array, err)
		return
	}
	if arr.Kind != value.KindArray {
		s.raiseExecutionError("foreach array %q is not an array (%s)", n.Array, arr.Kind)
		return
	}
	for i, item := range arr.Array() {
		if err := s.DM.Assign(n.Item, item); err != nil {
			s.raiseExecutionError("foreach item %q: %v", n.Item, err)
			return
		}
		if n.Index != "" {
			if err := s.DM.Assign(n.Index, value.NewInteger(int64(i))); err != nil {
				s.raiseExecutionError("foreach index %q: %v", n.Index, err)
				return
			}
		}
		s.executeContent(ctx, n.Body)
	}
}

func (s *Session) execCancel(n ir.Cancel) {
	id := n.SendID
	if id == "" && n.SendIDExpr != "" {
		v, err := s.DM.EvaluateValue(n.SendIDExpr)
		if err != nil {
			s.raiseExecutionError("cancel sendidexpr %q: %v", n.SendIDExpr, err)
			return
		}
		id = v.String()
	}
	s.Scheduler.Cancel(id)
}

func (s *Session) execSend(ctx context.Context, n ir.Send) {
	name := n.Event
	if name == "" && n.EventExpr != "" {
		v, err := s.DM.EvaluateValue(n.EventExpr)
		if err != nil {
			s.raiseExecutionError("send eventexpr %q: %v", n.EventExpr, err)
			return
		}
		name = v.String()
	}

	target := n.Target
	if target == "" && n.TargetExpr != "" {
		v, err := s.DM.EvaluateValue(n.TargetExpr)
		if err != nil {
			s.raiseCommunicationError("send targetexpr %q: %v", n.TargetExpr, err)
			return
		}
		target = v.String()
	}

	typ := n.Type
	if typ == "" && n.TypeExpr != "" {
		v, err := s.DM.EvaluateValue(n.TypeExpr)
		if err != nil {
			s.raiseCommunicationError("send typeexpr %q: %v", n.TypeExpr, err)
			return
		}
		typ = v.String()
	}
	if typ == "" {
		typ = "scxml"
	}

	sendID := n.ID
	if sendID == "" {
		sendID = ir.Gensym(16)
	}
	if n.IDLocation != "" {
		if err := s.DM.Assign(n.IDLocation, value.NewString(sendID)); err != nil {
			s.raiseExecutionError("send idlocation %q: %v", n.IDLocation, err)
		}
	}

	data := s.buildSendData(n)
	ev := event.Event{Name: name, SendID: sendID, Data: data, Origin: s.selfLocation(), OriginType: typ}

	delay, err := s.resolveDelay(n)
	if err != nil {
		s.raiseExecutionError("send delay: %v", err)
		return
	}

	proc, ok := s.processorFor(typ)
	if !ok {
		s.raiseCommunicationError("no event i/o processor for type %q", typ)
		return
	}

	if delay <= 0 {
		if err := proc.Send(target, ev); err != nil {
			s.raiseCommunicationError("send: %v", err)
		}
		return
	}
	s.Scheduler.Schedule(sendID, ev, delay, schedulerTarget{proc: proc, target: target, session: s})
}

// schedulerTarget adapts a (processor, target) pair to
// timers.Enqueuer so delayed sends route back through the same
// Event I/O Processor they would have used immediately.
type schedulerTarget struct {
	proc    interface{ Send(string, event.Event) error }
	target  string
	session *Session
}

func (t schedulerTarget) Enqueue(ev event.Event) {
	if err := t.proc.Send(t.target, ev); err != nil {
		t.session.raiseCommunicationError("delayed send: %v", err)
	}
}

func (s *Session) resolveDelay(n ir.Send) (time.Duration, error) {
	spec := n.Delay
	if spec == "" && n.DelayExpr != "" {
		v, err := s.DM.EvaluateValue(n.DelayExpr)
		if err != nil {
			return 0, err
		}
		spec = v.String()
	}
	if spec == "" {
		return 0, nil
	}
	return time.ParseDuration(spec)
}

func (s *Session) buildSendData(n ir.Send) value.Value {
	if n.Content != nil {
		if n.Content.Expr != "" {
			v, err := s.DM.EvaluateValue(n.Content.Expr)
			if err != nil {
				s.raiseExecutionError("send content expr: %v", err)
				return value.None
			}
			return v
		}
		if n.Content.Body != "" {
			return value.NewString(n.Content.Body)
		}
	}
	if len(n.Params) == 0 && len(n.Namelist) == 0 {
		return value.None
	}
	m := value.NewOrderedMap()
	for _, name := range n.Namelist {
		v, err := s.DM.EvaluateValue(name)
		if err != nil {
			s.raiseExecutionError("send namelist %q: %v", name, err)
			continue
		}
		m.Set(name, v)
	}
	for _, p := range n.Params {
		expr := p.Expr
		if expr == "" {
			expr = p.Location
		}
		v, err := s.DM.EvaluateValue(expr)
		if err != nil {
			s.raiseExecutionError("send param %q: %v", p.Name, err)
			continue
		}
		m.Set(p.Name, v)
	}
	return value.NewMap(m)
}

func (s *Session) selfLocation() string {
	return "#_scxml_" + s.ID
}
