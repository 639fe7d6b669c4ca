// Package interp is the interpreter core (specification component A):
// the microstep/macrostep execution loop that drives one running
// SCXML session from its initial configuration to termination.
//
// Grounded on the teacher's core/step.go Spec.Step/Spec.Walk, which
// plays the analogous "take one step, then take as many as you can"
// role for a flat branch-based machine; this package generalizes that
// loop to hierarchical/parallel states, the W3C microstep/macrostep
// procedure, and executable content, while keeping the teacher's
// Logf/Errorf-gated logging convention from sio/crew.go.
package interp

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/ioprocessor"
	"github.com/nburns/scxml/ir"
	"github.com/nburns/scxml/registry"
	"github.com/nburns/scxml/timers"
	"github.com/nburns/scxml/value"
)

// Session is one running instance of a compiled document.
//
// A Session is owned by exactly one goroutine (its Run loop); every
// other exported method that mutates session state is only safe to
// call from that goroutine. Cross-goroutine delivery happens only
// through the external queue and the Session Registry, matching the
// specification's one-worker-per-session concurrency model.
type Session struct {
	ID   string
	Name string
	Doc  *ir.Doc
	DM   datamodel.DataModel

	Verbose bool

	configuration  map[ir.StateIndex]bool
	historyValue   map[ir.StateIndex][]ir.StateIndex
	statesToInvoke []ir.StateIndex

	Internal *event.InternalQueue
	External *event.ExternalQueue

	Scheduler *timers.Scheduler
	Registry  *registry.Registry

	processors map[string]ioprocessor.Processor
	invokers   map[string]Invoker

	dataBound map[ir.StateIndex]bool

	mu             sync.Mutex
	invokes        map[string]InvokeHandle
	invokeStates   map[string]ir.StateIndex
	invokeSpecs    map[string]*ir.Invoke
	autoforwardIDs map[string]bool

	Parent         *event.ExternalQueue
	ParentInvokeID string

	running  bool
	doneCh   chan struct{}
	doneData value.Value
}

// Options configures a new Session.
type Options struct {
	ID             string
	Doc            *ir.Doc
	DM             datamodel.DataModel
	Processors     map[string]ioprocessor.Processor
	Invokers       map[string]Invoker
	Registry       *registry.Registry
	Scheduler      *timers.Scheduler
	Parent         *event.ExternalQueue
	ParentInvokeID string
	Verbose        bool
}

// New builds a Session ready for Start.
func New(opts Options) *Session {
	s := &Session{
		ID:             opts.ID,
		Name:           opts.Doc.Name,
		Doc:            opts.Doc,
		DM:             opts.DM,
		Verbose:        opts.Verbose,
		configuration:  make(map[ir.StateIndex]bool, 8),
		historyValue:   make(map[ir.StateIndex][]ir.StateIndex, 4),
		dataBound:      make(map[ir.StateIndex]bool, 8),
		Internal:       event.NewInternalQueue(),
		External:       event.NewExternalQueue(),
		Scheduler:      opts.Scheduler,
		Registry:       opts.Registry,
		processors:     opts.Processors,
		invokers:       opts.Invokers,
		invokes:        make(map[string]InvokeHandle, 4),
		invokeStates:   make(map[string]ir.StateIndex, 4),
		invokeSpecs:    make(map[string]*ir.Invoke, 4),
		autoforwardIDs: make(map[string]bool, 4),
		Parent:         opts.Parent,
		ParentInvokeID: opts.ParentInvokeID,
		doneCh:         make(chan struct{}),
	}
	if s.Scheduler == nil {
		s.Scheduler = timers.New()
	}
	if s.processors == nil {
		s.processors = map[string]ioprocessor.Processor{}
	}
	if s.invokers == nil {
		s.invokers = map[string]Invoker{}
	}
	s.DM.SetInPredicate(s.IsInState)
	s.ensureDefaultProcessor()
	return s
}

func (s *Session) Logf(format string, args ...interface{}) {
	if !s.Verbose {
		return
	}
	log.Printf("session %s: "+format, append([]interface{}{s.ID}, args...)...)
}

func (s *Session) Errorf(format string, args ...interface{}) {
	log.Printf("session %s: ERROR "+format, append([]interface{}{s.ID}, args...)...)
}

// IsInState implements the In(id) datamodel builtin: true if any
// state with that id is in the active configuration.
func (s *Session) IsInState(stateID string) bool {
	for idx := range s.configuration {
		if s.Doc.States[idx].ID == stateID {
			return true
		}
	}
	return false
}

// Done reports a channel that closes once the session reaches a top-
// level final state or is otherwise terminated.
func (s *Session) Done() <-chan struct{} { return s.doneCh }

// DoneData returns the data produced by the top-level final state's
// <donedata>, if any.
func (s *Session) DoneData() value.Value { return s.doneData }

// ioProcessorNames returns the stable-sorted list of processor keys,
// for InitializeGlobal's _ioprocessors binding.
func (s *Session) ioProcessorNames() []string {
	names := make([]string, 0, len(s.processors))
	for name := range s.processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start performs the specification's interpret/initialization
// procedure: binds system variables, evaluates top-level <datamodel>,
// runs the root <script> if any, and enters the initial
// configuration.
func (s *Session) Start(ctx context.Context) error {
	if err := s.DM.InitializeGlobal(s.ID, s.Name, s.ioProcessorNames()); err != nil {
		return fmt.Errorf("initializing global data model: %w", err)
	}
	if s.Registry != nil {
		s.Registry.Register(s)
	}
	root := s.Doc.States[s.Doc.Root]
	if err := s.initializeDatamodel(root); err != nil {
		return err
	}
	if s.Doc.Script != "" {
		if err := s.DM.ExecuteScript(s.Doc.Script); err != nil {
			return fmt.Errorf("executing top-level script: %w", err)
		}
	}

	s.running = true
	var transitions []*ir.Transition
	if root.Initial != nil {
		transitions = []*ir.Transition{root.Initial}
	}
	s.microstep(ctx, transitions)
	s.executeInvokes(ctx)
	s.runEventlessTransitions(ctx)
	s.checkTermination()
	return nil
}

// initializeDatamodel binds <data> per Doc.Binding: "early" declares
// every state's <data> up front, before the initial configuration is
// entered; "late" declares only the root's (root is always entered
// at Start), leaving every other state's <data> for enterStates to
// declare on that state's first entry.
func (s *Session) initializeDatamodel(root *ir.State) error {
	if s.Doc.Binding == "late" {
		return s.declareStateData(root.Index)
	}
	for _, st := range s.Doc.States {
		if err := s.declareStateData(st.Index); err != nil {
			return err
		}
	}
	return nil
}

// declareStateData declares idx's own <data> elements, if they have
// not already been declared. Early binding declares every state up
// front in initializeDatamodel, so by the time any state is entered
// this is a no-op; late binding leaves dataBound unset until each
// state's first entry, when enterStates calls this before running
// onentry, and the dataBound guard keeps a later re-entry (e.g. via
// history) from re-initializing and clobbering the data.
func (s *Session) declareStateData(idx ir.StateIndex) error {
	if s.dataBound[idx] {
		return nil
	}
	s.dataBound[idx] = true
	for _, d := range s.Doc.State(idx).Datamodel {
		if err := s.DM.DeclareData(d.ID, d.Expr); err != nil {
			return fmt.Errorf("declaring data %q: %w", d.ID, err)
		}
	}
	return nil
}

// Run drives the session's macrostep loop: block for an external
// event, run a macrostep, repeat until the session reaches a
// top-level final state, the context is canceled, or the external
// queue is closed.
func (s *Session) Run(ctx context.Context) {
	defer close(s.doneCh)
	for s.running {
		ev, ok := s.External.Dequeue(ctx)
		if !ok {
			s.Logf("external queue closed or context done, stopping")
			return
		}
		s.processExternalEvent(ctx, ev)
		if !s.running {
			return
		}
	}
}

func (s *Session) processExternalEvent(ctx context.Context, ev event.Event) {
	s.Logf("processing external event %q", ev.Name)
	if ev.SendID != "" {
		// A <cancel> may have raced the delivery; nothing further to
		// do here since Scheduler.Cancel already prevents delivery
		// for genuinely canceled sends.
	}
	s.setEventVariable(ev, "external")
	s.runFinalize(ctx, ev)
	s.autoforward(ev)
	transitions := s.selectTransitions(ev)
	if len(transitions) > 0 {
		s.microstep(ctx, transitions)
	}
	s.executeInvokes(ctx)
	s.runEventlessTransitions(ctx)
	s.checkTermination()
}

// runEventlessTransitions drains the internal queue and follows
// eventless transitions until neither produces further progress,
// implementing the macrostep's inner loop.
func (s *Session) runEventlessTransitions(ctx context.Context) {
	for s.running {
		if transitions := s.selectEventlessTransitions(); len(transitions) > 0 {
			s.microstep(ctx, transitions)
			s.executeInvokes(ctx)
			continue
		}
		if s.Internal.Empty() {
			return
		}
		ev := s.Internal.Pop()
		s.Logf("processing internal event %q", ev.Name)
		s.setEventVariable(ev, "internal")
		if transitions := s.selectTransitions(ev); len(transitions) > 0 {
			s.microstep(ctx, transitions)
			s.executeInvokes(ctx)
		}
	}
}

// runFinalize executes the <finalize> block of the <invoke> that
// produced ev, if any, before ev is otherwise processed — per the
// specification's rule that finalize runs on every event whose
// invokeid names one of this session's still-active invocations,
// ahead of ordinary transition selection for that event.
func (s *Session) runFinalize(ctx context.Context, ev event.Event) {
	if ev.InvokeID == "" {
		return
	}
	s.mu.Lock()
	inv, ok := s.invokeSpecs[ev.InvokeID]
	s.mu.Unlock()
	if !ok || len(inv.Finalize) == 0 {
		return
	}
	s.executeContent(ctx, inv.Finalize)
}

func (s *Session) setEventVariable(ev event.Event, kind string) {
	if err := s.DM.SetEventVariable(ev.AsMap(kind)); err != nil {
		s.Errorf("setting _event: %v", err)
	}
}

// checkTermination stops the session once the active configuration
// contains a top-level final state, per the specification's
// top-level-final-state termination rule.
func (s *Session) checkTermination() {
	if !s.running {
		return
	}
	for idx := range s.configuration {
		st := s.Doc.States[idx]
		if st.Kind == ir.KindFinal && st.Parent == s.Doc.Root {
			s.Logf("reached top-level final state %q, terminating", st.ID)
			s.doneData = s.evalDoneData(st)
			s.exitInterpreter()
			return
		}
	}
}

func (s *Session) exitInterpreter() {
	s.running = false
	s.Scheduler.CancelAll()
	for _, h := range s.invokes {
		_ = h.Cancel()
	}
	if s.Registry != nil {
		s.Registry.Deregister(s.ID)
	}
	if s.Parent != nil && s.ParentInvokeID != "" {
		s.Parent.Enqueue(event.Event{
			Name:     "done.invoke." + s.ParentInvokeID,
			InvokeID: s.ParentInvokeID,
			Data:     s.doneData,
		})
	}
	s.External.Close()
}
