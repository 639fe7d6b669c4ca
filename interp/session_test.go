package interp

import (
	"context"
	"testing"
	"time"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/exprlang"
	"github.com/nburns/scxml/ir"
)

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate")
	}
}

func TestEventlessChainReachesTopLevelFinal(t *testing.T) {
	doc, err := ir.EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "s1", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	go s.Run(ctx)
	waitDone(t, s)
	if s.running {
		t.Fatal("expected session to have stopped running")
	}
}

func TestExternalEventDrivesTransitionToFinal(t *testing.T) {
	doc, err := ir.ExternalEventDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "s2", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if s.IsInState("done") {
		t.Fatal("should not be done before the event arrives")
	}
	go s.Run(ctx)
	s.External.Enqueue(event.Event{Name: "go"})
	waitDone(t, s)
	if !s.IsInState("done") {
		t.Fatal("expected to reach the done state")
	}
}

func TestInvokeFinalizeRunsBeforeTransitionSelection(t *testing.T) {
	doc, err := ir.InvokeFinalizeDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{
		ID:  "s4",
		Doc: doc,
		DM:  exprlang.New(),
		Invokers: map[string]Invoker{
			"scxml": NewInProcessInvoker(func() datamodel.DataModel { return exprlang.New() }),
		},
	})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	go s.Run(ctx)
	waitDone(t, s)
	if !s.IsInState("done") {
		t.Fatal("expected the child's signal to drive the parent to done")
	}
	v, err := s.DM.EvaluateValue("finalized")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Boolean() {
		t.Fatal("expected finalize to have run and recorded finalized=true")
	}
}

func TestLateBindingDeclaresOnFirstEntryOnly(t *testing.T) {
	doc, err := ir.LateBindingDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "s5", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	go s.Run(ctx)
	s.External.Enqueue(event.Event{Name: "next"})
	s.External.Enqueue(event.Event{Name: "back"})
	s.External.Enqueue(event.Event{Name: "finish"})
	waitDone(t, s)

	seen, err := s.DM.EvaluateValue("seen")
	if err != nil {
		t.Fatal(err)
	}
	if seen.Integer() != 2 {
		t.Fatalf("expected seen == 2 (A entered twice), got %v", seen)
	}
	count, err := s.DM.EvaluateValue("count")
	if err != nil {
		t.Fatal(err)
	}
	if count.Integer() != 3 {
		t.Fatalf("expected count == 3 (late-bound data kept across re-entry, not reset), got %v", count)
	}
}

func TestIsInStateReflectsConfiguration(t *testing.T) {
	doc, err := ir.ExternalEventDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "s3", Doc: doc, DM: exprlang.New()})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.IsInState("waiting") {
		t.Fatal("expected to start in waiting")
	}
	if s.IsInState("nonexistent") {
		t.Fatal("should not report an unknown state as active")
	}
}
