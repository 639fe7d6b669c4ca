package interp

import (
	"context"
	"testing"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/exprlang"
	"github.com/nburns/scxml/ir"
)

func stateIdx(d *ir.Doc, id string) ir.StateIndex {
	for _, st := range d.States {
		if st.ID == id {
			return st.Index
		}
	}
	return ir.NoState
}

func TestParallelRegionsBothDoneTerminates(t *testing.T) {
	doc, err := ir.ParallelRegionsDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "par1", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	s.processExternalEvent(ctx, event.Event{Name: "e1"})
	if !s.isInFinalState(stateIdx(doc, "r1")) {
		t.Fatal("expected region r1 to be done")
	}
	if !s.running {
		t.Fatal("session should still be running with only one region done")
	}

	s.processExternalEvent(ctx, event.Event{Name: "e2"})
	if s.running {
		t.Fatal("expected session to terminate once both regions finished")
	}
	if !s.IsInState("allDone") {
		t.Fatal("expected to reach allDone")
	}
}

func TestShallowHistoryRestoresLastActiveChild(t *testing.T) {
	doc, err := ir.ShallowHistoryDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "h1", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	s.processExternalEvent(ctx, event.Event{Name: "next"})
	if !s.IsInState("A2") {
		t.Fatal("expected to have advanced to A2")
	}

	s.processExternalEvent(ctx, event.Event{Name: "leave"})
	if !s.IsInState("B") {
		t.Fatal("expected to have left to B")
	}

	s.processExternalEvent(ctx, event.Event{Name: "back"})
	if !s.IsInState("A2") {
		t.Fatal("expected history to restore A2, not the default A1")
	}
}

func TestForeachAssignAndIfDriveCompletion(t *testing.T) {
	doc, err := ir.ForeachSumDoc()
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{ID: "ec1", Doc: doc, DM: exprlang.New()})
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.IsInState("done") {
		t.Fatal("expected foreach+assign+if to have driven straight to done")
	}
	v, err := s.DM.EvaluateValue("total")
	if err != nil {
		t.Fatal(err)
	}
	if v.Integer() != 6 {
		t.Fatalf("expected total == 6, got %v", v)
	}
}
