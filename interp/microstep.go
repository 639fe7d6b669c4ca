package interp

import (
	"context"
	"sort"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/ir"
	"github.com/nburns/scxml/value"
)

// microstep implements the specification's microstep(transitions)
// procedure: exit the old states, run the transitions' own
// executable content, enter the new states, and record any
// done.state events the newly entered final states produce.
func (s *Session) microstep(ctx context.Context, transitions []*ir.Transition) {
	if len(transitions) == 0 {
		return
	}
	exitSet := s.computeExitSet(transitions)
	s.exitStates(ctx, exitSet)
	for _, t := range transitions {
		s.executeContent(ctx, t.Content)
	}
	s.enterStates(ctx, transitions)
}

// exitStates removes exitSet's states from the configuration in
// reverse document order (descendants before ancestors), recording
// history and running onexit handlers and invoke cancellation as it
// goes.
func (s *Session) exitStates(ctx context.Context, exitSet map[ir.StateIndex]bool) {
	ordered := make([]ir.StateIndex, 0, len(exitSet))
	for idx := range exitSet {
		ordered = append(ordered, idx)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] > ordered[j] })

	for _, idx := range ordered {
		st := s.Doc.State(idx)
		for _, child := range st.Children {
			if !s.Doc.State(child).Kind.IsHistory() {
				continue
			}
			s.recordHistory(child, idx, exitSet)
		}
	}

	for _, idx := range ordered {
		st := s.Doc.State(idx)
		s.executeContent(ctx, st.OnExit)
		s.cancelInvokesIn(idx)
		delete(s.configuration, idx)
	}
}

func (s *Session) recordHistory(historyIdx, parentIdx ir.StateIndex, exitSet map[ir.StateIndex]bool) {
	historyState := s.Doc.State(historyIdx)
	var recorded []ir.StateIndex
	for idx := range s.configuration {
		if !exitSet[idx] {
			continue
		}
		if historyState.Kind == ir.KindHistoryDeep {
			if s.Doc.State(idx).Kind == ir.KindAtomic || s.Doc.State(idx).Kind == ir.KindFinal {
				if s.Doc.IsDescendant(idx, parentIdx) {
					recorded = append(recorded, idx)
				}
			}
		} else {
			if s.Doc.State(idx).Parent == parentIdx {
				recorded = append(recorded, idx)
			}
		}
	}
	if len(recorded) > 0 {
		s.historyValue[historyIdx] = recorded
	}
}

// enterStates implements enterStates(transitions): compute the full
// entry set (targets, their ancestors up to the transition domain,
// and default initial descendants), then add each to the
// configuration in document order, running onentry handlers.
func (s *Session) enterStates(ctx context.Context, transitions []*ir.Transition) {
	entrySet, defaultHistoryContent := s.computeEntrySet(transitions)

	ordered := make([]ir.StateIndex, 0, len(entrySet))
	for idx := range entrySet {
		ordered = append(ordered, idx)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, idx := range ordered {
		st := s.Doc.State(idx)
		s.configuration[idx] = true
		if len(st.Invokes) > 0 {
			s.statesToInvoke = append(s.statesToInvoke, idx)
		}
		if err := s.declareStateData(idx); err != nil {
			s.raiseExecutionError("declaring data for %q: %v", st.ID, err)
		}
		s.executeContent(ctx, st.OnEntry)
		if content, have := defaultHistoryContent[idx]; have {
			s.executeContent(ctx, content)
		}
		if st.Kind == ir.KindFinal {
			s.onEnterFinalState(ctx, idx)
		}
	}
}

// computeEntrySet implements the union of addDescendantStatesToEnter
// and addAncestorStatesToEnter over every transition's effective
// targets.
func (s *Session) computeEntrySet(transitions []*ir.Transition) (map[ir.StateIndex]bool, map[ir.StateIndex][]ir.Content) {
	entrySet := make(map[ir.StateIndex]bool)
	defaultHistoryContent := make(map[ir.StateIndex][]ir.Content)

	for _, t := range transitions {
		domain := s.getTransitionDomain(t)
		for _, target := range s.effectiveTargets(t) {
			s.addDescendantStatesToEnter(target, entrySet, defaultHistoryContent)
		}
		for _, target := range s.effectiveTargets(t) {
			s.addAncestorStatesToEnter(target, domain, entrySet, defaultHistoryContent)
		}
	}
	return entrySet, defaultHistoryContent
}

func (s *Session) addDescendantStatesToEnter(idx ir.StateIndex, entrySet map[ir.StateIndex]bool, defaultHistoryContent map[ir.StateIndex][]ir.Content) {
	st := s.Doc.State(idx)
	if st.Kind.IsHistory() {
		if recorded, have := s.historyValue[idx]; have {
			for _, r := range recorded {
				s.addDescendantStatesToEnter(r, entrySet, defaultHistoryContent)
			}
			for _, r := range recorded {
				s.addAncestorStatesToEnter(r, st.Parent, entrySet, defaultHistoryContent)
			}
			return
		}
		if st.Initial != nil {
			defaultHistoryContent[st.Parent] = st.Initial.Content
			for _, target := range st.Initial.Targets {
				s.addDescendantStatesToEnter(target, entrySet, defaultHistoryContent)
			}
			for _, target := range st.Initial.Targets {
				s.addAncestorStatesToEnter(target, st.Parent, entrySet, defaultHistoryContent)
			}
		}
		return
	}

	entrySet[idx] = true

	switch st.Kind {
	case ir.KindCompound:
		if st.Initial != nil {
			for _, target := range st.Initial.Targets {
				s.addDescendantStatesToEnter(target, entrySet, defaultHistoryContent)
			}
			for _, target := range st.Initial.Targets {
				s.addAncestorStatesToEnter(target, idx, entrySet, defaultHistoryContent)
			}
		}
	case ir.KindParallel:
		for _, child := range st.Children {
			s.addDescendantStatesToEnter(child, entrySet, defaultHistoryContent)
		}
	}
}

func (s *Session) addAncestorStatesToEnter(idx, domain ir.StateIndex, entrySet map[ir.StateIndex]bool, defaultHistoryContent map[ir.StateIndex][]ir.Content) {
	for _, anc := range s.Doc.Ancestors(idx) {
		if anc == domain {
			break
		}
		entrySet[anc] = true
		if s.Doc.State(anc).Kind == ir.KindParallel {
			for _, child := range s.Doc.State(anc).Children {
				if !hasDescendantIn(entrySet, child) {
					s.addDescendantStatesToEnter(child, entrySet, defaultHistoryContent)
				}
			}
		}
	}
}

func hasDescendantIn(entrySet map[ir.StateIndex]bool, idx ir.StateIndex) bool {
	return entrySet[idx]
}

// onEnterFinalState handles a <final> state's <donedata> and, for a
// parallel region whose siblings are all now done, propagates
// done.state up the ancestor chain.
func (s *Session) onEnterFinalState(ctx context.Context, idx ir.StateIndex) {
	st := s.Doc.State(idx)
	parent := s.Doc.State(st.Parent)
	if st.Parent == s.Doc.Root {
		return // checkTermination (called by the macrostep driver) handles this
	}
	doneData := s.evalDoneData(st)
	s.Internal.Push(event.Event{Name: "done.state." + parent.ID, Data: doneData})
	s.propagateParallelDone(parent.Parent)
}

// propagateParallelDone raises done.state for any ancestor parallel
// state all of whose regions are now in a final state.
func (s *Session) propagateParallelDone(idx ir.StateIndex) {
	if idx == ir.NoState {
		return
	}
	st := s.Doc.State(idx)
	if st.Kind != ir.KindParallel {
		return
	}
	if !s.isInFinalState(idx) {
		return
	}
	s.Internal.Push(event.Event{Name: "done.state." + st.ID})
	s.propagateParallelDone(st.Parent)
}

// isInFinalState implements isInFinalState(s) from the specification.
func (s *Session) isInFinalState(idx ir.StateIndex) bool {
	st := s.Doc.State(idx)
	switch st.Kind {
	case ir.KindFinal:
		return s.configuration[idx]
	case ir.KindCompound:
		for _, child := range st.Children {
			if s.configuration[child] && s.isInFinalState(child) {
				return true
			}
		}
		return false
	case ir.KindParallel:
		for _, child := range st.Children {
			if !s.isInFinalState(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (s *Session) evalDoneData(st *ir.State) value.Value {
	if st.DoneData == nil {
		return value.None
	}
	if len(st.DoneData.Params) > 0 {
		m := value.NewOrderedMap()
		for _, p := range st.DoneData.Params {
			expr := p.Expr
			if expr == "" {
				expr = p.Location
			}
			v, err := s.DM.EvaluateValue(expr)
			if err != nil {
				s.raiseExecutionError("donedata param %q: %v", p.Name, err)
				continue
			}
			m.Set(p.Name, v)
		}
		return value.NewMap(m)
	}
	if st.DoneData.Content != nil {
		if st.DoneData.Content.Expr != "" {
			v, err := s.DM.EvaluateValue(st.DoneData.Content.Expr)
			if err != nil {
				s.raiseExecutionError("donedata content: %v", err)
				return value.None
			}
			return v
		}
		return value.NewString(st.DoneData.Content.Body)
	}
	return value.None
}
