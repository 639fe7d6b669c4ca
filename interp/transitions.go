package interp

import (
	"sort"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/ir"
)

// atomicConfiguration returns the session's atomic active states, in
// document order, matching the algorithm's repeated iteration over
// "the atomic states in the current configuration".
func (s *Session) atomicConfiguration() []ir.StateIndex {
	out := make([]ir.StateIndex, 0, len(s.configuration))
	for idx := range s.configuration {
		st := s.Doc.States[idx]
		if st.Kind == ir.KindAtomic || st.Kind == ir.KindFinal {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// selectEventlessTransitions implements selectEventlessTransitions()
// from the specification's interpreter algorithm.
func (s *Session) selectEventlessTransitions() []*ir.Transition {
	var enabled []*ir.Transition
	for _, idx := range s.atomicConfiguration() {
		chain := append([]ir.StateIndex{idx}, s.Doc.Ancestors(idx)...)
		found := false
		for _, anc := range chain {
			for _, t := range s.Doc.State(anc).Transitions {
				if t.Matcher != nil && !t.Matcher.Eventless() {
					continue
				}
				if s.conditionMatch(t) {
					enabled = append(enabled, t)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return s.removeConflictingTransitions(enabled)
}

// selectTransitions implements selectTransitions(event) from the
// specification's interpreter algorithm.
func (s *Session) selectTransitions(ev event.Event) []*ir.Transition {
	var enabled []*ir.Transition
	for _, idx := range s.atomicConfiguration() {
		chain := append([]ir.StateIndex{idx}, s.Doc.Ancestors(idx)...)
		found := false
		for _, anc := range chain {
			for _, t := range s.Doc.State(anc).Transitions {
				if t.Matcher == nil || t.Matcher.Eventless() {
					continue
				}
				if !t.Matcher.Match(ev.Name) {
					continue
				}
				if s.conditionMatch(t) {
					enabled = append(enabled, t)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return s.removeConflictingTransitions(enabled)
}

func (s *Session) conditionMatch(t *ir.Transition) bool {
	if t.Cond == "" {
		return true
	}
	ok, err := s.DM.EvaluateCondition(t.Cond)
	if err != nil {
		s.raiseExecutionError("cond evaluation %q: %v", t.Cond, err)
		return false
	}
	return ok
}

// removeConflictingTransitions implements the same-named procedure:
// transitions whose exit sets overlap conflict, and a transition from
// a descendant state wins over one from an ancestor.
func (s *Session) removeConflictingTransitions(enabled []*ir.Transition) []*ir.Transition {
	var filtered []*ir.Transition
	for _, t1 := range enabled {
		preempted := false
		var keep []*ir.Transition
		exit1 := s.computeExitSet([]*ir.Transition{t1})
		for _, t2 := range filtered {
			exit2 := s.computeExitSet([]*ir.Transition{t2})
			if intersects(exit1, exit2) {
				if s.Doc.IsDescendant(t1.Source, t2.Source) {
					continue // t2 removed, t1 wins
				}
				preempted = true
				break
			}
			keep = append(keep, t2)
		}
		if preempted {
			continue
		}
		filtered = keep
		filtered = append(filtered, t1)
	}
	return filtered
}

func intersects(a, b map[ir.StateIndex]bool) bool {
	for idx := range a {
		if b[idx] {
			return true
		}
	}
	return false
}

// effectiveTargets resolves a transition's targets, expanding history
// pseudostates to their recorded (or default) targets.
func (s *Session) effectiveTargets(t *ir.Transition) []ir.StateIndex {
	var out []ir.StateIndex
	for _, target := range t.Targets {
		out = append(out, s.effectiveTargetsOf(target)...)
	}
	return out
}

func (s *Session) effectiveTargetsOf(idx ir.StateIndex) []ir.StateIndex {
	st := s.Doc.State(idx)
	if !st.Kind.IsHistory() {
		return []ir.StateIndex{idx}
	}
	if recorded, have := s.historyValue[idx]; have {
		return recorded
	}
	if st.Initial != nil {
		var out []ir.StateIndex
		for _, target := range st.Initial.Targets {
			out = append(out, s.effectiveTargetsOf(target)...)
		}
		return out
	}
	// No recorded value and no default transition: fall back to the
	// history pseudostate's parent's first child.
	parent := s.Doc.State(st.Parent)
	if len(parent.Children) > 0 {
		return []ir.StateIndex{parent.Children[0]}
	}
	return nil
}

// getTransitionDomain implements getTransitionDomain(t).
func (s *Session) getTransitionDomain(t *ir.Transition) ir.StateIndex {
	targets := s.effectiveTargets(t)
	if len(targets) == 0 {
		return ir.NoState
	}
	src := s.Doc.State(t.Source)
	if t.Type == ir.TransitionInternal && (src.Kind == ir.KindCompound) && s.allDescendants(targets, t.Source) {
		return t.Source
	}
	return s.findLCCA(append([]ir.StateIndex{t.Source}, targets...))
}

func (s *Session) allDescendants(states []ir.StateIndex, ancestor ir.StateIndex) bool {
	for _, st := range states {
		if !s.Doc.IsDescendant(st, ancestor) {
			return false
		}
	}
	return true
}

// findLCCA implements findLCCA(stateList): the nearest proper
// ancestor of stateList[0] that is a compound or parallel state and
// an ancestor-or-self of every other state in the list. The LCCA is
// never a member of stateList itself, so head is excluded from the
// candidates even when head is compound or parallel.
func (s *Session) findLCCA(states []ir.StateIndex) ir.StateIndex {
	head := states[0]
	candidates := s.Doc.Ancestors(head)
	for _, anc := range candidates {
		st := s.Doc.State(anc)
		if st.Kind != ir.KindCompound && st.Kind != ir.KindParallel {
			continue
		}
		ok := true
		for _, other := range states[1:] {
			if !s.Doc.IsOrDescendant(other, anc) {
				ok = false
				break
			}
		}
		if ok {
			return anc
		}
	}
	return s.Doc.Root
}

// computeExitSet returns every active state that would be exited by
// taking transitions, i.e. configuration members that are
// descendants of each transition's domain.
func (s *Session) computeExitSet(transitions []*ir.Transition) map[ir.StateIndex]bool {
	out := make(map[ir.StateIndex]bool)
	for _, t := range transitions {
		domain := s.getTransitionDomain(t)
		if domain == ir.NoState {
			continue
		}
		for idx := range s.configuration {
			if s.Doc.IsDescendant(idx, domain) {
				out[idx] = true
			}
		}
	}
	return out
}
