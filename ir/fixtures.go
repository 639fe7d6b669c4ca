package ir

// EventlessChainDoc builds the "S1" example from the specification's
// testable-properties section: a root with an eventless chain
// through state A into a final state B, logging once along the way.
// Grounded on the teacher's core/ex.go TurnstileSpec, which is the
// same kind of small, hand-built fixture used directly by tests
// rather than by a reader.
func EventlessChainDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID:   "A",
				Kind: KindAtomic,
				Transitions: []*TransitionSpec{
					{
						Content: []Content{Log{Label: "a", Expr: `"in A"`}},
					},
					{
						TargetIDs: []string{"B"},
					},
				},
			},
			{
				ID:   "B",
				Kind: KindFinal,
			},
		},
	}
	return Build(root, "early", "", "")
}

// ExternalEventDoc builds the "S2" example: a single atomic state
// waiting for an external event before reaching a top-level final
// state.
func ExternalEventDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID:   "waiting",
				Kind: KindAtomic,
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"done"}, Events: []string{"go"}},
				},
			},
			{ID: "done", Kind: KindFinal},
		},
	}
	return Build(root, "early", "", "")
}

// ParallelRegionsDoc builds the "S3" example: two parallel regions
// that each reach their own final state on independent events, with
// the enclosing parallel state (and the document as a whole) only
// done once both regions are.
func ParallelRegionsDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID:   "par",
				Kind: KindParallel,
				Children: []*StateSpec{
					{
						ID:   "r1",
						Kind: KindCompound,
						Children: []*StateSpec{
							{
								ID:   "r1a",
								Kind: KindAtomic,
								Transitions: []*TransitionSpec{
									{TargetIDs: []string{"r1done"}, Events: []string{"e1"}},
								},
							},
							{ID: "r1done", Kind: KindFinal},
						},
					},
					{
						ID:   "r2",
						Kind: KindCompound,
						Children: []*StateSpec{
							{
								ID:   "r2a",
								Kind: KindAtomic,
								Transitions: []*TransitionSpec{
									{TargetIDs: []string{"r2done"}, Events: []string{"e2"}},
								},
							},
							{ID: "r2done", Kind: KindFinal},
						},
					},
				},
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"allDone"}, Events: []string{"done.state.par"}},
				},
			},
			{ID: "allDone", Kind: KindFinal},
		},
	}
	return Build(root, "early", "", "")
}

// ShallowHistoryDoc builds the "S4" example: a compound state whose
// shallow history pseudostate restores whichever child was last
// active, instead of always re-entering the default initial child.
func ShallowHistoryDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID:   "A",
				Kind: KindCompound,
				Children: []*StateSpec{
					{
						ID:   "A1",
						Kind: KindAtomic,
						Transitions: []*TransitionSpec{
							{TargetIDs: []string{"A2"}, Events: []string{"next"}},
						},
					},
					{ID: "A2", Kind: KindAtomic},
					{ID: "hist", Kind: KindHistoryShallow, InitialID: "A1"},
				},
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"B"}, Events: []string{"leave"}},
				},
			},
			{
				ID:   "B",
				Kind: KindAtomic,
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"hist"}, Events: []string{"back"}},
				},
			},
		},
	}
	return Build(root, "early", "", "")
}

// ForeachSumDoc builds the "S5" example: <foreach> over a literal
// array, <assign> accumulating a running total, and an <if> that
// raises a transition-driving event once the total reaches a target,
// exercising the bundled expression language's executable content.
func ForeachSumDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Datamodel: []*DataDecl{
			{ID: "total", Expr: "0"},
			{ID: "items", Expr: "[1, 2, 3]"},
		},
		Children: []*StateSpec{
			{
				ID:   "summing",
				Kind: KindAtomic,
				OnEntry: []Content{
					Foreach{
						Array: "items",
						Item:  "it",
						Body: []Content{
							Assign{Location: "total", Expr: "total + it"},
						},
					},
					If{Clauses: []IfClause{
						{Cond: "total == 6", Body: []Content{Raise{Event: "summed"}}},
					}},
				},
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"done"}, Events: []string{"summed"}},
				},
			},
			{ID: "done", Kind: KindFinal},
		},
	}
	return Build(root, "early", "", "")
}

// LateBindingDoc builds a document with binding="late": the root
// declares "seen" up front, but state "A" declares its own "count"
// only when A is first entered. A's onentry increments both "seen"
// and "count" each time it runs; a shallow history on "outer" lets A
// be re-entered on the "back" event without re-running A's <data>
// initializer, so "count" keeps accumulating across the history
// round trip instead of resetting to its initial expression.
func LateBindingDoc() (*Doc, error) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Datamodel: []*DataDecl{
			{ID: "seen", Expr: "0"},
		},
		Children: []*StateSpec{
			{
				ID:   "outer",
				Kind: KindCompound,
				Children: []*StateSpec{
					{
						ID:   "A",
						Kind: KindAtomic,
						Datamodel: []*DataDecl{
							{ID: "count", Expr: "1"},
						},
						OnEntry: []Content{
							Assign{Location: "seen", Expr: "seen + 1"},
							Assign{Location: "count", Expr: "count + 1"},
						},
						Transitions: []*TransitionSpec{
							{TargetIDs: []string{"B"}, Events: []string{"next"}},
							{TargetIDs: []string{"done"}, Events: []string{"finish"}},
						},
					},
					{
						ID:   "B",
						Kind: KindAtomic,
						Transitions: []*TransitionSpec{
							{TargetIDs: []string{"hist"}, Events: []string{"back"}},
						},
					},
					{ID: "hist", Kind: KindHistoryShallow, InitialID: "A"},
				},
			},
			{ID: "done", Kind: KindFinal},
		},
	}
	return Build(root, "late", "", "")
}

// InvokeFinalizeDoc builds the "S6" example: a state that invokes an
// inline child document which immediately sends an event back to
// "#_parent"; the parent's <invoke>'s <finalize> records that the
// event arrived by assigning to the parent's own datamodel before
// the event's own transition is selected, exercising both
// invoke.go's child-session wiring and interp's finalize dispatch.
func InvokeFinalizeDoc() (*Doc, error) {
	childRoot := &StateSpec{
		ID:   "childRoot",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID:   "signaling",
				Kind: KindAtomic,
				OnEntry: []Content{
					Send{Event: "childsignal", Target: "#_parent"},
				},
			},
		},
	}
	childDoc, err := Build(childRoot, "early", "", "")
	if err != nil {
		return nil, err
	}

	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Datamodel: []*DataDecl{
			{ID: "finalized", Expr: "false"},
		},
		Children: []*StateSpec{
			{
				ID:   "running",
				Kind: KindAtomic,
				Invokes: []*InvokeSpec{
					{
						ID:        "child1",
						InlineDoc: childDoc,
						Finalize: []Content{
							Assign{Location: "finalized", Expr: "true"},
						},
					},
				},
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"done"}, Events: []string{"childsignal"}},
				},
			},
			{ID: "done", Kind: KindFinal},
		},
	}
	return Build(root, "early", "", "")
}
