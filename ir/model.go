// Package ir holds the in-memory, immutable state-chart model: the
// representation an XML (or any other) reader hands to the
// interpreter. It is grounded on the teacher's core/spec.go (Spec,
// Node, Branches, Branch) but generalized from a flat node graph
// into SCXML's hierarchical/parallel tree, per the specification's
// design note on representing cyclic state/transition graphs as an
// arena keyed by numeric document-order indices.
package ir

import "github.com/nburns/scxml/match"

// StateIndex identifies a State by its position in Doc.States,
// which is always document order. The root state is index 0.
type StateIndex int

// NoState marks the absence of a state reference (e.g. an
// unresolved history default, or a transition's parent lookup at
// the document root).
const NoState StateIndex = -1

// Kind classifies a State.
type Kind int

const (
	KindCompound Kind = iota
	KindParallel
	KindAtomic
	KindFinal
	KindHistoryShallow
	KindHistoryDeep
)

func (k Kind) IsHistory() bool {
	return k == KindHistoryShallow || k == KindHistoryDeep
}

// State is one node of the state-chart tree.
type State struct {
	Index    StateIndex
	ID       string
	Parent   StateIndex // NoState for the root
	Kind     Kind
	Children []StateIndex // document order

	// Transitions are evaluated in document order when this state
	// (or an atomic descendant of it) is the starting point of a
	// selection walk.
	Transitions []*Transition

	OnEntry []Content
	OnExit  []Content

	Datamodel []*DataDecl

	Invokes []*Invoke

	// Initial is the initial transition: for <scxml> it is the
	// "initial" attribute or <initial> child; for a compound state
	// it is the "initial" attribute or <initial> child; nil means
	// "first child in document order".
	Initial *Transition

	// Doc is free-form documentation carried from source, rendered
	// by the docs package.
	Doc string

	// DoneData is attached to a <final> state's <donedata>.
	DoneData *DoneData
}

// DataDecl is a <data> element: either an inline expression or an
// inline/external content source.
type DataDecl struct {
	ID     string
	Expr   string // "" if Content is used instead
	Source Content // a Send-shaped literal content payload, or nil
}

// DoneData carries the <param>/<content> children of a <final>
// state's <donedata>, reused from Send's payload shape per
// SPEC_FULL.md's note on supplementing donedata.
type DoneData struct {
	Params  []Param
	Content *ContentExpr
}

// Transition is one <transition> element.
type Transition struct {
	Source  StateIndex
	Targets []StateIndex // empty = targetless

	EventDescriptors []string
	Matcher          *match.Matcher // precompiled from EventDescriptors

	Cond string // expression source; "" means always-true

	Type TransitionType

	Content []Content
}

type TransitionType int

const (
	TransitionExternal TransitionType = iota
	TransitionInternal
)

// Invoke is an <invoke> element.
type Invoke struct {
	ID          string
	IDLocation  string
	Type        string
	TypeExpr    string
	Src         string
	SrcExpr     string
	Autoforward bool
	Namelist    []string
	Params      []Param
	Content     *ContentExpr
	Finalize    []Content

	// InlineDoc, if non-nil, is a fully-built Doc for the invoked
	// session rather than a URI lookup through a DocProvider.
	InlineDoc *Doc
}

// Param is a <param name="..." expr="..."/> or location="...".
type Param struct {
	Name     string
	Expr     string
	Location string
}

// ContentExpr represents a <content> child: either a literal
// string body or an "expr" attribute to evaluate.
type ContentExpr struct {
	Body string
	Expr string
}

// Doc is the top-level document: the analog of the teacher's
// core.Spec, upgraded from a name-keyed node map to a document-order
// arena with a precomputed parent table.
type Doc struct {
	Name    string
	Version string

	States []*State // index == StateIndex

	// Binding is "early" or "late", per the specification's §4.1
	// initialisation rules.
	Binding string

	DatamodelKind string // "" (expression, default) or "ecmascript"

	Script string // top-level <script>, executed at session start

	Root StateIndex
}

// State looks up a State by index. Panics on an out-of-range index,
// since indices are only ever produced by Build from this same Doc.
func (d *Doc) State(i StateIndex) *State {
	return d.States[i]
}

// IsDescendant reports whether s is a proper descendant of ancestor.
func (d *Doc) IsDescendant(s, ancestor StateIndex) bool {
	p := d.States[s].Parent
	for p != NoState {
		if p == ancestor {
			return true
		}
		p = d.States[p].Parent
	}
	return false
}

// IsOrDescendant reports whether s equals ancestor or is a proper
// descendant of it.
func (d *Doc) IsOrDescendant(s, ancestor StateIndex) bool {
	return s == ancestor || d.IsDescendant(s, ancestor)
}

// Ancestors returns the chain from s's parent up to (and including)
// the root.
func (d *Doc) Ancestors(s StateIndex) []StateIndex {
	var out []StateIndex
	p := d.States[s].Parent
	for p != NoState {
		out = append(out, p)
		p = d.States[p].Parent
	}
	return out
}

// AtomicDescendants returns every atomic or final descendant of s
// (or s itself, if s is already atomic/final), in document order.
func (d *Doc) AtomicDescendants(s StateIndex) []StateIndex {
	st := d.States[s]
	if st.Kind == KindAtomic || st.Kind == KindFinal {
		return []StateIndex{s}
	}
	var out []StateIndex
	for _, c := range st.Children {
		out = append(out, d.AtomicDescendants(c)...)
	}
	return out
}
