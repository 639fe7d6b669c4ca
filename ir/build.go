package ir

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/nburns/scxml/match"
)

// Gensym makes a random opaque string of the given length, used for
// auto-generated sendids and session ids. Grounded on the teacher's
// core/ex.go Gensym, reused verbatim for the same purpose.
func Gensym(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bs := make([]byte, n)
	for i := range bs {
		bs[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(bs)
}

// StateSpec and TransitionSpec are the pre-indexing, ID-addressed
// shapes a reader (or a test) builds before calling Build. Build
// assigns document-order StateIndex values and resolves every ID
// reference (transition targets, initial states, history defaults)
// into indices, the analog of the teacher's Spec.Compile pass.
type StateSpec struct {
	ID       string
	Kind     Kind
	Children []*StateSpec

	// InitialID names the state a compound state (or <scxml>)
	// enters first. Empty means "first child in document order".
	// For a history pseudostate, InitialID instead names the
	// default target used when no history value is recorded yet.
	InitialID string

	Transitions []*TransitionSpec

	OnEntry []Content
	OnExit  []Content

	Datamodel []*DataDecl
	Invokes   []*InvokeSpec

	Doc      string
	DoneData *DoneData
}

type TransitionSpec struct {
	TargetIDs []string
	Events    []string
	Cond      string
	Type      TransitionType
	Content   []Content
}

type InvokeSpec struct {
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
	InlineDoc   *Doc
}

// Build assembles a Doc from a root StateSpec tree (the root
// represents <scxml> itself). binding is "early" or "late";
// datamodelKind selects the plugged DataModel ("" for the bundled
// expression language).
func Build(root *StateSpec, binding, datamodelKind, script string) (*Doc, error) {
	if binding == "" {
		binding = "early"
	}

	d := &Doc{
		Binding:       binding,
		DatamodelKind: datamodelKind,
		Script:        script,
	}

	byID := make(map[string]StateIndex)

	// Pass 1: pre-order traversal, assigning document-order indices.
	var specs []*StateSpec
	var assign func(s *StateSpec, parent StateIndex) StateIndex
	assign = func(s *StateSpec, parent StateIndex) StateIndex {
		idx := StateIndex(len(d.States))
		st := &State{
			Index:     idx,
			ID:        s.ID,
			Parent:    parent,
			Kind:      s.Kind,
			OnEntry:   s.OnEntry,
			OnExit:    s.OnExit,
			Datamodel: s.Datamodel,
			Doc:       s.Doc,
			DoneData:  s.DoneData,
		}
		d.States = append(d.States, st)
		specs = append(specs, s)
		if s.ID != "" {
			if _, dup := byID[s.ID]; dup {
				panic(fmt.Sprintf("duplicate state id %q", s.ID))
			}
			byID[s.ID] = idx
		}
		for _, c := range s.Children {
			ci := assign(c, idx)
			st.Children = append(st.Children, ci)
		}
		return idx
	}
	d.Root = assign(root, NoState)

	resolve := func(id string) (StateIndex, error) {
		idx, ok := byID[id]
		if !ok {
			return NoState, fmt.Errorf("unresolved state id %q", id)
		}
		return idx, nil
	}

	// Pass 2: resolve transitions, initial transitions, invokes.
	for idx, spec := range specs {
		st := d.States[idx]

		for _, ts := range spec.Transitions {
			t := &Transition{
				Source:           st.Index,
				EventDescriptors: ts.Events,
				Matcher:          match.Compile(ts.Events),
				Cond:             ts.Cond,
				Type:             ts.Type,
				Content:          ts.Content,
			}
			for _, tid := range ts.TargetIDs {
				ti, err := resolve(tid)
				if err != nil {
					return nil, err
				}
				t.Targets = append(t.Targets, ti)
			}
			st.Transitions = append(st.Transitions, t)
		}

		if spec.InitialID != "" {
			ti, err := resolve(spec.InitialID)
			if err != nil {
				return nil, err
			}
			st.Initial = &Transition{
				Source:  st.Index,
				Targets: []StateIndex{ti},
				Matcher: match.Compile(nil),
			}
		} else if st.Kind == KindCompound && len(st.Children) > 0 {
			st.Initial = &Transition{
				Source:  st.Index,
				Targets: []StateIndex{st.Children[0]},
				Matcher: match.Compile(nil),
			}
		}

		for _, inv := range spec.Invokes {
			st.Invokes = append(st.Invokes, &Invoke{
				ID:          inv.ID,
				IDLocation:  inv.IDLocation,
				Type:        inv.Type,
				TypeExpr:    inv.TypeExpr,
				Src:         inv.Src,
				SrcExpr:     inv.SrcExpr,
				Autoforward: inv.Autoforward,
				Namelist:    inv.Namelist,
				Params:      inv.Params,
				Content:     inv.Content,
				Finalize:    inv.Finalize,
				InlineDoc:   inv.InlineDoc,
			})
		}
	}

	if err := validate(d); err != nil {
		return nil, err
	}

	return d, nil
}

func validate(d *Doc) error {
	root := d.States[d.Root]
	if root.Kind != KindCompound && root.Kind != KindParallel {
		return fmt.Errorf("root state must be compound or parallel")
	}
	for _, st := range d.States {
		if st.Kind == KindCompound && len(st.Children) > 0 && st.Initial == nil {
			return fmt.Errorf("compound state %q has children but no resolvable initial", st.ID)
		}
	}
	return nil
}

// SplitEventList is a small helper matching SCXML's "event"
// attribute syntax: a whitespace-separated descriptor list.
func SplitEventList(s string) []string {
	return strings.Fields(s)
}
