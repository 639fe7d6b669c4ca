package ir

import "testing"

func TestBuildAssignsDocumentOrder(t *testing.T) {
	d, err := EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	if d.States[d.Root].ID != "root" {
		t.Fatalf("root index wrong: %v", d.States[d.Root])
	}
	a := d.States[1]
	b := d.States[2]
	if a.ID != "A" || b.ID != "B" {
		t.Fatalf("document order not preserved: %s, %s", a.ID, b.ID)
	}
	if b.Kind != KindFinal {
		t.Fatalf("B should be final")
	}
}

func TestBuildResolvesInitialToFirstChild(t *testing.T) {
	d, err := EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	root := d.States[d.Root]
	if root.Initial == nil || len(root.Initial.Targets) != 1 {
		t.Fatal("root should get an implicit initial transition")
	}
	if d.States[root.Initial.Targets[0]].ID != "A" {
		t.Fatal("implicit initial should target the first child")
	}
}

func TestBuildRejectsUnresolvedTarget(t *testing.T) {
	root := &StateSpec{
		ID:   "root",
		Kind: KindCompound,
		Children: []*StateSpec{
			{
				ID: "A",
				Transitions: []*TransitionSpec{
					{TargetIDs: []string{"nope"}},
				},
			},
		},
	}
	if _, err := Build(root, "", "", ""); err == nil {
		t.Fatal("expected an error for an unresolved transition target")
	}
}

func TestAtomicDescendantsAndAncestry(t *testing.T) {
	d, err := EventlessChainDoc()
	if err != nil {
		t.Fatal(err)
	}
	ads := d.AtomicDescendants(d.Root)
	if len(ads) != 2 {
		t.Fatalf("expected 2 atomic descendants, got %d", len(ads))
	}
	if !d.IsDescendant(1, d.Root) {
		t.Fatal("A should be a descendant of root")
	}
	if d.IsDescendant(d.Root, d.Root) {
		t.Fatal("a state is not its own proper descendant")
	}
}
