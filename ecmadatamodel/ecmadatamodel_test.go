package ecmadatamodel

import (
	"testing"

	"github.com/nburns/scxml/value"
)

func TestDeclareAndEvaluate(t *testing.T) {
	m := New()
	if err := m.DeclareData("x", "2 + 3"); err != nil {
		t.Fatal(err)
	}
	v, err := m.EvaluateValue("x")
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != value.KindInteger || v.Integer() != 5 {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestEvaluateConditionTruthiness(t *testing.T) {
	m := New()
	ok, err := m.EvaluateCondition("1 === 1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true condition")
	}
}

func TestAssignCreatesOrUpdatesLocation(t *testing.T) {
	m := New()
	if err := m.DeclareData("x", "0"); err != nil {
		t.Fatal(err)
	}
	if err := m.Assign("x", value.NewInteger(42)); err != nil {
		t.Fatal(err)
	}
	v, err := m.EvaluateValue("x")
	if err != nil {
		t.Fatal(err)
	}
	if v.Integer() != 42 {
		t.Fatalf("expected x == 42, got %v", v)
	}
}

func TestInPredicateWiring(t *testing.T) {
	m := New()
	m.SetInPredicate(func(id string) bool { return id == "s1" })
	ok, err := m.EvaluateCondition(`In("s1")`)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected In(\"s1\") to be true once wired")
	}
}
