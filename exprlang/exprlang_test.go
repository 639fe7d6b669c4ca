package exprlang

import (
	"testing"

	"github.com/nburns/scxml/value"
)

func evalStr(t *testing.T, env *Env, expr string) value.Value {
	t.Helper()
	node, err := Parse(expr)
	if err != nil {
		t.Fatalf("parse %q: %v", expr, err)
	}
	return Eval(node, env)
}

func TestArithmeticFlatPrecedenceLeftAssociative(t *testing.T) {
	env := NewEnv(nil, nil)
	// Flat precedence means '+' and '*' bind equally, left to right:
	// (2 + 3) * 4 = 20, not 2 + (3 * 4) = 14.
	got := evalStr(t, env, "2 + 3 * 4")
	if got.Kind != value.KindInteger || got.Integer() != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestAssignmentRequiresExistingBinding(t *testing.T) {
	env := NewEnv(nil, nil)
	got := evalStr(t, env, "x = 1")
	if !got.IsError() {
		t.Fatalf("expected error assigning to undeclared x, got %v", got)
	}
}

func TestCreateOrOverwriteAssignment(t *testing.T) {
	env := NewEnv(nil, nil)
	got := evalStr(t, env, "x ?= 1")
	if got.IsError() {
		t.Fatalf("?= should create: %v", got)
	}
	got2 := evalStr(t, env, "x")
	if got2.Integer() != 1 {
		t.Fatalf("expected x == 1, got %v", got2)
	}
	got3 := evalStr(t, env, "x ?= 2")
	if got3.IsError() || got3.Integer() != 2 {
		t.Fatalf("?= should overwrite, got %v", got3)
	}
}

func TestAssignmentRightAssociativeLowestPrecedence(t *testing.T) {
	env := NewEnv(nil, nil)
	env.vars.Set("a", value.None)
	env.vars.Set("b", value.None)
	got := evalStr(t, env, "a ?= b ?= 1 + 1")
	if got.IsError() {
		t.Fatalf("chained assignment failed: %v", got)
	}
	if evalStr(t, env, "a").Integer() != 2 || evalStr(t, env, "b").Integer() != 2 {
		t.Fatalf("chained assignment should propagate right to left")
	}
}

func TestNotEqualIsInverseOfEqual(t *testing.T) {
	env := NewEnv(nil, nil)
	if !evalStr(t, env, "1 != 2").Truthy() {
		t.Fatal("1 != 2 should be true")
	}
	if evalStr(t, env, "1 != 1").Truthy() {
		t.Fatal("1 != 1 should be false")
	}
}

func TestLogicalOperatorsBooleanOnly(t *testing.T) {
	env := NewEnv(nil, nil)
	got := evalStr(t, env, "true & false")
	if got.Kind != value.KindBoolean || got.Boolean() {
		t.Fatalf("true & false should be false, got %v", got)
	}
	if !evalStr(t, env, "false | true").Truthy() {
		t.Fatal("false | true should be true")
	}
	if !evalStr(t, env, "1 & true").IsError() {
		t.Fatal("'&' on a non-boolean should error")
	}
}

func TestFieldAccessAndIndex(t *testing.T) {
	env := NewEnv(nil, nil)
	m := value.NewOrderedMap()
	m.Set("name", value.NewString("door"))
	m.Set("tags", value.NewArray([]value.Value{value.NewString("a"), value.NewString("b")}))
	env.vars.Set("obj", value.NewMap(m))
	if got := evalStr(t, env, "obj.name"); got.String() != "door" {
		t.Fatalf("field access failed: %v", got)
	}
	if got := evalStr(t, env, "obj.tags[1]"); got.String() != "b" {
		t.Fatalf("index access failed: %v", got)
	}
}

func TestMethodCallFallbackToActionRegistry(t *testing.T) {
	env := NewEnv(nil, nil)
	env.vars.Set("arr", value.NewArray([]value.Value{value.NewInteger(1), value.NewInteger(2), value.NewInteger(3)}))
	got := evalStr(t, env, "arr.length()")
	if got.Kind != value.KindInteger || got.Integer() != 3 {
		t.Fatalf("receiver.method() fallback to action failed: %v", got)
	}
}

func TestUnaryNotTruthyCoercion(t *testing.T) {
	env := NewEnv(nil, nil)
	if evalStr(t, env, `!""`).Boolean() != true {
		t.Fatal("!\"\" should be true (empty string is falsy)")
	}
	if evalStr(t, env, `!"x"`).Boolean() != false {
		t.Fatal("!\"x\" should be false")
	}
}

func TestExpressionList(t *testing.T) {
	env := NewEnv(nil, nil)
	env.vars.Set("a", value.None)
	got := evalStr(t, env, "a ?= 1, a + 1")
	if got.Integer() != 2 {
		t.Fatalf("expression list should evaluate to the last item, got %v", got)
	}
}

func TestInBuiltinWiring(t *testing.T) {
	env := NewEnv(nil, nil)
	env.actions.SetInPredicate(func(id string) bool { return id == "s1" })
	if !evalStr(t, env, `In("s1")`).Truthy() {
		t.Fatal("In(\"s1\") should be true once wired")
	}
	if evalStr(t, env, `In("s2")`).Truthy() {
		t.Fatal("In(\"s2\") should be false")
	}
}

func TestDivisionAndRatioAlwaysDouble(t *testing.T) {
	env := NewEnv(nil, nil)
	got := evalStr(t, env, "4 / 2")
	if got.Kind != value.KindDouble {
		t.Fatalf("'/' should always yield Double, got %s", got.Kind)
	}
	got2 := evalStr(t, env, "3 : 2")
	if got2.Kind != value.KindDouble || got2.Double() != 1.5 {
		t.Fatalf("':' should behave like '/', got %v", got2)
	}
}
