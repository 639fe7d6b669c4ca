package value

import "testing"

func TestArithPromotion(t *testing.T) {
	i := NewInteger(2)
	d := NewDouble(3.5)

	if got := Add(i, i); got.Kind != KindInteger || got.Integer() != 4 {
		t.Fatalf("int+int = %v", got)
	}
	if got := Add(i, d); got.Kind != KindDouble || got.Double() != 5.5 {
		t.Fatalf("int+double = %v", got)
	}
	if got := Div(NewInteger(7), NewInteger(2)); got.Kind != KindDouble || got.Double() != 3.5 {
		t.Fatalf("7/2 = %v, want Double 3.5", got)
	}
}

func TestAddArrayConcatAndMapMerge(t *testing.T) {
	a := NewArray([]Value{NewInteger(1)})
	b := NewArray([]Value{NewInteger(2)})
	got := Add(a, b)
	if len(got.Array()) != 2 {
		t.Fatalf("concat = %v", got)
	}

	m1 := NewOrderedMap()
	m1.Set("x", NewInteger(1))
	m2 := NewOrderedMap()
	m2.Set("x", NewInteger(2))
	m2.Set("y", NewInteger(3))
	merged := Add(NewMap(m1), NewMap(m2))
	if v, _ := merged.Map().Get("x"); v.Integer() != 2 {
		t.Fatalf("right-wins violated: %v", merged)
	}
	if v, _ := merged.Map().Get("y"); v.Integer() != 3 {
		t.Fatalf("merge missing key: %v", merged)
	}
}

func TestEqualityIntDoubleCrossKind(t *testing.T) {
	if !Equal(NewInteger(2), NewDouble(2.0)) {
		t.Fatal("2 should equal 2.0")
	}
	if Equal(NewString("2"), NewInteger(2)) {
		t.Fatal("string and integer should never be equal")
	}
	if !Equal(Null, Null) {
		t.Fatal("null should equal null")
	}
}

func TestCompareOnlyNumericAndString(t *testing.T) {
	if cmp, ok := Compare(NewInteger(1), NewInteger(2)); !ok || cmp >= 0 {
		t.Fatalf("1 < 2, got %d ok=%v", cmp, ok)
	}
	if cmp, ok := Compare(NewString("a"), NewString("b")); !ok || cmp >= 0 {
		t.Fatalf("'a' < 'b', got %d ok=%v", cmp, ok)
	}
	if _, ok := Compare(NewBoolean(true), NewBoolean(false)); ok {
		t.Fatal("booleans should not be orderable")
	}
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NewInteger(0), false},
		{NewInteger(1), true},
		{NewString(""), false},
		{NewString("x"), true},
		{NewArray(nil), false},
		{Null, false},
		{None, false},
		{NewBoolean(true), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestLogicalOperatorsBooleanOnly(t *testing.T) {
	if got := And(NewBoolean(true), NewBoolean(false)); got.Boolean() {
		t.Fatal("true & false should be false")
	}
	if got := Or(NewInteger(1), NewBoolean(true)); !got.IsError() {
		t.Fatal("'|' on non-booleans should be an Error value")
	}
}

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", NewInteger(1))
	m.Set("a", NewInteger(2))
	m.Set("b", NewInteger(3))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("insertion order not preserved: %v", keys)
	}
}
