package match

import "testing"

func TestDottedPrefixMatch(t *testing.T) {
	m := Compile([]string{"foo.bar"})
	if !m.Match("foo.bar") {
		t.Fatal("exact match failed")
	}
	if !m.Match("foo.bar.baz") {
		t.Fatal("prefix match failed")
	}
	if m.Match("foo.barbaric") {
		t.Fatal("should not match on a non-segment prefix")
	}
	if m.Match("foo") {
		t.Fatal("should not match a shorter name")
	}
}

func TestSegmentWildcard(t *testing.T) {
	m := Compile([]string{"foo.*"})
	if !m.Match("foo.bar") || !m.Match("foo.bar.baz") {
		t.Fatal("foo.* should match anything under foo")
	}
	if m.Match("foobar") {
		t.Fatal("foo.* should not match foobar")
	}
	if m.Match("foo") {
		t.Fatal("foo.* requires at least one more segment")
	}
}

func TestGlobalWildcard(t *testing.T) {
	m := Compile([]string{"*"})
	if !m.Match("anything.at.all") {
		t.Fatal("* should match everything")
	}
}

func TestEventlessMatcherNeverMatches(t *testing.T) {
	m := Compile(nil)
	if !m.Eventless() {
		t.Fatal("nil descriptors should be eventless")
	}
	if m.Match("anything") {
		t.Fatal("eventless matcher should never match a named event")
	}
}

func TestMultipleDescriptors(t *testing.T) {
	m := Compile([]string{"error.execution", "done.state.*"})
	if !m.Match("error.execution") {
		t.Fatal("exact descriptor should match")
	}
	if !m.Match("done.state.foo") {
		t.Fatal("wildcard descriptor should match")
	}
	if m.Match("error.communication") {
		t.Fatal("unrelated event should not match")
	}
}
