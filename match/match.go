// Package match implements SCXML event-descriptor matching.
//
// A <transition event="..."> attribute holds a space-separated list
// of descriptors such as "foo.bar error.* *". Each descriptor is
// precompiled once, at IR construction time, into a small
// dotted-segment trie (per the specification's design note on
// precompiling matchers), so that matching an incoming event name
// against a transition's descriptors is a cheap walk rather than a
// per-event string split and re-scan.
//
// The package keeps the teacher's dispatch style from its general
// pattern matcher — a small set of exported entry points operating
// over a precompiled structure, with recursion doing the real work
// and no class hierarchy — but the thing being matched is
// completely different: dotted event names and glob suffixes, not
// arbitrary structural facts against variable-bearing patterns.
package match

import "strings"

// node is one level of the descriptor trie: a set of literal
// dotted-segment children, plus flags for a trailing wildcard ("*"
// as a whole segment, matching this segment and everything below
// it) and an end-of-descriptor marker.
type node struct {
	children map[string]*node
	wildcard bool // this node matches zero-or-more trailing segments
	terminal bool // a descriptor ends exactly here
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Matcher is a precompiled set of event descriptors.
type Matcher struct {
	root      *node
	eventless bool
}

// Compile precompiles a transition's event-descriptor list (the
// "event" attribute already split on whitespace). An empty list
// produces an eventless Matcher, which never matches any event
// name — it is only consulted when the interpreter is choosing
// transitions with no current event.
func Compile(descriptors []string) *Matcher {
	m := &Matcher{root: newNode()}
	if len(descriptors) == 0 {
		m.eventless = true
		return m
	}
	for _, d := range descriptors {
		m.add(d)
	}
	return m
}

func (m *Matcher) add(descriptor string) {
	if descriptor == "*" {
		m.root.wildcard = true
		return
	}
	segs := strings.Split(descriptor, ".")
	cur := m.root
	for i, seg := range segs {
		if seg == "*" && i == len(segs)-1 {
			cur.wildcard = true
			return
		}
		child, ok := cur.children[seg]
		if !ok {
			child = newNode()
			cur.children[seg] = child
		}
		cur = child
	}
	cur.terminal = true
}

// Eventless reports whether this Matcher was built from an empty
// descriptor list.
func (m *Matcher) Eventless() bool {
	return m.eventless
}

// Match reports whether the given event name satisfies any
// descriptor in this Matcher: "foo.bar" matches "foo.bar" and
// "foo.bar.baz"; "foo.*" matches anything starting with "foo.";
// "*" matches everything.
func (m *Matcher) Match(eventName string) bool {
	if m.eventless {
		return false
	}
	return matchNode(m.root, strings.Split(eventName, "."))
}

func matchNode(n *node, segs []string) bool {
	if n.wildcard {
		return true
	}
	if n.terminal {
		// A descriptor boundary was reached: either the event name
		// ended here too (exact match) or it continues, which the
		// prefix rule also accepts ("foo.bar" matches
		// "foo.bar.baz").
		return true
	}
	if len(segs) == 0 {
		return false
	}
	child, ok := n.children[segs[0]]
	if !ok {
		return false
	}
	return matchNode(child, segs[1:])
}
