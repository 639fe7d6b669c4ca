// Package registry implements the process-wide Session Registry
// (specification component J): a lookup from session id to a handle
// usable for cross-session <send> routing (targets like
// "#_scxml_<sessionid>"). Grounded on the teacher's crew/crew.go
// Crew, which holds the same shape of map-plus-RWMutex registry, here
// generalized from "named state machine" to "named running session".
package registry

import "sync"

// Handle is the registry's view of a running session: enough to
// deliver an event without the registry needing to know about
// interp.Session directly (avoiding an import cycle between interp
// and registry).
type Handle interface {
	SessionID() string
	Deliver(name string, data interface{}, origin, origintype string) error
}

// Registry is a process-wide, concurrency-safe directory of running
// sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Handle
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]Handle, 8)}
}

// Register adds or replaces the handle for a session id.
func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[h.SessionID()] = h
}

// Deregister removes a session id, typically once its session has
// terminated.
func (r *Registry) Deregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Lookup returns the handle for a session id, if one is registered.
func (r *Registry) Lookup(sessionID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[sessionID]
	return h, ok
}

// Len reports how many sessions are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
