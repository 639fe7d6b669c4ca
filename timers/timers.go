// Package timers implements the delay scheduler behind SCXML's
// <send delay="..."> and <cancel> (specification component D).
// Adapted directly from the teacher's sio/timers.go Timers/TimerEntry,
// generalized from a single fixed Emitter callback to an arbitrary
// per-schedule Enqueuer so one Scheduler can serve every session
// rather than one session owning its own timers machine.
package timers

import (
	"sync"
	"time"

	"github.com/nburns/scxml/event"
)

// Enqueuer delivers a scheduled event to its destination once the
// delay elapses; ExternalQueue.Enqueue satisfies it directly.
type Enqueuer interface {
	Enqueue(event.Event)
}

// entry represents one pending delayed <send>.
type entry struct {
	sendID string
	ev     event.Event
	target Enqueuer
	timer  *time.Timer
	ctl    chan struct{}
}

// Scheduler tracks pending delayed sends, keyed by sendid within a
// session. Unlike the teacher's Timers, which is one per crew and
// mutates shared machine state under its own lock, a Scheduler here
// is typically embedded one-per-session and only needs a mutex
// because Schedule/Cancel can race with the timer goroutine's own
// delivery.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry, 8)}
}

// Schedule arranges for ev to be enqueued on target after d elapses,
// unless canceled first via Cancel(sendID). Scheduling a second entry
// under the same sendID cancels the first, matching <send>'s
// re-use-of-id behavior in the specification.
func (s *Scheduler) Schedule(sendID string, ev event.Event, d time.Duration, target Enqueuer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, have := s.entries[sendID]; have {
		old.timer.Stop()
		close(old.ctl)
		delete(s.entries, sendID)
	}

	e := &entry{sendID: sendID, ev: ev, target: target, ctl: make(chan struct{})}
	e.timer = time.AfterFunc(d, func() { s.fire(e) })
	s.entries[sendID] = e
}

func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	_, live := s.entries[e.sendID]
	if live {
		delete(s.entries, e.sendID)
	}
	s.mu.Unlock()
	if !live {
		return
	}
	select {
	case <-e.ctl:
		return
	default:
	}
	e.target.Enqueue(e.ev)
}

// Cancel stops a pending delayed send by sendid, if it is still
// pending. Canceling an unknown or already-fired sendid is a no-op,
// per <cancel>'s permissive semantics.
func (s *Scheduler) Cancel(sendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, have := s.entries[sendID]
	if !have {
		return
	}
	e.timer.Stop()
	close(e.ctl)
	delete(s.entries, sendID)
}

// CancelAll stops every pending entry, used when a session
// terminates so no stray timer fires into a dead queue.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.timer.Stop()
		close(e.ctl)
		delete(s.entries, id)
	}
}

// Pending reports whether a sendid is still scheduled, for tests.
func (s *Scheduler) Pending(sendID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, have := s.entries[sendID]
	return have
}
