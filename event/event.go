// Package event implements the internal and external event queues a
// running session owns (specification component D). Grounded on the
// teacher's sio/crew.go Crew, which also structures a session around
// an input channel, an output channel, and a done channel read by a
// single owning goroutine.
package event

import (
	"context"
	"sync"

	"github.com/nburns/scxml/value"
)

// Event is an SCXML event: a name, its origin information for
// <send>-originated events, and an optional data payload.
type Event struct {
	Name       string
	Origin     string
	OriginType string
	SendID     string
	InvokeID   string
	Data       value.Value
}

// AsMap exposes the event the way _event is bound in a data model:
// name, type ("platform"|"internal"|"external"), sendid, origin,
// origintype, invokeid, data.
func (e Event) AsMap(kind string) value.Value {
	m := value.NewOrderedMap()
	m.Set("name", value.NewString(e.Name))
	m.Set("type", value.NewString(kind))
	m.Set("sendid", value.NewString(e.SendID))
	m.Set("origin", value.NewString(e.Origin))
	m.Set("origintype", value.NewString(e.OriginType))
	m.Set("invokeid", value.NewString(e.InvokeID))
	m.Set("data", e.Data)
	return value.NewMap(m)
}

// InternalQueue is the unbounded FIFO raised executable content
// writes to; it is only ever touched by the session's single worker,
// so it needs no synchronization.
type InternalQueue struct {
	items []Event
}

func NewInternalQueue() *InternalQueue {
	return &InternalQueue{}
}

func (q *InternalQueue) Push(e Event) {
	q.items = append(q.items, e)
}

func (q *InternalQueue) Empty() bool {
	return len(q.items) == 0
}

// Pop removes and returns the oldest event. Callers must check
// Empty first.
func (q *InternalQueue) Pop() Event {
	e := q.items[0]
	q.items = q.items[1:]
	return e
}

// ExternalQueue is the blocking FIFO that <send>, invoke children,
// and Event I/O Processors deliver events through from outside the
// session's worker goroutine. Dequeue blocks until an event arrives
// or ctx is done, mirroring the blocking macrostep-boundary read the
// specification's interpreter loop performs.
type ExternalQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
}

func NewExternalQueue() *ExternalQueue {
	q := &ExternalQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an event and wakes any blocked Dequeue call. It is
// safe to call from any goroutine.
func (q *ExternalQueue) Enqueue(e Event) {
	q.mu.Lock()
	if !q.closed {
		q.items = append(q.items, e)
	}
	q.mu.Unlock()
	q.cond.Signal()
}

// Close marks the queue closed; pending Dequeue calls return
// ok=false once drained.
func (q *ExternalQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Dequeue blocks until an event is available, ctx is done, or the
// queue is closed and drained.
func (q *ExternalQueue) Dequeue(ctx context.Context) (Event, bool) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-done:
		}
	}()
	defer close(done)

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.closed {
			return Event{}, false
		}
		if ctx.Err() != nil {
			return Event{}, false
		}
		q.cond.Wait()
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

// Len reports the number of queued events, for tests and
// diagnostics.
func (q *ExternalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
