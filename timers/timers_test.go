package timers

import (
	"context"
	"testing"
	"time"

	"github.com/nburns/scxml/event"
)

func TestScheduleFiresAfterDelay(t *testing.T) {
	s := New()
	q := event.NewExternalQueue()
	s.Schedule("t1", event.Event{Name: "timeout"}, 10*time.Millisecond, q)
	if !s.Pending("t1") {
		t.Fatal("expected t1 to be pending immediately after scheduling")
	}
	time.Sleep(50 * time.Millisecond)
	if s.Pending("t1") {
		t.Fatal("expected t1 to have fired and been cleared")
	}
	if q.Len() != 1 {
		t.Fatalf("expected one event delivered, got %d", q.Len())
	}
}

func TestCancelPreventsDelivery(t *testing.T) {
	s := New()
	q := event.NewExternalQueue()
	s.Schedule("t2", event.Event{Name: "timeout"}, 20*time.Millisecond, q)
	s.Cancel("t2")
	time.Sleep(40 * time.Millisecond)
	if q.Len() != 0 {
		t.Fatal("canceled timer should not deliver")
	}
}

func TestReschedulingSameSendIDCancelsPrior(t *testing.T) {
	s := New()
	q := event.NewExternalQueue()
	s.Schedule("t3", event.Event{Name: "first"}, 10*time.Millisecond, q)
	s.Schedule("t3", event.Event{Name: "second"}, 30*time.Millisecond, q)
	time.Sleep(50 * time.Millisecond)
	if q.Len() != 1 {
		t.Fatalf("expected exactly one delivery, got %d", q.Len())
	}
	e, _ := q.Dequeue(context.Background())
	if e.Name != "second" {
		t.Fatalf("expected the rescheduled event to win, got %s", e.Name)
	}
}
