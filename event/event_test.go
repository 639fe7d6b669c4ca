package event

import (
	"context"
	"testing"
	"time"
)

func TestInternalQueueFIFO(t *testing.T) {
	q := NewInternalQueue()
	q.Push(Event{Name: "a"})
	q.Push(Event{Name: "b"})
	if q.Empty() {
		t.Fatal("queue should not be empty")
	}
	if e := q.Pop(); e.Name != "a" {
		t.Fatalf("expected a first, got %s", e.Name)
	}
	if e := q.Pop(); e.Name != "b" {
		t.Fatalf("expected b second, got %s", e.Name)
	}
	if !q.Empty() {
		t.Fatal("queue should be empty now")
	}
}

func TestExternalQueueBlocksUntilEnqueue(t *testing.T) {
	q := NewExternalQueue()
	done := make(chan Event, 1)
	go func() {
		e, ok := q.Dequeue(context.Background())
		if ok {
			done <- e
		}
	}()
	time.Sleep(10 * time.Millisecond)
	q.Enqueue(Event{Name: "tick"})
	select {
	case e := <-done:
		if e.Name != "tick" {
			t.Fatalf("wrong event: %v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on Enqueue")
	}
}

func TestExternalQueueUnblocksOnContextCancel(t *testing.T) {
	q := NewExternalQueue()
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		result <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case ok := <-result:
		if ok {
			t.Fatal("expected Dequeue to report ok=false on cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not unblock on context cancel")
	}
}
