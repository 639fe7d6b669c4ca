package scxmlprocessor

import (
	"testing"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/registry"
)

type fakeInvokes struct {
	queues map[string]*event.ExternalQueue
}

func (f *fakeInvokes) InvokeQueue(id string) (*event.ExternalQueue, bool) {
	q, ok := f.queues[id]
	return q, ok
}

func TestSendEmptyTargetGoesToOwnExternalQueue(t *testing.T) {
	p := &Processor{SessionID: "s1", Internal: event.NewInternalQueue(), External: event.NewExternalQueue()}
	if err := p.Send("", event.Event{Name: "ping"}); err != nil {
		t.Fatal(err)
	}
	if p.External.Len() != 1 {
		t.Fatal("expected the event in the external queue")
	}
}

func TestSendInternalGoesToInternalQueue(t *testing.T) {
	p := &Processor{SessionID: "s1", Internal: event.NewInternalQueue(), External: event.NewExternalQueue()}
	if err := p.Send("#_internal", event.Event{Name: "ping"}); err != nil {
		t.Fatal(err)
	}
	if p.Internal.Empty() {
		t.Fatal("expected the event in the internal queue")
	}
}

func TestSendParentRequiresParent(t *testing.T) {
	p := &Processor{SessionID: "s1", Internal: event.NewInternalQueue(), External: event.NewExternalQueue()}
	if err := p.Send("#_parent", event.Event{Name: "ping"}); err == nil {
		t.Fatal("expected an error sending to #_parent with no parent session")
	}
}

func TestSendToInvokedChild(t *testing.T) {
	childQueue := event.NewExternalQueue()
	p := &Processor{
		SessionID: "s1",
		Internal:  event.NewInternalQueue(),
		External:  event.NewExternalQueue(),
		Invokes:   &fakeInvokes{queues: map[string]*event.ExternalQueue{"inv1": childQueue}},
	}
	if err := p.Send("#_inv1", event.Event{Name: "ping"}); err != nil {
		t.Fatal(err)
	}
	if childQueue.Len() != 1 {
		t.Fatal("expected event delivered to invoked child's queue")
	}
}

func TestSendToRegisteredSession(t *testing.T) {
	reg := registry.New()
	reg.Register(&fakeHandle{id: "s2"})
	p := &Processor{SessionID: "s1", Internal: event.NewInternalQueue(), External: event.NewExternalQueue(), Registry: reg}
	if err := p.Send("#_scxml_s2", event.Event{Name: "ping"}); err != nil {
		t.Fatal(err)
	}
}

type fakeHandle struct {
	id string
}

func (f *fakeHandle) SessionID() string { return f.id }
func (f *fakeHandle) Deliver(name string, data interface{}, origin, origintype string) error {
	return nil
}
