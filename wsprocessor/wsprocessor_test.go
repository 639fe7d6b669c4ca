package wsprocessor

import (
	"testing"

	"github.com/nburns/scxml/event"
)

func TestSendUnknownConnectionErrors(t *testing.T) {
	p := New("s1")
	if err := p.Send("ws://nope", event.Event{Name: "ping"}); err == nil {
		t.Fatal("expected an error sending to an unregistered connection")
	}
}

func TestInboundParsesWireEvent(t *testing.T) {
	ev, err := Inbound("c1", []byte(`{"name":"click","data":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Name != "click" {
		t.Fatalf("unexpected event name: %s", ev.Name)
	}
	if ev.Origin != "ws://c1" {
		t.Fatalf("unexpected origin: %s", ev.Origin)
	}
}

func TestDeregisterRemovesConnection(t *testing.T) {
	p := New("s1")
	p.Deregister("anything") // no-op on an unknown id
}
