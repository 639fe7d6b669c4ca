package mqttprocessor

import (
	"testing"

	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/value"
)

func TestLocationIncludesSessionID(t *testing.T) {
	p := &Processor{SessionID: "s1"}
	if got := p.Location("s1"); got != "mqtt://scxml/s1" {
		t.Fatalf("unexpected location: %s", got)
	}
}

func TestDataToJSONOmitsNone(t *testing.T) {
	ev := event.Event{Name: "x", Data: value.None}
	if dataToJSON(ev) != nil {
		t.Fatal("expected nil payload data for a None event payload")
	}
}

func TestSendRejectsEmptyTopic(t *testing.T) {
	p := &Processor{SessionID: "s1"}
	if err := p.Send("", event.Event{Name: "x"}); err == nil {
		t.Fatal("expected an error for an empty mqtt target")
	}
}
