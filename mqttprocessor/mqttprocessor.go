// Package mqttprocessor implements an Event I/O Processor that sends
// and receives SCXML events over MQTT, giving <send type="mqtt">
// targets of the form "mqtt://<topic>". Grounded on the teacher's
// sio/mqclient (a command-line MQTT pub/sub client) and sio/siomq
// (an MQTT-coupled crew), both built on
// github.com/eclipse/paho.mqtt.golang; this package keeps their
// publish/subscribe shape but targets one session's external queue
// instead of a crew's shared input channel.
package mqttprocessor

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nburns/scxml/event"
)

const (
	Type          = "http://www.w3.org/TR/scxml/#MQTTEventProcessor"
	TypeShorthand = "mqtt"
	targetPrefix  = "mqtt://"
)

// wireEvent is the JSON envelope published to and parsed from MQTT
// topics; it carries just enough of event.Event to round-trip
// through a broker that has no notion of SCXML sessions.
type wireEvent struct {
	Name string      `json:"name"`
	Data interface{} `json:"data,omitempty"`
}

// Processor publishes outbound <send> events to MQTT topics and
// republishes inbound broker messages into a session's external
// queue.
type Processor struct {
	SessionID string
	Client    mqtt.Client
	QoS       byte
	target    *event.ExternalQueue
}

// New builds a Processor bound to an already-connected MQTT client.
// target is the session's external queue inbound broker messages are
// delivered to.
func New(sessionID string, client mqtt.Client, target *event.ExternalQueue) *Processor {
	return &Processor{SessionID: sessionID, Client: client, target: target}
}

func (p *Processor) Type() string { return Type }

func (p *Processor) Location(sessionID string) string {
	return fmt.Sprintf("mqtt://scxml/%s", sessionID)
}

// Send publishes ev as JSON to the MQTT topic named by target
// ("mqtt://<topic>" or a bare topic name).
func (p *Processor) Send(target string, ev event.Event) error {
	topic := strings.TrimPrefix(target, targetPrefix)
	if topic == "" {
		return fmt.Errorf("mqtt processor requires a topic target, got %q", target)
	}
	payload, err := json.Marshal(wireEvent{Name: ev.Name, Data: dataToJSON(ev)})
	if err != nil {
		return err
	}
	tok := p.Client.Publish(topic, p.QoS, false, payload)
	tok.Wait()
	return tok.Error()
}

// Subscribe arranges for messages on topic to be parsed as
// wireEvents and delivered into the session's external queue with
// this processor's Type recorded as origintype.
func (p *Processor) Subscribe(topic string) error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var we wireEvent
		if err := json.Unmarshal(msg.Payload(), &we); err != nil {
			return
		}
		p.target.Enqueue(event.Event{
			Name:       we.Name,
			Origin:     fmt.Sprintf("%s%s", targetPrefix, topic),
			OriginType: Type,
		})
	}
	tok := p.Client.Subscribe(topic, p.QoS, handler)
	tok.Wait()
	return tok.Error()
}

func dataToJSON(ev event.Event) interface{} {
	if ev.Data.IsNone() || ev.Data.IsNull() {
		return nil
	}
	return ev.Data.String()
}
