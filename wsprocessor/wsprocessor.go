// Package wsprocessor implements an Event I/O Processor that
// delivers SCXML events to WebSocket clients, giving <send
// type="websocket"> targets of the form "ws://<connid>". Grounded on
// the teacher's cmd/mservice/websockets.go, which fans a firehose of
// messages out to a registry of gorilla/websocket connections keyed
// by remote address; this package keeps that per-connection registry
// shape but routes one session's outbound sends instead of a
// service-wide firehose.
package wsprocessor

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nburns/scxml/event"
)

const (
	Type          = "http://www.w3.org/TR/scxml/#WebSocketEventProcessor"
	TypeShorthand = "websocket"
	targetPrefix  = "ws://"
)

type wireEvent struct {
	Name string      `json:"name"`
	Data interface{} `json:"data,omitempty"`
}

// Processor tracks live WebSocket connections by connection id and
// writes outbound <send> events to them as JSON text frames.
type Processor struct {
	SessionID string

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// New builds an empty Processor for one session.
func New(sessionID string) *Processor {
	return &Processor{SessionID: sessionID, conns: make(map[string]*websocket.Conn)}
}

func (p *Processor) Type() string { return Type }

func (p *Processor) Location(sessionID string) string {
	return fmt.Sprintf("ws://scxml/%s", sessionID)
}

// Register associates a connection id (e.g. the remote address) with
// a live connection, making it a valid <send> target.
func (p *Processor) Register(connID string, conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[connID] = conn
}

// Deregister drops a connection id, typically once the socket closes.
func (p *Processor) Deregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.conns, connID)
}

// Send writes ev as a JSON text frame to the connection named by
// target ("ws://<connid>" or a bare connid).
func (p *Processor) Send(target string, ev event.Event) error {
	connID := strings.TrimPrefix(target, targetPrefix)
	p.mu.Lock()
	conn, ok := p.conns[connID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no websocket connection %q", connID)
	}
	payload, err := json.Marshal(wireEvent{Name: ev.Name, Data: dataToJSON(ev)})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Inbound parses a received text frame as a wireEvent and produces
// the event.Event to enqueue on the receiving session's external
// queue.
func Inbound(connID string, payload []byte) (event.Event, error) {
	var we wireEvent
	if err := json.Unmarshal(payload, &we); err != nil {
		return event.Event{}, err
	}
	return event.Event{
		Name:       we.Name,
		Origin:     targetPrefix + connID,
		OriginType: Type,
	}, nil
}

func dataToJSON(ev event.Event) interface{} {
	if ev.Data.IsNone() || ev.Data.IsNull() {
		return nil
	}
	return ev.Data.String()
}
