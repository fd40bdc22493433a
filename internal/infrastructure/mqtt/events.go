package mqtt

import (
	"encoding/json"
	"sync"
)

// Publisher is the subset of Client needed to publish event messages.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPublisher broadcasts dispatch lifecycle events over the broker so
// MQTT consumers (dashboards, automations) see the same stream as
// WebSocket clients.
//
// Broadcast satisfies the dispatch notifier contract. Event delivery is
// best-effort: marshal and publish failures are logged and dropped, never
// surfaced to the dispatch path. Events are never retained.
type EventPublisher struct {
	pub    Publisher
	qos    byte
	topics Topics

	logger   Logger
	loggerMu sync.RWMutex
}

// NewEventPublisher creates an event publisher on the given client.
//
// Parameters:
//   - pub: connected MQTT client (or any Publisher)
//   - qos: QoS level for event messages
func NewEventPublisher(pub Publisher, qos byte) *EventPublisher {
	return &EventPublisher{
		pub: pub,
		qos: qos,
	}
}

// SetLogger sets a logger for publish failure logging.
func (p *EventPublisher) SetLogger(logger Logger) {
	p.loggerMu.Lock()
	p.logger = logger
	p.loggerMu.Unlock()
}

func (p *EventPublisher) getLogger() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}

// Broadcast publishes the event payload as JSON to voxhaus/event/{event}.
func (p *EventPublisher) Broadcast(event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		if logger := p.getLogger(); logger != nil {
			logger.Error("event payload marshal failed", "event", event, "error", err)
		}
		return
	}

	if err := p.pub.Publish(p.topics.Event(event), body, p.qos, false); err != nil {
		if logger := p.getLogger(); logger != nil {
			logger.Warn("event publish failed", "event", event, "error", err)
		}
	}
}
