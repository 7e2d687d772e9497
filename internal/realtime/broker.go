package realtime

import (
	"sync"
)

// Event is one ticket/fleet change pushed to subscribers.
type Event struct {
	Type     string         `json:"type"` // "ticket.created", "ticket.updated", "ticket.deleted", "vehicle.updated"
	TicketID string         `json:"ticket_id,omitempty"`
	Plate    string         `json:"plate,omitempty"`
	Status   string         `json:"status,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Well-known subscription topics. Screens hold one subscription per query
// and tear it down on exit.
const (
	TopicTickets  = "tickets"
	TopicVehicles = "vehicles"
)

// Publisher is anything ticket writes can fan events out to.
type Publisher interface {
	Publish(topic string, evt Event)
}

// Broker is the in-process subscription hub. Slow subscribers drop events
// instead of blocking the writer.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(topic string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan Event]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan Event) {
	b.mu.Lock()
	if m := b.subs[topic]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, topic)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(topic string, evt Event) {
	b.mu.Lock()
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}

// Fanout publishes every event to all wrapped publishers.
type Fanout []Publisher

func (f Fanout) Publish(topic string, evt Event) {
	for _, p := range f {
		p.Publish(topic, evt)
	}
}
