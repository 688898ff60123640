// Package events defines the domain events exchanged between the API
// server and the notifier worker.
package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/wastenot/apiserver/internal/mq"
)

// Channel is the broker channel all domain events travel on.
const Channel = "wastenot.events"

// Event types.
const (
	TypeListingCreated = "listing.created"
	TypeWasteLogged    = "waste.logged"
)

// Event is the payload published after a successful domain write.
type Event struct {
	Type     string  `json:"type"`
	UserID   int     `json:"user_id"`
	Subject  string  `json:"subject"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// Publisher emits domain events. Implementations must not fail the
// surrounding request: event delivery is fire-once and best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// MQPublisher publishes events to the configured broker backend.
type MQPublisher struct {
	backend mq.Backend
}

func NewMQPublisher(backend mq.Backend) *MQPublisher {
	return &MQPublisher{backend: backend}
}

// Publish serializes the event and hands it to the broker. Failures are
// logged and dropped; there is no retry.
func (p *MQPublisher) Publish(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", event.Type, err)
		return
	}
	attrs := map[string]string{"type": event.Type}
	if _, err := p.backend.Publish(ctx, Channel, data, attrs); err != nil {
		log.Printf("events: publish %s: %v", event.Type, err)
	}
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) {}
