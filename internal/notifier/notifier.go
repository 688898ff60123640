// Package notifier materializes domain events into notification rows.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/wastenot/apiserver/internal/events"
	"github.com/wastenot/apiserver/internal/mq"
	"github.com/wastenot/apiserver/types"
)

// NotificationRepository is the slice of the store the worker needs.
type NotificationRepository interface {
	Create(ctx context.Context, n types.Notification) (types.Notification, error)
}

// Worker consumes the event channel and writes one notification per
// event it understands. Unknown event types are acked and skipped.
type Worker struct {
	backend mq.Backend
	repo    NotificationRepository
}

func New(backend mq.Backend, repo NotificationRepository) *Worker {
	return &Worker{backend: backend, repo: repo}
}

// Run blocks consuming events until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.backend.Subscribe(ctx, events.Channel, w.handle)
}

func (w *Worker) handle(ctx context.Context, msg mq.Message) error {
	var event events.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// Malformed payloads are dropped; redelivery cannot fix them.
		log.Printf("notifier: discarding malformed event %s: %v", msg.ID, err)
		return nil
	}

	notification, ok := render(event)
	if !ok {
		log.Printf("notifier: skipping event type %q", event.Type)
		return nil
	}

	if _, err := w.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func render(event events.Event) (types.Notification, bool) {
	switch event.Type {
	case events.TypeListingCreated:
		return types.Notification{
			UserID:  event.UserID,
			Title:   "Listing posted",
			Message: fmt.Sprintf("Your listing %q is now live on the marketplace.", event.Subject),
		}, true
	case events.TypeWasteLogged:
		return types.Notification{
			UserID:  event.UserID,
			Title:   "Waste logged",
			Message: fmt.Sprintf("Recorded %.1f %s of %s as diverted waste.", event.Quantity, event.Unit, event.Subject),
		}, true
	default:
		return types.Notification{}, false
	}
}
