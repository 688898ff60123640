package mq

import (
	"context"
	"errors"
	"fmt"

	"github.com/wastenot/apiserver/config"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewFromConfig constructs the configured broker backend.
func NewFromConfig(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.MQ.Backend {
	case config.MQBackendRabbitMQ:
		return NewRabbitMQClient(cfg.RabbitMQ)
	case config.MQBackendPubSub:
		return NewPubSubClient(ctx, cfg.PubSub)
	case config.MQBackendNone, "":
		return nil, ErrNoBackend
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// ErrNoBackend indicates that no broker is configured; event publication
// is skipped in that case.
var ErrNoBackend = errors.New("no mq backend configured")
