package mq

import (
	"context"
	"fmt"

	"github.com/placement-tracker/apiserver/config"
)

// NewBackend constructs the broker backend named by config.
// An empty backend name yields nil (no broker configured).
func NewBackend(ctx context.Context, cfg config.BrokerConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}
