// Package notify delivers SMS notifications through a configurable
// backend: a direct Twilio REST call, or a broker queue drained by the
// worker command. When no backend is configured delivery is a silent
// no-op and the daily throttle still advances.
package notify

import (
	"context"
	"fmt"

	"github.com/placement-tracker/apiserver/config"
	"github.com/placement-tracker/apiserver/internal/mq"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(ctx context.Context, toE164, body string) error
}

// NewSender constructs the delivery backend named by config.
// An empty backend name yields nil (delivery disabled).
func NewSender(ctx context.Context, cfg config.NotifyConfig, brokerCfg config.BrokerConfig) (Sender, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "twilio":
		return NewTwilioClient(cfg.Twilio)
	case "queue":
		backend, err := mq.NewBackend(ctx, brokerCfg)
		if err != nil {
			return nil, err
		}
		if backend == nil {
			return nil, fmt.Errorf("notify backend %q requires a broker backend", cfg.Backend)
		}
		return NewQueueSender(backend, cfg.Channel), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}
