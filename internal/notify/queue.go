package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/placement-tracker/apiserver/internal/mq"
)

// SMSJob is the payload published to the broker for deferred delivery.
type SMSJob struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// QueueSender publishes SMS jobs to a broker channel instead of calling
// the provider inline. The worker command drains the channel.
type QueueSender struct {
	queue   mq.Backend
	channel string
}

// NewQueueSender constructs a QueueSender for the given channel.
func NewQueueSender(queue mq.Backend, channel string) *QueueSender {
	return &QueueSender{queue: queue, channel: channel}
}

// Send enqueues one message for delivery.
func (s *QueueSender) Send(ctx context.Context, toE164, body string) error {
	if strings.TrimSpace(s.channel) == "" {
		return errors.New("notify channel is required")
	}
	data, err := json.Marshal(SMSJob{To: toE164, Body: body})
	if err != nil {
		return err
	}
	_, err = s.queue.Publish(ctx, s.channel, data, map[string]string{"kind": "sms"})
	return err
}

// Consume subscribes to the channel and delivers each job through the
// given sender, acking on success and nacking for redelivery on failure.
func Consume(ctx context.Context, queue mq.Backend, channel string, sender Sender) error {
	return queue.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		var job SMSJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			// Malformed payloads can never succeed; drop them.
			return nil
		}
		return sender.Send(ctx, job.To, job.Body)
	})
}
