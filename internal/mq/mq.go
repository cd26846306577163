// Package mq moves queued notification jobs between the API and the
// delivery worker over a configurable broker.
package mq

import "context"

// Message is one broker-agnostic job delivered to a subscriber.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes one message. A non-nil error nacks the message so
// the broker redelivers it.
type Handler func(ctx context.Context, msg Message) error

// Backend is the broker surface the app depends on. Channel names are
// logical queue names; each backend maps them to its own primitives.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}
