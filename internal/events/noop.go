package events

import "context"

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
