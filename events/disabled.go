package events

import "context"

// DisabledPublisher drops every event. It stands in for the Kafka
// publisher when eventing is disabled or the broker is unreachable.
type DisabledPublisher struct{}

var _ Publisher = (*DisabledPublisher)(nil)

// NewDisabled creates a publisher that drops everything.
func NewDisabled() Publisher {
	return &DisabledPublisher{}
}

// PublishExchange reports the event as not delivered.
func (p *DisabledPublisher) PublishExchange(ctx context.Context, msg ExchangeMessage) bool {
	return false
}

// PublishStreamChunk reports the event as not delivered.
func (p *DisabledPublisher) PublishStreamChunk(ctx context.Context, conversationID string, index int, content string, final bool) bool {
	return false
}

// Healthy reports the event bus as unavailable.
func (p *DisabledPublisher) Healthy(ctx context.Context) bool {
	return false
}

// Close is a no-op.
func (p *DisabledPublisher) Close() error {
	return nil
}
