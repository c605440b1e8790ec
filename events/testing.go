package events

import (
	"context"
	"sync"
)

// RecordingPublisher captures published events for assertions in tests.
type RecordingPublisher struct {
	mu        sync.Mutex
	exchanges []ExchangeMessage
	chunks    []StreamChunkMessage

	// Deliver controls the reported delivery outcome. Defaults to true.
	Deliver bool
}

var _ Publisher = (*RecordingPublisher)(nil)

// NewRecording creates a publisher that records every event.
func NewRecording() *RecordingPublisher {
	return &RecordingPublisher{Deliver: true}
}

// PublishExchange records the exchange.
func (p *RecordingPublisher) PublishExchange(ctx context.Context, msg ExchangeMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchanges = append(p.exchanges, msg)
	return p.Deliver
}

// PublishStreamChunk records the fragment.
func (p *RecordingPublisher) PublishStreamChunk(ctx context.Context, conversationID string, index int, content string, final bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, StreamChunkMessage{
		ConversationId: conversationID,
		ChunkIndex:     index,
		Content:        content,
		IsFinal:        final,
		MessageType:    streamChunkMessageType,
	})
	return p.Deliver
}

// Healthy reports the recorded bus as reachable.
func (p *RecordingPublisher) Healthy(ctx context.Context) bool {
	return p.Deliver
}

// Close is a no-op.
func (p *RecordingPublisher) Close() error {
	return nil
}

// Exchanges returns a copy of the recorded exchanges.
func (p *RecordingPublisher) Exchanges() []ExchangeMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ExchangeMessage, len(p.exchanges))
	copy(out, p.exchanges)
	return out
}

// Chunks returns a copy of the recorded stream fragments.
func (p *RecordingPublisher) Chunks() []StreamChunkMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]StreamChunkMessage, len(p.chunks))
	copy(out, p.chunks)
	return out
}
