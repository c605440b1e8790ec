// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/segmentio/kafka-go"
)

// Config holds Kafka publisher settings.
type Config struct {
	Brokers       []string
	ExchangeTopic string
	StreamTopic   string
}

// Option configures the Kafka publisher.
type Option func(*Config)

// WithExchangeTopic overrides the exchange topic.
func WithExchangeTopic(topic string) Option {
	return func(c *Config) {
		c.ExchangeTopic = topic
	}
}

// WithStreamTopic overrides the streaming topic.
func WithStreamTopic(topic string) Option {
	return func(c *Config) {
		c.StreamTopic = topic
	}
}

// KafkaPublisher publishes chat events to Kafka. Exchanges and final
// stream markers go through a synchronous acks-all writer; intermediate
// stream fragments go through an asynchronous fire-and-forget writer so
// streaming latency never waits on the broker.
type KafkaPublisher struct {
	config      Config
	syncWriter  *kafka.Writer
	asyncWriter *kafka.Writer
	logger      *slog.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher connected to the given brokers.
// The broker is probed once at startup; an unreachable broker is an
// error so the caller can fall back to NewDisabled.
func NewKafkaPublisher(ctx context.Context, brokers []string, opts ...Option) (Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	config := Config{
		Brokers:       brokers,
		ExchangeTopic: DefaultExchangeTopic,
		StreamTopic:   DefaultStreamTopic,
	}
	for _, opt := range opts {
		opt(&config)
	}

	logger := slog.Default().With("component", "kafka-publisher")

	p := &KafkaPublisher{
		config: config,
		syncWriter: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Gzip,
			BatchTimeout: 10 * time.Millisecond,
		},
		asyncWriter: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireNone,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
	p.asyncWriter.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			logger.Warn("async publish failed", "error", err, "messages", len(messages))
		}
	}

	if !p.Healthy(ctx) {
		p.Close()
		return nil, fmt.Errorf("kafka broker %s unreachable", brokers[0])
	}

	logger.Info("kafka publisher ready",
		"brokers", brokers,
		"exchange_topic", config.ExchangeTopic,
		"stream_topic", config.StreamTopic)
	return p, nil
}

// PublishExchange emits a completed exchange keyed by conversation.
func (p *KafkaPublisher) PublishExchange(ctx context.Context, msg ExchangeMessage) bool {
	if msg.Timestamp == "" {
		msg.Timestamp = core.Timestamp(time.Now().UTC())
	}

	value, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("marshal exchange failed", "error", err)
		return false
	}

	err = p.syncWriter.WriteMessages(ctx, kafka.Message{
		Topic: p.config.ExchangeTopic,
		Key:   []byte(msg.ConversationId),
		Value: value,
	})
	if err != nil {
		p.logger.Warn("publish exchange failed",
			"conversation_id", msg.ConversationId, "error", err)
		return false
	}
	return true
}

// PublishStreamChunk emits one streamed fragment. Intermediate fragments
// are fire-and-forget; the final marker waits for broker acks so the
// stream end is durably recorded.
func (p *KafkaPublisher) PublishStreamChunk(ctx context.Context, conversationID string, index int, content string, final bool) bool {
	msg := StreamChunkMessage{
		ConversationId: conversationID,
		ChunkIndex:     index,
		Content:        content,
		IsFinal:        final,
		MessageType:    streamChunkMessageType,
		Timestamp:      core.Timestamp(time.Now().UTC()),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("marshal stream chunk failed", "error", err)
		return false
	}

	record := kafka.Message{
		Topic: p.config.StreamTopic,
		Key:   []byte(fmt.Sprintf("%s-%d", conversationID, index)),
		Value: value,
	}

	writer := p.asyncWriter
	if final {
		writer = p.syncWriter
	}

	if err := writer.WriteMessages(ctx, record); err != nil {
		p.logger.Warn("publish stream chunk failed",
			"conversation_id", conversationID, "chunk_index", index, "error", err)
		return false
	}
	return true
}

// Healthy dials the first broker to check reachability.
func (p *KafkaPublisher) Healthy(ctx context.Context) bool {
	conn, err := kafka.DialContext(ctx, "tcp", p.config.Brokers[0])
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Close flushes both writers.
func (p *KafkaPublisher) Close() error {
	return errors.Join(p.syncWriter.Close(), p.asyncWriter.Close())
}
