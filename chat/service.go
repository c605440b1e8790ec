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


package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/chunker"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/events"
	"github.com/poiesic/ragserve/storage"
)

const (
	// DefaultSearchLimit is the number of semantic matches folded into
	// the generation context.
	DefaultSearchLimit = 3

	// DefaultHistoryLimit is the number of past exchanges folded into
	// the generation context.
	DefaultHistoryLimit = 5

	// DefaultPoolSize bounds concurrent embedding batches during
	// document ingestion.
	DefaultPoolSize = 4

	// DefaultEmbedBatchSize is the number of chunk texts embedded per
	// batch call.
	DefaultEmbedBatchSize = 16
)

// Request is one buffered or streaming chat turn.
type Request struct {
	Message        string
	ConversationId string // Empty means start a new conversation
	UseContext     bool
	Temperature    float64 // Zero means the service default
	MaxTokens      int     // Zero means no cap
}

// Usage reports rough size accounting for a completed turn.
type Usage struct {
	PromptChars   int `json:"prompt_chars"`
	ResponseChars int `json:"response_chars"`
}

// Response is the outcome of a buffered chat turn.
type Response struct {
	Response       string
	ConversationId string
	ContextUsed    bool
	Usage          Usage
}

// Health reports the reachability of each dependency. Probing never
// fails; unreachable dependencies are reported, not returned as errors.
type Health struct {
	ModelAvailable bool
	StoreChunks    uint64
	StoreOk        bool
	EventsHealthy  bool
	Model          ai.ModelInfo
}

// Service orchestrates retrieval-augmented chat.
type Service struct {
	provider  ai.Provider
	chunker   *chunker.Chunker
	store     storage.ChunkStore
	publisher events.Publisher
	pool      *ants.Pool
	logger    *slog.Logger

	searchLimit    int
	historyLimit   int
	embedBatchSize int
}

// Option configures a Service.
type Option func(*Service)

// WithSearchLimit sets how many semantic matches are retrieved per turn.
func WithSearchLimit(limit int) Option {
	return func(s *Service) {
		s.searchLimit = limit
	}
}

// WithHistoryLimit sets how many past exchanges are retrieved per turn.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		s.historyLimit = limit
	}
}

// WithPoolSize bounds concurrent embedding batches during ingestion.
func WithPoolSize(size int) Option {
	return func(s *Service) {
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool, _ = ants.NewPool(size)
	}
}

// WithEmbedBatchSize sets the number of texts embedded per batch call.
func WithEmbedBatchSize(size int) Option {
	return func(s *Service) {
		s.embedBatchSize = size
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the chat orchestrator.
func NewService(provider ai.Provider, chunkr *chunker.Chunker, store storage.ChunkStore, publisher events.Publisher, opts ...Option) (*Service, error) {
	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	s := &Service{
		provider:       provider,
		chunker:        chunkr,
		store:          store,
		publisher:      publisher,
		pool:           pool,
		logger:         slog.Default().With("component", "chat"),
		searchLimit:    DefaultSearchLimit,
		historyLimit:   DefaultHistoryLimit,
		embedBatchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.pool == nil {
		return nil, fmt.Errorf("create worker pool: invalid size")
	}
	return s, nil
}

// Close releases the worker pool. The provider, store, and publisher
// have their own lifecycles and are not closed here.
func (s *Service) Close() error {
	s.pool.Release()
	return nil
}

// ProcessChat runs one buffered chat turn: optional retrieval, buffered
// generation, synchronous persistence, best-effort publishing.
func (s *Service) ProcessChat(ctx context.Context, req Request) (*Response, error) {
	if err := core.ValidateMessage(req.Message); err != nil {
		return nil, err
	}
	if err := core.ValidateTemperature(req.Temperature); err != nil {
		return nil, err
	}

	conversationID := req.ConversationId
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	contextText := s.retrieveContext(ctx, req.Message, conversationID, req.UseContext)

	answer, err := s.provider.Generator().Generate(ctx, req.Message, contextText, ai.GenerateOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	exchange := core.Exchange{
		ConversationId:    conversationID,
		UserMessage:       req.Message,
		AssistantResponse: answer,
	}
	if err := s.persistExchange(ctx, &exchange, nil); err != nil {
		s.logger.Warn("exchange not persisted",
			"conversation_id", conversationID, "error", err)
	}

	s.publisher.PublishExchange(ctx, events.ExchangeMessage{
		ConversationId:    conversationID,
		UserMessage:       req.Message,
		AssistantResponse: answer,
		ContextUsed:       contextText != "",
		Metadata:          s.exchangeMetadata(req),
	})

	return &Response{
		Response:       answer,
		ConversationId: conversationID,
		ContextUsed:    contextText != "",
		Usage: Usage{
			PromptChars:   len(req.Message) + len(contextText),
			ResponseChars: len(answer),
		},
	}, nil
}

// ProcessChatStream runs one streaming chat turn. Fragments flow to sink
// in generation order and each one is mirrored to the event bus with an
// incrementing index. A final empty marker closes the stream on the bus
// whether generation completed or failed. The exchange is persisted only
// on clean completion.
func (s *Service) ProcessChatStream(ctx context.Context, req Request, sink ai.StreamSink) (*Response, error) {
	if err := core.ValidateMessage(req.Message); err != nil {
		return nil, err
	}
	if err := core.ValidateTemperature(req.Temperature); err != nil {
		return nil, err
	}

	conversationID := req.ConversationId
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	contextText := s.retrieveContext(ctx, req.Message, conversationID, req.UseContext)

	index := 0
	wrapped := func(ctx context.Context, chunk string) error {
		s.publisher.PublishStreamChunk(ctx, conversationID, index, chunk, false)
		index++
		return sink(ctx, chunk)
	}

	answer, err := s.provider.Generator().GenerateStream(ctx, req.Message, contextText, ai.GenerateOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, wrapped)

	s.publisher.PublishStreamChunk(ctx, conversationID, index, "", true)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	exchange := core.Exchange{
		ConversationId:    conversationID,
		UserMessage:       req.Message,
		AssistantResponse: answer,
	}
	extra := map[string]string{
		"streaming":    "true",
		"total_chunks": strconv.Itoa(index),
	}
	if err := s.persistExchange(ctx, &exchange, extra); err != nil {
		s.logger.Warn("exchange not persisted",
			"conversation_id", conversationID, "error", err)
	}

	metadata := s.exchangeMetadata(req)
	for k, v := range extra {
		metadata[k] = v
	}
	s.publisher.PublishExchange(ctx, events.ExchangeMessage{
		ConversationId:    conversationID,
		UserMessage:       req.Message,
		AssistantResponse: answer,
		ContextUsed:       contextText != "",
		Metadata:          metadata,
	})

	return &Response{
		Response:       answer,
		ConversationId: conversationID,
		ContextUsed:    contextText != "",
		Usage: Usage{
			PromptChars:   len(req.Message) + len(contextText),
			ResponseChars: len(answer),
		},
	}, nil
}

// History returns the stored exchanges of a conversation, oldest first.
// Storage failures degrade to an empty history.
func (s *Service) History(ctx context.Context, conversationID string, limit int) []core.RetrievalResult {
	if conversationID == "" {
		return nil
	}
	if limit <= 0 {
		limit = s.historyLimit
	}

	results, err := s.store.ConversationContext(ctx, conversationID, limit)
	if err != nil {
		s.logger.Warn("history retrieval failed",
			"conversation_id", conversationID, "error", err)
		return nil
	}
	return results
}

// Stats reports chunk store statistics.
func (s *Service) Stats(ctx context.Context) (storage.Stats, error) {
	return s.store.Stats(ctx)
}

// HealthCheck probes every dependency. It always returns a report.
func (s *Service) HealthCheck(ctx context.Context) Health {
	health := Health{
		Model: s.provider.Generator().ModelInfo(),
	}

	health.ModelAvailable = s.provider.Generator().Available(ctx)

	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Warn("store health probe failed", "error", err)
	} else {
		health.StoreOk = true
		health.StoreChunks = stats.TotalChunks
	}

	health.EventsHealthy = s.publisher.Healthy(ctx)
	return health
}

// persistExchange stores one exchange as a conversation document so
// later turns can retrieve it. It takes the regular chunk/embed/store
// path, so an exchange longer than the chunk size is split like any
// other ingested text.
func (s *Service) persistExchange(ctx context.Context, exchange *core.Exchange, extra map[string]string) error {
	metadata := exchange.DocumentMetadata()
	for k, v := range extra {
		metadata[k] = v
	}

	_, err := s.AddDocument(ctx, core.Document{
		Content:  exchange.Text(),
		Metadata: metadata,
	}, exchange.ConversationId)
	return err
}

// exchangeMetadata mirrors the request parameters onto the published
// exchange payload.
func (s *Service) exchangeMetadata(req Request) map[string]string {
	return map[string]string{
		"temperature": strconv.FormatFloat(req.Temperature, 'g', -1, 64),
		"model":       s.provider.Generator().ModelInfo().Model,
		"use_context": strconv.FormatBool(req.UseContext),
	}
}
