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


// Package ragserve wires the storage backend, AI provider, event
// publisher, and chat orchestrator into one process-wide application
// object.
package ragserve

import (
	"context"
	"log/slog"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/ai/ollama"
	"github.com/poiesic/ragserve/chat"
	"github.com/poiesic/ragserve/chunker"
	"github.com/poiesic/ragserve/events"
	"github.com/poiesic/ragserve/storage"
	"github.com/poiesic/ragserve/storage/badger"
)

// DefaultCollection names the chunk collection when none is configured.
const DefaultCollection = "documents"

// App owns every long-lived component of the service.
type App struct {
	backend   *badger.Backend
	store     storage.ChunkStore
	provider  ai.Provider
	publisher events.Publisher
	service   *chat.Service
	logger    *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig     *ai.Config
	collection   string
	chunkerOpts  []chunker.Option
	chatOpts     []chat.Option
	kafkaBrokers []string
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) AppOption {
	return func(o *appOptions) {
		o.aiConfig = config
	}
}

// WithCollection names the chunk collection.
func WithCollection(name string) AppOption {
	return func(o *appOptions) {
		o.collection = name
	}
}

// WithChunkerOptions forwards options to the document chunker.
func WithChunkerOptions(opts ...chunker.Option) AppOption {
	return func(o *appOptions) {
		o.chunkerOpts = append(o.chunkerOpts, opts...)
	}
}

// WithChatOptions forwards options to the chat orchestrator.
func WithChatOptions(opts ...chat.Option) AppOption {
	return func(o *appOptions) {
		o.chatOpts = append(o.chatOpts, opts...)
	}
}

// WithKafkaBrokers enables event publishing to the given brokers. An
// unreachable broker degrades publishing to a no-op instead of failing
// startup.
func WithKafkaBrokers(brokers []string) AppOption {
	return func(o *appOptions) {
		o.kafkaBrokers = brokers
	}
}

// NewApp opens the database at filePath and assembles the service.
func NewApp(ctx context.Context, filePath string, opts ...AppOption) (*App, error) {
	options := &appOptions{
		aiConfig:   ai.DefaultConfig(),
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewChunkStore(backend, options.collection)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := ollama.NewProvider(options.aiConfig)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	var publisher events.Publisher
	if len(options.kafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(ctx, options.kafkaBrokers)
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", "error", err)
			publisher = events.NewDisabled()
		}
	} else {
		publisher = events.NewDisabled()
	}

	chunkr, err := chunker.New(options.chunkerOpts...)
	if err != nil {
		publisher.Close()
		provider.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	service, err := chat.NewService(provider, chunkr, store, publisher, options.chatOpts...)
	if err != nil {
		publisher.Close()
		provider.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	return &App{
		backend:   backend,
		store:     store,
		provider:  provider,
		publisher: publisher,
		service:   service,
		logger:    logger,
	}, nil
}

// Close releases every component.
func (a *App) Close() error {
	if err := a.service.Close(); err != nil {
		a.logger.Error("error closing chat service", "err", err)
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("error closing event publisher", "err", err)
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing chunk store", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChatService returns the chat orchestrator.
func (a *App) ChatService() *chat.Service {
	return a.service
}

// Store returns the chunk store.
func (a *App) Store() storage.ChunkStore {
	return a.store
}
