package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/ai/mock"
	"github.com/poiesic/ragserve/chunker"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/events"
	"github.com/poiesic/ragserve/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	service   *Service
	provider  *mock.MockProvider
	publisher *events.RecordingPublisher
}

func newTestService(t *testing.T, opts ...Option) *testHarness {
	t.Helper()

	store, backend, err := badger.NewMemoryChunkStore()
	require.NoError(t, err)

	chunkr, err := chunker.New()
	require.NoError(t, err)

	provider := mock.NewMockProvider()
	publisher := events.NewRecording()

	service, err := NewService(provider, chunkr, store, publisher, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		service.Close()
		store.Close()
		backend.Close()
	})

	return &testHarness{
		service:   service,
		provider:  provider,
		publisher: publisher,
	}
}

func TestProcessChat(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty message", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChat(ctx, Request{Message: "   "})
		assert.ErrorIs(t, err, core.ErrEmptyMessage)
	})

	t.Run("rejects out-of-range temperature", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChat(ctx, Request{Message: "hi", Temperature: 3})
		assert.ErrorIs(t, err, core.ErrInvalidTemperature)
	})

	t.Run("starts a new conversation when none given", func(t *testing.T) {
		h := newTestService(t)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ConversationId)
		assert.NotEmpty(t, resp.Response)
	})

	t.Run("keeps the given conversation id", func(t *testing.T) {
		h := newTestService(t)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello", ConversationId: "conv-1"})
		require.NoError(t, err)
		assert.Equal(t, "conv-1", resp.ConversationId)
	})

	t.Run("empty store means no context", func(t *testing.T) {
		h := newTestService(t)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello", UseContext: true})
		require.NoError(t, err)
		assert.False(t, resp.ContextUsed)
		assert.Equal(t, "answer to: hello", resp.Response)
	})

	t.Run("stored documents feed the context", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.AddDocument(ctx, core.Document{Content: "Badger is an embeddable key-value store."}, "conv-1")
		require.NoError(t, err)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "what is badger?", ConversationId: "conv-1", UseContext: true})
		require.NoError(t, err)
		assert.True(t, resp.ContextUsed)
		assert.Equal(t, "contextual answer to: what is badger?", resp.Response)
	})

	t.Run("documents from another conversation stay invisible", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.AddDocument(ctx, core.Document{Content: "Badger is an embeddable key-value store."}, "conv-a")
		require.NoError(t, err)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "what is badger?", ConversationId: "conv-b", UseContext: true})
		require.NoError(t, err)
		assert.False(t, resp.ContextUsed)
		assert.Equal(t, "answer to: what is badger?", resp.Response)
	})

	t.Run("context disabled skips retrieval", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.AddDocument(ctx, core.Document{Content: "Some knowledge."}, "conv-1")
		require.NoError(t, err)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello", ConversationId: "conv-1", UseContext: false})
		require.NoError(t, err)
		assert.False(t, resp.ContextUsed)
		assert.Equal(t, "answer to: hello", resp.Response)
	})

	t.Run("persists the exchange for the next turn", func(t *testing.T) {
		h := newTestService(t)

		first, err := h.service.ProcessChat(ctx, Request{Message: "my name is Ada", ConversationId: "conv-2"})
		require.NoError(t, err)

		history := h.service.History(ctx, "conv-2", 10)
		require.Len(t, history, 1)
		assert.Contains(t, history[0].Content, "User: my name is Ada")
		assert.Contains(t, history[0].Content, "Assistant: "+first.Response)
		assert.Equal(t, core.TypeConversation, history[0].Metadata[core.MetaType])

		// A second turn in the same conversation sees the first exchange.
		resp, err := h.service.ProcessChat(ctx, Request{
			Message:        "what is my name?",
			ConversationId: "conv-2",
			UseContext:     true,
		})
		require.NoError(t, err)
		assert.True(t, resp.ContextUsed)
	})

	t.Run("publishes the exchange", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChat(ctx, Request{Message: "hello", ConversationId: "conv-3"})
		require.NoError(t, err)

		exchanges := h.publisher.Exchanges()
		require.Len(t, exchanges, 1)
		assert.Equal(t, "conv-3", exchanges[0].ConversationId)
		assert.Equal(t, "hello", exchanges[0].UserMessage)
		assert.False(t, exchanges[0].ContextUsed)
		assert.Equal(t, "mock", exchanges[0].Metadata["model"])
		assert.Equal(t, "false", exchanges[0].Metadata["use_context"])
		assert.Equal(t, "0", exchanges[0].Metadata["temperature"])
	})

	t.Run("published exchange reports context usage", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.AddDocument(ctx, core.Document{Content: "Badger is an embeddable key-value store."}, "conv-4")
		require.NoError(t, err)

		_, err = h.service.ProcessChat(ctx, Request{Message: "what is badger?", ConversationId: "conv-4", UseContext: true})
		require.NoError(t, err)

		exchanges := h.publisher.Exchanges()
		require.Len(t, exchanges, 1)
		assert.True(t, exchanges[0].ContextUsed)
		assert.Equal(t, "true", exchanges[0].Metadata["use_context"])
	})

	t.Run("long answers are split before storage", func(t *testing.T) {
		h := newTestService(t)
		long := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 70)
		h.provider.MockGenerator.GenerateFunc = func(ctx context.Context, question, contextText string, opts ai.GenerateOptions) (string, error) {
			return long, nil
		}

		_, err := h.service.ProcessChat(ctx, Request{Message: "tell me a story", ConversationId: "conv-5"})
		require.NoError(t, err)

		history := h.service.History(ctx, "conv-5", 20)
		require.Greater(t, len(history), 1)
		for _, item := range history {
			assert.LessOrEqual(t, len(item.Content), chunker.DefaultChunkSize)
			assert.Equal(t, core.TypeConversation, item.Metadata[core.MetaType])
		}
	})

	t.Run("generation failure propagates", func(t *testing.T) {
		h := newTestService(t)
		h.provider.MockGenerator.GenerateFunc = func(ctx context.Context, question, contextText string, opts ai.GenerateOptions) (string, error) {
			return "", errors.New("model exploded")
		}

		_, err := h.service.ProcessChat(ctx, Request{Message: "hello"})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.Empty(t, h.publisher.Exchanges())
	})

	t.Run("persistence failure does not fail the turn", func(t *testing.T) {
		h := newTestService(t)
		h.provider.MockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedder down")
		}

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello", ConversationId: "conv-9"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Response)
		assert.Empty(t, h.service.History(ctx, "conv-9", 10))
	})

	t.Run("usage reflects prompt and response sizes", func(t *testing.T) {
		h := newTestService(t)

		resp, err := h.service.ProcessChat(ctx, Request{Message: "hello"})
		require.NoError(t, err)
		assert.Equal(t, len("hello"), resp.Usage.PromptChars)
		assert.Equal(t, len(resp.Response), resp.Usage.ResponseChars)
	})
}

func TestProcessChatStream(t *testing.T) {
	ctx := context.Background()

	t.Run("fragments concatenate to the full response", func(t *testing.T) {
		h := newTestService(t)

		var got strings.Builder
		resp, err := h.service.ProcessChatStream(ctx, Request{Message: "hello", ConversationId: "conv-1"},
			func(ctx context.Context, chunk string) error {
				got.WriteString(chunk)
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, resp.Response, got.String())
	})

	t.Run("publishes indexed fragments and a final marker", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChatStream(ctx, Request{Message: "hello", ConversationId: "conv-1"},
			func(ctx context.Context, chunk string) error { return nil })
		require.NoError(t, err)

		chunks := h.publisher.Chunks()
		require.NotEmpty(t, chunks)

		final := chunks[len(chunks)-1]
		assert.True(t, final.IsFinal)
		assert.Empty(t, final.Content)
		assert.Equal(t, len(chunks)-1, final.ChunkIndex)

		for i, chunk := range chunks[:len(chunks)-1] {
			assert.Equal(t, i, chunk.ChunkIndex)
			assert.False(t, chunk.IsFinal)
			assert.NotEmpty(t, chunk.Content)
		}
	})

	t.Run("persists the exchange with streaming metadata", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChatStream(ctx, Request{Message: "hello", ConversationId: "conv-1"},
			func(ctx context.Context, chunk string) error { return nil })
		require.NoError(t, err)

		history := h.service.History(ctx, "conv-1", 10)
		require.Len(t, history, 1)
		assert.Equal(t, "true", history[0].Metadata["streaming"])
		assert.NotEmpty(t, history[0].Metadata["total_chunks"])

		exchanges := h.publisher.Exchanges()
		require.Len(t, exchanges, 1)
		assert.Equal(t, "true", exchanges[0].Metadata["streaming"])
	})

	t.Run("sink error aborts the stream but closes it on the bus", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChatStream(ctx, Request{Message: "hello", ConversationId: "conv-1"},
			func(ctx context.Context, chunk string) error {
				return errors.New("client went away")
			})
		require.ErrorIs(t, err, ErrGenerationFailed)

		chunks := h.publisher.Chunks()
		require.NotEmpty(t, chunks)
		assert.True(t, chunks[len(chunks)-1].IsFinal)

		// Aborted turns are not persisted and not published as exchanges.
		assert.Empty(t, h.service.History(ctx, "conv-1", 10))
		assert.Empty(t, h.publisher.Exchanges())
	})

	t.Run("rejects empty message before streaming", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChatStream(ctx, Request{Message: ""},
			func(ctx context.Context, chunk string) error { return nil })
		assert.ErrorIs(t, err, core.ErrEmptyMessage)
		assert.Empty(t, h.publisher.Chunks())
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty conversation id yields nothing", func(t *testing.T) {
		h := newTestService(t)
		assert.Empty(t, h.service.History(ctx, "", 10))
	})

	t.Run("unknown conversation yields nothing", func(t *testing.T) {
		h := newTestService(t)
		assert.Empty(t, h.service.History(ctx, "ghost", 10))
	})

	t.Run("oldest exchange comes first", func(t *testing.T) {
		h := newTestService(t)

		_, err := h.service.ProcessChat(ctx, Request{Message: "first", ConversationId: "conv-1"})
		require.NoError(t, err)
		_, err = h.service.ProcessChat(ctx, Request{Message: "second", ConversationId: "conv-1"})
		require.NoError(t, err)

		history := h.service.History(ctx, "conv-1", 10)
		require.Len(t, history, 2)
		assert.Contains(t, history[0].Content, "User: first")
		assert.Contains(t, history[1].Content, "User: second")
	})
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("all dependencies healthy", func(t *testing.T) {
		h := newTestService(t)

		health := h.service.HealthCheck(ctx)
		assert.True(t, health.ModelAvailable)
		assert.True(t, health.StoreOk)
		assert.True(t, health.EventsHealthy)
		assert.Equal(t, "mock", health.Model.Model)
	})

	t.Run("model outage is reported, not returned", func(t *testing.T) {
		h := newTestService(t)
		h.provider.MockGenerator.AvailableFunc = func(ctx context.Context) bool { return false }

		health := h.service.HealthCheck(ctx)
		assert.False(t, health.ModelAvailable)
		assert.True(t, health.StoreOk)
	})

	t.Run("disabled events are reported unhealthy", func(t *testing.T) {
		h := newTestService(t)
		h.publisher.Deliver = false

		health := h.service.HealthCheck(ctx)
		assert.False(t, health.EventsHealthy)
	})
}
