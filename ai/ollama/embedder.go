package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/ragserve/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Embedder implements ai.Embedder using an Ollama embedding model.
type Embedder struct {
	embedder embeddings.Embedder
	cache    sync.Map // blake2b digest -> []float32
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.ServerURL),
		ollama.WithModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "ollama-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a
// batch. Cached texts are served from memory; only the misses go to the
// backend, in a single call. The result is positionally aligned with the
// input.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := e.cache.Load(cacheKey(text)); ok {
			vectors[i] = v.([]float32)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	e.logger.Debug("generating embeddings", "texts", len(texts), "cached", len(texts)-len(missing))

	embedded, err := e.embedder.EmbedDocuments(ctx, missing)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(missing), "err", err)
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(missing), len(embedded))
	}

	for j, vector := range embedded {
		i := missingIdx[j]
		vectors[i] = vector
		e.cache.Store(cacheKey(texts[i]), vector)
	}

	return vectors, nil
}

// cacheKey returns the BLAKE2b digest of text used as the cache key.
func cacheKey(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return string(h.Sum(nil))
}
