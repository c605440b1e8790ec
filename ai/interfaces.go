package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding backend is unreachable or returns
	// malformed output.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains exactly one embedding per input
	// text, in the same order — callers rely on positional correspondence to
	// re-associate vectors with their source chunks.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StreamSink receives answer fragments in generation order. Returning an
// error aborts the stream; fragments already delivered to the sink stand.
type StreamSink func(ctx context.Context, chunk string) error

// GenerateOptions holds per-call generation parameters. The zero value of
// each field means "use the service default". Options are threaded through
// every call explicitly; they are never stored on a shared generator.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Generator produces a textual answer for a question, optionally grounded
// in retrieved context. Implementations must be thread-safe for concurrent
// use.
type Generator interface {
	// Generate produces the complete answer. A non-empty contextText selects
	// the context-bearing prompt variant; an empty one selects the plain
	// chat variant.
	Generate(ctx context.Context, question, contextText string, opts GenerateOptions) (string, error)

	// GenerateStream produces the answer as a sequence of fragments pushed
	// to sink in emission order, and returns the full concatenated text on
	// clean completion. Concatenating the fragments reconstitutes exactly
	// what Generate would return for identical inputs. A backend or sink
	// error terminates the stream and is returned, distinguishing an
	// aborted stream from a completed one.
	GenerateStream(ctx context.Context, question, contextText string, opts GenerateOptions, sink StreamSink) (string, error)

	// Available probes the backend with a fixed benign prompt. It reports
	// true only when the call succeeds and yields non-blank text.
	Available(ctx context.Context) bool

	// ModelInfo describes the configured generation model.
	ModelInfo() ModelInfo
}

// ModelInfo describes a configured model backend.
type ModelInfo struct {
	Model     string `json:"model"`
	ServerURL string `json:"server_url"`
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Generator instances that share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	Close() error
}
