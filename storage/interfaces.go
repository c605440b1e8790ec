package storage

import (
	"context"

	"github.com/poiesic/ragserve/core"
)

// Stats summarizes the state of a chunk store.
type Stats struct {
	// TotalChunks is the number of chunks currently stored.
	TotalChunks uint64 `json:"total_chunks"`

	// CollectionName identifies the logical collection.
	CollectionName string `json:"collection_name"`
}

// ChunkStore persists embedded chunks and serves similarity and
// conversation queries over them.
// Implementations must be thread-safe and support concurrent access.
type ChunkStore interface {
	// Add stores chunks with their embedding vectors atomically.
	// vectors[i] belongs to chunks[i]; the counts must match or
	// ErrDimensionMismatch is returned and nothing is stored.
	// Each chunk receives a fresh identifier, an insertion sequence
	// number, and conversation/timestamp metadata stamps. Returns the
	// assigned identifiers in input order.
	Add(ctx context.Context, chunks []core.Chunk, vectors [][]float32, conversationID string) ([]string, error)

	// SearchSimilar finds the k stored chunks nearest to the given vector
	// by cosine distance, ordered by ascending distance with insertion
	// order breaking ties. A non-empty conversationID restricts the scan
	// to chunks stamped with that conversation.
	SearchSimilar(ctx context.Context, vector []float32, k int, conversationID string) ([]core.RetrievalResult, error)

	// ConversationContext retrieves up to limit chunks stamped with the
	// given conversation, oldest first by insertion order.
	ConversationContext(ctx context.Context, conversationID string, limit int) ([]core.RetrievalResult, error)

	// Stats reports the current size of the collection.
	Stats(ctx context.Context) (Stats, error)

	// Reset removes every stored chunk.
	Reset(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
