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


package badger

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
)

// ChunkStore implements storage.ChunkStore for BadgerDB.
type ChunkStore struct {
	backend    *Backend
	idSeq      *badger.Sequence
	collection string
}

var _ storage.ChunkStore = (*ChunkStore)(nil)

// NewChunkStore creates a chunk store over the given backend. The
// collection name is reported by Stats and otherwise informational.
func NewChunkStore(backend *Backend, collection string) (storage.ChunkStore, error) {
	idSeq, err := backend.GetSequence(chunkRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkStore{
		backend:    backend,
		idSeq:      idSeq,
		collection: collection,
	}, nil
}

// Close releases the sequence.
func (s *ChunkStore) Close() error {
	return s.idSeq.Release()
}

// Add stores chunks with their vectors in a single transaction.
func (s *ChunkStore) Add(ctx context.Context, chunks []core.Chunk, vectors [][]float32, conversationID string) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, storage.ErrDimensionMismatch
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(chunks))

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i := range chunks {
			nextSeq, err := s.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextSeq == 0 {
				nextSeq, err = s.idSeq.Next()
				if err != nil {
					return err
				}
			}

			record := core.Chunk{
				Id:        uuid.NewString(),
				Content:   chunks[i].Content,
				Metadata:  core.CloneMetadata(chunks[i].Metadata),
				Vector:    vectors[i],
				Seq:       nextSeq,
				CreatedAt: now,
			}
			if record.Metadata == nil {
				record.Metadata = make(map[string]string, 2)
			}
			if conversationID != "" {
				record.Metadata[core.MetaConversationId] = conversationID
			}
			record.Metadata[core.MetaTimestamp] = core.Timestamp(now)

			if err := tx.Set(makeChunkKey(nextSeq), storage.MarshalChunk(&record)); err != nil {
				return err
			}
			ids = append(ids, record.Id)
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return ids, nil
}

type scoredChunk struct {
	result   core.RetrievalResult
	distance float32
	seq      uint64
}

// SearchSimilar scans all stored chunks and returns the k nearest by
// cosine distance, ascending, with insertion order breaking ties.
func (s *ChunkStore) SearchSimilar(ctx context.Context, vector []float32, k int, conversationID string) ([]core.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}

	var scored []scoredChunk

	err := s.scanChunks(func(chunk *core.Chunk) error {
		if len(chunk.Vector) == 0 {
			return nil
		}
		if conversationID != "" && chunk.Metadata[core.MetaConversationId] != conversationID {
			return nil
		}
		scored = append(scored, scoredChunk{
			result: core.RetrievalResult{
				Content:  chunk.Content,
				Metadata: chunk.Metadata,
			},
			distance: cosineDistance(vector, chunk.Vector),
			seq:      chunk.Seq,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(scored, func(a, b scoredChunk) int {
		if a.distance < b.distance {
			return -1
		}
		if a.distance > b.distance {
			return 1
		}
		if a.seq < b.seq {
			return -1
		}
		if a.seq > b.seq {
			return 1
		}
		return 0
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	results := make([]core.RetrievalResult, 0, len(scored))
	for i := range scored {
		scored[i].result.Distance = scored[i].distance
		results = append(results, scored[i].result)
	}
	return results, nil
}

// ConversationContext returns up to limit chunks stamped with the given
// conversation, oldest first. Keys iterate in insertion order, so no
// sorting is needed.
func (s *ChunkStore) ConversationContext(ctx context.Context, conversationID string, limit int) ([]core.RetrievalResult, error) {
	if conversationID == "" || limit == 0 {
		return nil, nil
	}

	var results []core.RetrievalResult

	err := s.scanChunks(func(chunk *core.Chunk) error {
		if chunk.Metadata[core.MetaConversationId] != conversationID {
			return nil
		}
		results = append(results, core.RetrievalResult{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		})
		if limit > 0 && len(results) >= limit {
			return errScanDone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Stats counts stored chunks without loading values.
func (s *ChunkStore) Stats(ctx context.Context) (storage.Stats, error) {
	stats := storage.Stats{CollectionName: s.collection}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.TotalChunks++
		}
		return nil
	}, false)

	if err != nil {
		return storage.Stats{}, err
	}
	return stats, nil
}

// Reset drops every chunk record.
func (s *ChunkStore) Reset(ctx context.Context) error {
	return s.backend.DropPrefix(chunkKeyPrefix())
}

// errScanDone stops a scan early without reporting an error.
var errScanDone = errors.New("scan done")

func (s *ChunkStore) scanChunks(fn func(chunk *core.Chunk) error) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var chunk *core.Chunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)

	if errors.Is(err, errScanDone) {
		return nil
	}
	return err
}

// cosineDistance calculates 1 - cosine similarity. Vectors with zero
// magnitude get the maximum meaningful distance of 1.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		dot += a[i] * b[i]
	}
	for _, f := range a {
		normA += f * f
	}
	for _, f := range b {
		normB += f * f
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(float32(math.Sqrt(float64(normA)))*float32(math.Sqrt(float64(normB))))
}
