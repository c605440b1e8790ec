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
	"sync"

	"github.com/poiesic/ragserve/core"
)

// IngestResult reports the outcome of a document ingestion.
type IngestResult struct {
	// DocumentId is the identifier of the document's first chunk.
	DocumentId string

	// ChunksCreated is the number of chunks stored.
	ChunksCreated int
}

// AddDocument chunks, embeds, and stores a document so it becomes
// retrievable context. A non-empty conversationID scopes the chunks to
// that conversation; an empty one leaves them visible to every
// conversation. Embedding batches fan out over the worker pool; storage
// is a single atomic write.
func (s *Service) AddDocument(ctx context.Context, doc core.Document, conversationID string) (*IngestResult, error) {
	if err := core.ValidateDocument(&doc); err != nil {
		return nil, err
	}

	chunks, err := s.chunker.Split(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return &IngestResult{}, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedBatches(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	ids, err := s.store.Add(ctx, chunks, vectors, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("document ingested",
		"document_id", ids[0], "chunks", len(ids))

	return &IngestResult{
		DocumentId:    ids[0],
		ChunksCreated: len(ids),
	}, nil
}

// embedBatches embeds texts in batches fanned out over the worker pool.
// Results are written positionally so vectors[i] always belongs to
// texts[i] regardless of batch completion order.
func (s *Service) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) <= s.embedBatchSize {
		return s.provider.Embedder().EmbedTexts(ctx, texts)
	}

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for start := 0; start < len(texts); start += s.embedBatchSize {
		end := min(start+s.embedBatchSize, len(texts))
		start := start

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()

			batch, err := s.provider.Embedder().EmbedTexts(ctx, texts[start:end])
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			if len(batch) != end-start {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
				})
				return
			}
			copy(vectors[start:end], batch)
		})
		if submitErr != nil {
			wg.Done()
			errOnce.Do(func() { firstErr = submitErr })
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
