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


package chunker

import (
	"errors"
	"fmt"

	"github.com/poiesic/ragserve/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters carried from one chunk
	// into the next.
	DefaultChunkOverlap = 200
)

var (
	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap indicates an overlap that is negative or not smaller
	// than the chunk size.
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than the chunk size")
)

// Chunker splits documents into bounded, overlapping chunks.
type Chunker struct {
	splitter  textsplitter.RecursiveCharacter
	chunkSize int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk length.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap carried between consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a Chunker. Splitting breaks on paragraph, line, word, and
// finally character boundaries, in that priority order.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, ErrInvalidOverlap
	}

	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)

	return c, nil
}

// ChunkSize returns the configured maximum chunk length.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split decomposes a document into chunks. The sequence is computed
// eagerly and is empty for empty input. The document's metadata is copied
// verbatim into every chunk.
func (c *Chunker) Split(doc core.Document) ([]core.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}

	chunks := make([]core.Chunk, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		chunks = append(chunks, core.Chunk{
			Content:  part,
			Metadata: core.CloneMetadata(doc.Metadata),
		})
	}

	return chunks, nil
}
