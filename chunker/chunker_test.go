package chunker

import (
	"strings"
	"testing"

	"github.com/poiesic/ragserve/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, c.Overlap())
	})

	t.Run("custom size and overlap", func(t *testing.T) {
		c, err := New(WithChunkSize(100), WithOverlap(20))
		require.NoError(t, err)
		assert.Equal(t, 100, c.ChunkSize())
		assert.Equal(t, 20, c.Overlap())
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})
}

func TestSplit_EmptyDocument(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	chunks, err := c.Split(core.Document{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_ShortDocumentYieldsSingleChunk(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	content := "Ollama serves local models."
	chunks, err := c.Split(core.Document{Content: content})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
}

func TestSplit_MetadataCopiedIntoEveryChunk(t *testing.T) {
	c, err := New(WithChunkSize(50), WithOverlap(10))
	require.NoError(t, err)

	doc := core.Document{
		Content:  strings.Repeat("x", 200),
		Metadata: map[string]string{"type": "doc", "source": "test"},
	}

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.Equal(t, doc.Metadata, chunk.Metadata)
	}

	// Each chunk owns an independent copy.
	chunks[0].Metadata["type"] = "changed"
	assert.Equal(t, "doc", chunks[1].Metadata["type"])
}

func TestSplit_BoundedChunkLength(t *testing.T) {
	c, err := New(WithChunkSize(100), WithOverlap(20))
	require.NoError(t, err)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("the quick brown fox jumps over the lazy dog ")
	}

	chunks, err := c.Split(core.Document{Content: sb.String()})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 100)
		assert.Contains(t, sb.String(), chunk.Content)
	}
}

func TestSplit_OverlapPreservesBoundaryRegion(t *testing.T) {
	c, err := New(WithChunkSize(100), WithOverlap(20))
	require.NoError(t, err)

	// No split points at all, forcing character-boundary splitting with the
	// exact configured overlap.
	content := strings.Repeat("abcdefghij", 25)
	chunks, err := c.Split(core.Document{Content: content})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev, next := chunks[i-1].Content, chunks[i].Content
		tail := prev[len(prev)-c.Overlap():]
		assert.Equal(t, tail, next[:c.Overlap()], "chunk %d does not carry the boundary region", i)
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	c, err := New(WithChunkSize(60), WithOverlap(0))
	require.NoError(t, err)

	para1 := strings.Repeat("a", 40)
	para2 := strings.Repeat("b", 40)
	chunks, err := c.Split(core.Document{Content: para1 + "\n\n" + para2})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, para1, chunks[0].Content)
	assert.Equal(t, para2, chunks[1].Content)
}
