package storage

import (
	"testing"
	"time"

	"github.com/poiesic/ragserve/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "minimal chunk",
			chunk: &core.Chunk{
				Id:        "a9b1c2d3",
				Content:   "Hello",
				Seq:       1,
				CreatedAt: now,
			},
		},
		{
			name: "chunk with metadata",
			chunk: &core.Chunk{
				Id:      "e4f5a6b7",
				Content: "Badger stores keys in sorted order.",
				Metadata: map[string]string{
					"type":            "doc",
					"conversation_id": "conv-1",
					"source":          "manual",
				},
				Seq:       2,
				CreatedAt: now,
			},
		},
		{
			name: "chunk with vector",
			chunk: &core.Chunk{
				Id:        "c8d9e0f1",
				Content:   "Test with embedding",
				Vector:    []float32{0.1, 0.2, 0.3, 0.4, 0.5},
				Seq:       3,
				CreatedAt: now,
			},
		},
		{
			name: "chunk with everything",
			chunk: &core.Chunk{
				Id:      "12345678",
				Content: "Complete chunk with all fields populated",
				Metadata: map[string]string{
					"type":      "conversation",
					"timestamp": core.Timestamp(now),
				},
				Vector:    []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
				Seq:       4,
				CreatedAt: now,
			},
		},
		{
			name: "empty content",
			chunk: &core.Chunk{
				Id:        "deadbeef",
				Seq:       5,
				CreatedAt: now,
			},
		},
		{
			name: "unicode content",
			chunk: &core.Chunk{
				Id:        "cafebabe",
				Content:   "Hello 世界 🌍 émojis",
				Seq:       6,
				CreatedAt: now,
			},
		},
		{
			name: "long vector",
			chunk: &core.Chunk{
				Id:        "feedface",
				Content:   "embedding sized like nomic-embed-text",
				Vector:    make([]float32, 768),
				Seq:       7,
				CreatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.Content, decoded.Content)
			assert.Equal(t, tt.chunk.Seq, decoded.Seq)
			assert.True(t, tt.chunk.CreatedAt.Equal(decoded.CreatedAt))
			if len(tt.chunk.Metadata) == 0 {
				assert.Empty(t, decoded.Metadata)
			} else {
				assert.Equal(t, tt.chunk.Metadata, decoded.Metadata)
			}
			if len(tt.chunk.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			}
		})
	}
}

func TestMarshalChunk_Deterministic(t *testing.T) {
	chunk := &core.Chunk{
		Id:      "abc",
		Content: "stable bytes",
		Metadata: map[string]string{
			"b": "2", "a": "1", "c": "3", "d": "4", "e": "5",
		},
		Seq:       9,
		CreatedAt: time.Now().UTC(),
	}

	first := MarshalChunk(chunk)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MarshalChunk(chunk))
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{3, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestUnmarshalChunk_TruncatedVector(t *testing.T) {
	chunk := &core.Chunk{
		Id:        "abc",
		Content:   "content",
		Vector:    []float32{0.1, 0.2, 0.3, 0.4},
		Seq:       1,
		CreatedAt: time.Now().UTC(),
	}

	data := MarshalChunk(chunk)
	_, err := UnmarshalChunk(data[:len(data)-8])
	assert.Error(t, err)
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		original := &core.Chunk{
			Id:      "roundtrip",
			Content: "Testing consistency",
			Metadata: map[string]string{
				"conversation_id": "conv-9",
				"type":            "conversation",
			},
			Vector:    []float32{0.1, 0.2, 0.3},
			Seq:       999,
			CreatedAt: now,
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalChunk(current)
			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original.Id, current.Id)
		assert.Equal(t, original.Content, current.Content)
		assert.Equal(t, original.Metadata, current.Metadata)
		assert.Equal(t, original.Vector, current.Vector)
		assert.Equal(t, original.Seq, current.Seq)
		assert.True(t, original.CreatedAt.Equal(current.CreatedAt))
	})
}
