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


package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/ragserve/core"
)

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, sizeChunk(chunk))
	marshalChunk(chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := unmarshalChunk(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return chunk, nil
}

// Chunk layout: id, content, metadata (sorted key/value pairs), vector,
// sequence number, created-at as unix microseconds. Metadata keys are
// sorted so the encoding is deterministic.

func sizeChunk(chunk *core.Chunk) int {
	size := ord.String.Size(chunk.Id)
	size += ord.String.Size(chunk.Content)

	size += varint.Uint64.Size(uint64(len(chunk.Metadata)))
	for k, v := range chunk.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}

	size += varint.Uint64.Size(uint64(len(chunk.Vector)))
	for _, f := range chunk.Vector {
		size += raw.Float32.Size(f)
	}

	size += varint.Uint64.Size(chunk.Seq)
	size += varint.Int64.Size(chunk.CreatedAt.UnixMicro())
	return size
}

func marshalChunk(chunk *core.Chunk, bs []byte) int {
	n := ord.String.Marshal(chunk.Id, bs)
	n += ord.String.Marshal(chunk.Content, bs[n:])

	n += varint.Uint64.Marshal(uint64(len(chunk.Metadata)), bs[n:])
	keys := make([]string, 0, len(chunk.Metadata))
	for k := range chunk.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(chunk.Metadata[k], bs[n:])
	}

	n += varint.Uint64.Marshal(uint64(len(chunk.Vector)), bs[n:])
	for _, f := range chunk.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}

	n += varint.Uint64.Marshal(chunk.Seq, bs[n:])
	n += varint.Int64.Marshal(chunk.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func unmarshalChunk(bs []byte) (*core.Chunk, int, error) {
	chunk := &core.Chunk{}

	id, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	chunk.Id = id

	content, n1, err := ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	chunk.Content = content

	metaLen, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	if metaLen > uint64(len(bs)-n) {
		return nil, n, ErrTruncatedData
	}
	if metaLen > 0 {
		chunk.Metadata = make(map[string]string, metaLen)
	}
	for i := uint64(0); i < metaLen; i++ {
		k, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		chunk.Metadata[k] = v
	}

	vecLen, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	if vecLen > uint64(len(bs)-n) {
		return nil, n, ErrTruncatedData
	}
	if vecLen > 0 {
		chunk.Vector = make([]float32, 0, vecLen)
	}
	for i := uint64(0); i < vecLen; i++ {
		f, n1, err := raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		chunk.Vector = append(chunk.Vector, f)
	}

	seq, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	chunk.Seq = seq

	createdAt, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	chunk.CreatedAt = time.UnixMicro(createdAt).UTC()

	return chunk, n, nil
}
