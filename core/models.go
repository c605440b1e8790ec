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


package core

import (
	"maps"
	"time"
)

// Metadata keys stamped onto chunks by the store and the orchestrator.
const (
	MetaConversationId = "conversation_id"
	MetaTimestamp      = "timestamp"
	MetaType           = "type"
)

// TypeConversation marks chunks synthesized from a chat exchange, as opposed
// to caller-supplied documents.
const TypeConversation = "conversation"

// Document is a transient unit of ingestion: raw text plus caller-supplied
// metadata. It exists only until it is decomposed into chunks.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Chunk is a bounded segment of a document together with its metadata and,
// once embedded, its vector. Chunks are immutable after they are stored.
type Chunk struct {
	Id        string
	Content   string
	Metadata  map[string]string // Always carries the conversation id when known
	Vector    []float32         // Embedding vector (populated before storage)
	Seq       uint64            // Insertion sequence assigned by the store
	CreatedAt time.Time         // When the chunk was written
}

// RetrievalResult is one ranked hit from a retrieval query. It is ephemeral
// and never persisted.
type RetrievalResult struct {
	Content  string
	Metadata map[string]string
	Distance float32 // Lower is more relevant; zero for exact-match retrieval
}

// Exchange is one user-message/assistant-response pair for a conversation
// turn. Every completed generation is re-ingested as a conversation document
// so it becomes retrievable context for future turns.
type Exchange struct {
	ConversationId    string
	UserMessage       string
	AssistantResponse string
}

// Text renders the exchange as the single document body that gets chunked
// and embedded.
func (e *Exchange) Text() string {
	return "User: " + e.UserMessage + "\nAssistant: " + e.AssistantResponse
}

// DocumentMetadata returns the metadata attached to the exchange's
// conversation document.
func (e *Exchange) DocumentMetadata() map[string]string {
	return map[string]string{
		MetaType:             TypeConversation,
		"user_message":       e.UserMessage,
		"assistant_response": e.AssistantResponse,
	}
}

// CloneMetadata returns a copy of m, or an empty map when m is nil. Chunks
// derived from the same document must not share one mutable map.
func CloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}

// Timestamp formats t the way chunk metadata and event payloads carry it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
