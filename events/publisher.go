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


package events

import "context"

const (
	// DefaultExchangeTopic receives completed exchanges.
	DefaultExchangeTopic = "ia-responses"

	// DefaultStreamTopic receives streaming fragments.
	DefaultStreamTopic = "ia-responses-streaming"

	// streamChunkMessageType tags streaming fragment payloads.
	streamChunkMessageType = "streaming_chunk"
)

// ExchangeMessage is the payload published for a completed exchange.
type ExchangeMessage struct {
	ConversationId    string            `json:"conversation_id"`
	UserMessage       string            `json:"user_message"`
	AssistantResponse string            `json:"ai_response"`
	ContextUsed       bool              `json:"context_used"`
	Timestamp         string            `json:"timestamp"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// StreamChunkMessage is the payload published for one streamed fragment.
type StreamChunkMessage struct {
	ConversationId string `json:"conversation_id"`
	ChunkIndex     int    `json:"chunk_index"`
	Content        string `json:"content"`
	IsFinal        bool   `json:"is_final"`
	MessageType    string `json:"message_type"`
	Timestamp      string `json:"timestamp"`
}

// Publisher emits chat activity to an event bus. Implementations are
// best-effort: publish methods report delivery as a bool and never
// propagate broker failures to the caller.
type Publisher interface {
	// PublishExchange emits a completed exchange, keyed by conversation.
	PublishExchange(ctx context.Context, msg ExchangeMessage) bool

	// PublishStreamChunk emits one streamed fragment, keyed by
	// conversation and fragment index. The final fragment carries an
	// empty content marker with IsFinal set.
	PublishStreamChunk(ctx context.Context, conversationID string, index int, content string, final bool) bool

	// Healthy reports whether the event bus is reachable.
	Healthy(ctx context.Context) bool

	// Close flushes pending messages and releases connections.
	Close() error
}
