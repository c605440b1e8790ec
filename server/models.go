package server

import "github.com/poiesic/ragserve/chat"

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message        string   `json:"message"`
	ConversationId string   `json:"conversation_id,omitempty"`
	UseContext     *bool    `json:"use_context,omitempty"` // Defaults to true
	MaxTokens      int      `json:"max_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"` // Defaults to the service default
}

// toServiceRequest applies request defaults and converts to the
// orchestrator's request type.
func (r *ChatRequest) toServiceRequest() chat.Request {
	useContext := true
	if r.UseContext != nil {
		useContext = *r.UseContext
	}
	var temperature float64
	if r.Temperature != nil {
		temperature = *r.Temperature
	}
	return chat.Request{
		Message:        r.Message,
		ConversationId: r.ConversationId,
		UseContext:     useContext,
		MaxTokens:      r.MaxTokens,
		Temperature:    temperature,
	}
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Response       string     `json:"response"`
	ConversationId string     `json:"conversation_id"`
	ContextUsed    bool       `json:"context_used"`
	Usage          chat.Usage `json:"usage"`
}

// DocumentRequest is the body of POST /documents. A conversation id
// scopes the document to one conversation; without it the document is
// retrievable from every conversation.
type DocumentRequest struct {
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ConversationId string            `json:"conversation_id,omitempty"`
}

// DocumentResponse is the body of a successful POST /documents.
type DocumentResponse struct {
	Message       string `json:"message"`
	DocumentId    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// HistoryEntry is one stored exchange in a history response.
type HistoryEntry struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// HistoryResponse is the body of GET /chat/history/{conversationID}.
type HistoryResponse struct {
	ConversationId string         `json:"conversation_id"`
	Messages       []HistoryEntry `json:"messages"`
	Total          int            `json:"total"`
}

// StatsResponse is the body of GET /documents/stats.
type StatsResponse struct {
	TotalChunks    uint64 `json:"total_chunks"`
	CollectionName string `json:"collection_name"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// ModelHealthResponse is the body of GET /health/models.
type ModelHealthResponse struct {
	Available bool   `json:"available"`
	Model     string `json:"model"`
	ServerURL string `json:"server_url"`
}

// EventsHealthResponse is the body of GET /health/events.
type EventsHealthResponse struct {
	Healthy bool `json:"healthy"`
}

// InfoResponse is the body of GET /.
type InfoResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
