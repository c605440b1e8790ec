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


package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/poiesic/ragserve/core"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Service: serviceName,
		Version: version,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.service.ProcessChat(r.Context(), req.toServiceRequest())
	if err != nil {
		s.logger.Error("chat failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:       resp.Response,
		ConversationId: resp.ConversationId,
		ContextUsed:    resp.ContextUsed,
		Usage:          resp.Usage,
	})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	serviceReq := req.toServiceRequest()

	// Validate before committing to the event-stream content type so
	// caller errors still come back as JSON.
	if err := core.ValidateMessage(serviceReq.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := core.ValidateTemperature(serviceReq.Temperature); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := func(ctx context.Context, chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if _, err := s.service.ProcessChatStream(r.Context(), serviceReq, sink); err != nil {
		s.logger.Error("chat stream failed", "error", err)
		fmt.Fprintf(w, "data: [ERROR] %v\n\n", err)
		flusher.Flush()
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversationID")

	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		if err := core.ValidateLimit(parsed); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		limit = parsed
	}

	history := s.service.History(r.Context(), conversationID, limit)

	entries := make([]HistoryEntry, 0, len(history))
	for _, item := range history {
		entries = append(entries, HistoryEntry{
			Content:  item.Content,
			Metadata: item.Metadata,
		})
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		ConversationId: conversationID,
		Messages:       entries,
		Total:          len(entries),
	})
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.service.AddDocument(r.Context(), core.Document{
		Content:  req.Content,
		Metadata: req.Metadata,
	}, req.ConversationId)
	if err != nil {
		s.logger.Error("document ingestion failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{
		Message:       "Document added successfully",
		DocumentId:    result.DocumentId,
		ChunksCreated: result.ChunksCreated,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalChunks:    stats.TotalChunks,
		CollectionName: stats.CollectionName,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.service.HealthCheck(r.Context())

	components := map[string]string{
		"model":   statusWord(health.ModelAvailable),
		"storage": statusWord(health.StoreOk),
		"events":  statusWord(health.EventsHealthy),
	}

	// Events are best-effort and never degrade overall health.
	status := "healthy"
	if !health.ModelAvailable || !health.StoreOk {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     status,
		Components: components,
	})
}

func (s *Server) handleModelHealth(w http.ResponseWriter, r *http.Request) {
	health := s.service.HealthCheck(r.Context())

	writeJSON(w, http.StatusOK, ModelHealthResponse{
		Available: health.ModelAvailable,
		Model:     health.Model.Model,
		ServerURL: health.Model.ServerURL,
	})
}

func (s *Server) handleEventsHealth(w http.ResponseWriter, r *http.Request) {
	health := s.service.HealthCheck(r.Context())

	writeJSON(w, http.StatusOK, EventsHealthResponse{
		Healthy: health.EventsHealthy,
	})
}

func statusWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}

// statusFor maps domain validation errors to 400; everything else is a
// backend failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyMessage),
		errors.Is(err, core.ErrEmptyContent),
		errors.Is(err, core.ErrInvalidTemperature),
		errors.Is(err, core.ErrInvalidLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
