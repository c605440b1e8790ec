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
	"sort"
	"strings"

	"github.com/poiesic/ragserve/core"
)

// retrieveContext gathers semantic matches and conversation history and
// renders them as one context block. Retrieval failures degrade to an
// empty context rather than failing the turn; an empty context selects
// the context-free prompt downstream.
func (s *Service) retrieveContext(ctx context.Context, message, conversationID string, useContext bool) string {
	if !useContext {
		return ""
	}

	vector, err := s.provider.Embedder().EmbedText(ctx, message)
	if err != nil {
		s.logger.Warn("query embedding failed, continuing without context",
			"conversation_id", conversationID, "error", err)
		return ""
	}

	// Both retrievals are scoped to this conversation; documents added
	// without a conversation id are not visible here. Overlapping hits
	// are kept as-is, the merge does not deduplicate.
	merged := make([]core.RetrievalResult, 0, s.searchLimit+s.historyLimit)

	semantic, err := s.store.SearchSimilar(ctx, vector, s.searchLimit, conversationID)
	if err != nil {
		s.logger.Warn("semantic search failed, continuing without matches",
			"conversation_id", conversationID, "error", err)
	} else {
		merged = append(merged, semantic...)
	}

	history, err := s.store.ConversationContext(ctx, conversationID, s.historyLimit)
	if err != nil {
		s.logger.Warn("history retrieval failed, continuing without history",
			"conversation_id", conversationID, "error", err)
	} else {
		merged = append(merged, history...)
	}

	return formatContext(merged)
}

// formatContext renders retrieval results as numbered document blocks
// separated by blank lines. Metadata renders as one sorted key: value
// line so the output is deterministic.
func formatContext(results []core.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(results))
	for i, result := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "Document %d:\n%s", i+1, result.Content)
		if len(result.Metadata) > 0 {
			keys := make([]string, 0, len(result.Metadata))
			for k := range result.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+": "+result.Metadata[k])
			}
			b.WriteString("\nMetadata: " + strings.Join(pairs, ", "))
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}
