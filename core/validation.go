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

import "strings"

// ValidateMessage validates a chat message according to domain rules.
//
// Validation rules:
//   - Message must contain at least one non-whitespace character
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ValidateDocument validates a document prior to ingestion.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated:
//   - Metadata (any string-keyed map is acceptable, including nil)
func ValidateDocument(doc *Document) error {
	if doc == nil || doc.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// ValidateTemperature validates a sampling temperature. Zero is valid and
// means "use the service default".
func ValidateTemperature(temperature float64) error {
	if temperature < 0 || temperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}

// ValidateLimit validates a result limit for retrieval operations.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
