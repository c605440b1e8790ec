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

import "errors"

// Domain validation errors. These are caller errors and map to a 4xx
// response at the HTTP boundary, distinct from backend failures.
var (
	// ErrEmptyMessage indicates a chat request with no message text.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrEmptyContent indicates a document with no content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTemperature indicates a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")

	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be greater than 0")
)
