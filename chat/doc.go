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


// Package chat orchestrates retrieval-augmented conversations.
//
// The Service ties the pieces together: it retrieves semantic matches
// and conversation history from the chunk store, folds them into the
// generation prompt, runs buffered or streaming generation through the
// AI provider, persists each completed exchange back into the store as
// searchable context, and publishes activity to the event bus.
//
// Persistence and retrieval are synchronous so a follow-up question in
// the same conversation always sees the previous exchange. Event
// publishing is best-effort and never fails a chat operation.
package chat
