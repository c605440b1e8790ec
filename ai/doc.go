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


// Package ai defines the model-backend abstractions used by the chat
// pipeline: text embedding and answer generation.
//
// The interfaces here decouple the orchestration layer from any specific
// model backend. Concrete implementations live in subpackages (ai/ollama
// for local Ollama models via langchaingo, ai/mock for tests) and are
// aggregated by a Provider for convenient initialization and lifecycle
// management.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation subpackages return the interfaces
// defined here, not concrete types, to prevent coupling to backend
// specifics:
//
//	provider, err := ollama.NewProvider(cfg)  // returns ai.Provider
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. In particular,
// generation parameters such as temperature are per-call options and must
// never be stored as mutable state on a shared instance.
package ai
