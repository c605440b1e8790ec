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


// Package ollama implements the ai interfaces against a local Ollama
// server using langchaingo.
//
// Generation supports both buffered and incremental (streamed) modes with
// identical output for identical inputs. Sampling parameters are applied
// per call; the shared LLM client is never mutated. Embeddings are
// memoized in-process, keyed by a BLAKE2b digest of the input text.
package ollama
