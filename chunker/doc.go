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


// Package chunker splits raw documents into bounded, overlapping segments
// suitable for embedding and storage.
//
// Splitting prefers paragraph boundaries, then line boundaries, then word
// boundaries, then character boundaries. A document shorter than the chunk
// size yields exactly one chunk; consecutive chunks from a longer document
// overlap so context survives the split boundary.
package chunker
