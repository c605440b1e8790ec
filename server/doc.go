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


// Package server exposes the chat orchestrator over HTTP.
//
// Buffered chat, streaming chat over server-sent events, document
// ingestion, history, stats, and health probes each get one route.
// Domain validation errors map to 400, backend failures to 500, and a
// failure after a stream has started is delivered in-band as a
// "data: [ERROR] ..." event since the status line is already gone.
package server
