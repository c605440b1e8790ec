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


// Package events publishes chat activity to Kafka on a best-effort basis.
//
// Completed exchanges go to one topic, streaming fragments to another.
// Publishing never fails a chat operation: every publish method reports
// success as a bool rather than an error, and a broker outage degrades
// the publisher to a no-op. Use NewDisabled when eventing is turned off
// so callers never need a nil check.
package events
