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


// Package storage provides the storage abstraction layer for talentscout.
//
// This package defines repository interfaces that decouple storage implementation
// from the search pipeline, plus the binary encoding of every stored record.
//
// # Architecture
//
//   - JobRepository: search jobs and their status transitions
//   - CandidateRepository: candidates, publications, affiliation years and analyses
//   - PostRepository: social posts, deduplicated by platform post id
//   - EmbeddingRepository: vectors keyed by (owner, kind, ref)
//
// Records are encoded with mus-go. Embedding vectors are stored as
// little-endian float32 values next to their dimension.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
