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

// Package storage provides the storage abstraction layer for passage.
//
// ChunkRepository decouples the ingestion pipeline and the searcher from the
// concrete backend. Two implementations exist:
//
//   - storage/badger: embedded key-value store (default)
//   - storage/sqlite: single-table SQL store shaped like a vector table
//
// Public constructors return the storage.ChunkRepository interface:
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Deduplication
//
// FindByContent matches on the exact content string. Backends may index a
// hash of the content but always compare the full text, so two different
// chunks never alias.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use. All methods
// accept a context.Context for cancellation.
package storage
