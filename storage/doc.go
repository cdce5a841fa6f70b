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

// Package storage provides the storage abstraction layer for recollect.
//
// This package defines the collaborator interfaces the search engine depends on,
// decoupling ranking logic from the backends that hold messages:
//
//   - MessageRepository: relational source of truth for message existence and
//     direct-message participants (storage/sqlite)
//   - VectorIndex: candidate retrieval by semantic or lexical mode
//     (composed in the index package from storage/badger and storage/bleve)
//   - MessageIndexer: makes messages retrievable by a VectorIndex
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep consumers decoupled from a
// particular backend:
//
//	repo, err := sqlite.NewMessageRepository(path)  // returns storage.MessageRepository
//
// Backend packages that are composed by other packages (storage/badger,
// storage/bleve) return concrete types so the composing package can reach
// backend-specific operations.
//
// # Usage in Tests
//
//	repo, err := sqlite.NewMessageRepository(filepath.Join(t.TempDir(), "messages.db"))
//	store, err := badger.NewMemoryDocumentStore()
//	lex, err := bleve.NewMemoryLexicalIndex()
//
// The storage/mock package provides function-field fakes of each interface.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access from
// multiple goroutines; the search engine issues retrieval calls in parallel.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout support.
package storage
