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

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// DocumentStore stores message documents in BadgerDB.
type DocumentStore struct {
	backend *Backend
}

// NewDocumentStore creates a DocumentStore on an open backend.
func NewDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Close closes the underlying backend.
func (s *DocumentStore) Close() error {
	return s.backend.Close()
}

// PutDocuments stores documents, replacing any with the same ID.
func (s *DocumentStore) PutDocuments(ctx context.Context, docs ...*core.Document) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.ID == "" {
				return fmt.Errorf("%w: document has no id", storage.ErrInvalidQuery)
			}
			if err := tx.Set(makeMessageDocKey(doc.ID), storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
// Returns storage.ErrNotFound if the document doesn't exist.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	var doc *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMessageDocKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = storage.UnmarshalDocument(val)
			return err
		})
	}, false)
	return doc, err
}

// DeleteDocuments removes documents by ID. Missing IDs are ignored.
func (s *DocumentStore) DeleteDocuments(ctx context.Context, ids ...string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeMessageDocKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar delegates to the backend.
func (s *DocumentStore) FindSimilar(ctx context.Context, vector []float32, minSimilarity float64, limit int, userID string) ([]core.SearchResult, error) {
	return s.backend.FindSimilar(ctx, vector, minSimilarity, limit, userID)
}
