// Package mock provides test doubles for the storage interfaces.
//
// Each mock exposes function fields for custom behavior and records its calls.
// Without a function set, MockVectorIndex returns the results registered for a
// query text and MockMessageRepository answers from its in-memory message set.
//
//	idx := mock.NewMockVectorIndex()
//	idx.SetResults("hiring", results...)
//	idx.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
//	    return nil, errors.New("index unavailable")
//	}
//
// All mocks are safe for concurrent use.
package mock
