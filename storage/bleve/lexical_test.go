package bleve

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *LexicalIndex {
	t.Helper()
	idx, err := NewMemoryLexicalIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seed(t *testing.T, idx *LexicalIndex) {
	t.Helper()
	require.NoError(t, idx.Index(context.Background(),
		&core.Message{ID: "c1", Content: "We're hiring for 60+ roles right now"},
		&core.Message{ID: "d1", Content: "hiring for 5 roles"},
		&core.Message{ID: "x1", Content: "lunch is at noon on friday"},
	))
}

func TestLexicalIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	t.Run("matches keywords", func(t *testing.T) {
		hits, total, err := idx.Search(ctx, "hiring roles", 0, 10)
		require.NoError(t, err)

		ids := make([]string, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
		assert.ElementsMatch(t, []string{"c1", "d1"}, ids)
		assert.Equal(t, uint64(2), total)
	})

	t.Run("scores are normalized", func(t *testing.T) {
		hits, _, err := idx.Search(ctx, "hiring roles", 0, 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)

		assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
		for _, h := range hits {
			assert.Greater(t, h.Score, 0.0)
			assert.LessOrEqual(t, h.Score, 1.0)
		}
	})

	t.Run("stemming", func(t *testing.T) {
		hits, _, err := idx.Search(ctx, "role", 0, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("pages share one normalization", func(t *testing.T) {
		first, total, err := idx.Search(ctx, "hiring", 0, 1)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, uint64(2), total)
		assert.InDelta(t, 1.0, first[0].Score, 1e-9)

		second, _, err := idx.Search(ctx, "hiring", 1, 1)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.NotEqual(t, first[0].ID, second[0].ID)
		assert.LessOrEqual(t, second[0].Score, 1.0)
		assert.Greater(t, second[0].Score, 0.0)

		rest, _, err := idx.Search(ctx, "hiring", 2, 1)
		require.NoError(t, err)
		assert.Empty(t, rest)
	})

	t.Run("no match", func(t *testing.T) {
		hits, total, err := idx.Search(ctx, "quarterly budget", 0, 10)
		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
		assert.Zero(t, total)
	})

	t.Run("blank query", func(t *testing.T) {
		hits, _, err := idx.Search(ctx, "   ", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestLexicalIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.Delete(ctx, "d1", "never-indexed"))
	require.NoError(t, idx.Delete(ctx))

	hits, _, err := idx.Search(ctx, "hiring", 0, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ID)
}

func TestLexicalIndex_Closed(t *testing.T) {
	idx, err := NewMemoryLexicalIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, _, err = idx.Search(context.Background(), "hiring", 0, 10)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = idx.Index(context.Background(), &core.Message{ID: "a", Content: "b"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestLexicalIndex_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexical", "messages.bleve")

	idx, err := NewLexicalIndex(path)
	require.NoError(t, err)
	seed(t, idx)
	require.NoError(t, idx.Close())

	idx, err = NewLexicalIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	hits, total, err := idx.Search(context.Background(), "lunch", 0, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "x1", hits[0].ID)
	assert.Equal(t, uint64(1), total)
}
