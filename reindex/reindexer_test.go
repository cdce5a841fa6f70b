package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepository(n int) *mock.MockMessageRepository {
	msgs := make([]*core.Message, n)
	for i := range msgs {
		msgs[i] = &core.Message{
			ID:        fmt.Sprintf("m%03d", i),
			Kind:      core.KindChannel,
			ChannelID: "general",
			Content:   fmt.Sprintf("message %d", i),
		}
	}
	return mock.NewMockMessageRepository(msgs...)
}

func testConfig() *Config {
	return &Config{BatchSize: 4, ReportInterval: 4, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestNewReindexer(t *testing.T) {
	repo := mock.NewMockMessageRepository()
	indexer := mock.NewMockIndexer()

	_, err := NewReindexer(nil, indexer, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewReindexer(repo, nil, nil, nil)
	assert.ErrorIs(t, err, ErrIndexerRequired)

	_, err = NewReindexer(repo, indexer, &Config{BatchSize: 1, ReportInterval: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	r, err := NewReindexer(repo, indexer, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), r.config)
}

func TestReindexer_Run(t *testing.T) {
	t.Run("indexes every message in batches", func(t *testing.T) {
		indexer := mock.NewMockIndexer()
		var out bytes.Buffer
		r, err := NewReindexer(seededRepository(10), indexer, testConfig(), &out)
		require.NoError(t, err)

		n, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10, n)

		batches := indexer.Batches()
		require.Len(t, batches, 3)
		assert.Len(t, batches[0], 4)
		assert.Len(t, batches[2], 2)
		assert.Equal(t, "m000", batches[0][0].ID)
		assert.Equal(t, "m009", batches[2][1].ID)

		assert.Contains(t, out.String(), "Reindexing 10 messages")
		assert.Contains(t, out.String(), "Reindex complete. Indexed 10 messages")
	})

	t.Run("empty repository", func(t *testing.T) {
		indexer := mock.NewMockIndexer()
		var out bytes.Buffer
		r, err := NewReindexer(mock.NewMockMessageRepository(), indexer, testConfig(), &out)
		require.NoError(t, err)

		n, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, indexer.Batches())
		assert.Contains(t, out.String(), "No messages found")
	})

	t.Run("retries failed batches", func(t *testing.T) {
		failures := 0
		indexer := mock.NewMockIndexer()
		indexer.IndexFunc = func(ctx context.Context, messages ...*core.Message) error {
			if failures < 2 {
				failures++
				return errors.New("embedding service unavailable")
			}
			return nil
		}
		r, err := NewReindexer(seededRepository(3), indexer, testConfig(), nil)
		require.NoError(t, err)

		n, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Len(t, indexer.Batches(), 3)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		boom := errors.New("embedding service down")
		indexer := mock.NewMockIndexer()
		indexer.IndexFunc = func(ctx context.Context, messages ...*core.Message) error {
			return boom
		}
		r, err := NewReindexer(seededRepository(6), indexer, testConfig(), nil)
		require.NoError(t, err)

		n, err := r.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, n)
		assert.Len(t, indexer.Batches(), 3)
	})
}

func TestMessageIterator(t *testing.T) {
	t.Run("exact multiple of batch size", func(t *testing.T) {
		var pages [][]*core.Message
		err := NewMessageIterator(seededRepository(8), 4).ForEach(context.Background(), func(msgs []*core.Message) error {
			pages = append(pages, msgs)
			return nil
		})
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "m004", pages[1][0].ID)
	})

	t.Run("stops on callback error", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := NewMessageIterator(seededRepository(8), 2).ForEach(context.Background(), func([]*core.Message) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewMessageIterator(seededRepository(2), 0).ForEach(ctx, func([]*core.Message) error {
			t.Fatal("callback should not run")
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
