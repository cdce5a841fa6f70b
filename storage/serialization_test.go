package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSerialization(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.UTC)

	t.Run("direct message with vector", func(t *testing.T) {
		doc := &core.Document{
			Message: core.Message{
				ID: "d1", Kind: core.KindDM, UserID: "alice", UserName: "Alice",
				SenderID: "alice", ReceiverID: "bob", Content: "hiring for 5 roles", CreatedAt: created,
			},
			Vector: []float32{0.25, -1.5, 3},
		}

		got, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("channel message without vector", func(t *testing.T) {
		doc := &core.Document{Message: core.Message{
			ID: "c1", Kind: core.KindChannel, ChannelID: "general", Content: "ünïcode ✓", CreatedAt: created,
		}}

		got, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Equal(t, doc, got)
		assert.Nil(t, got.Vector)
	})

	t.Run("zero timestamp", func(t *testing.T) {
		doc := &core.Document{Message: core.Message{ID: "s1", Kind: core.KindSummary, Content: "x"}}

		got, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.IsZero())
	})

	t.Run("truncated input", func(t *testing.T) {
		data := MarshalDocument(&core.Document{
			Message: core.Message{ID: "d1", Content: "hello"},
			Vector:  []float32{1, 2},
		})

		for _, cut := range []int{0, 1, len(data) / 2, len(data) - 1} {
			_, err := UnmarshalDocument(data[:cut])
			assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data := MarshalDocument(&core.Document{Message: core.Message{ID: "d1", Content: "hello"}})
		_, err := UnmarshalDocument(append(data, 0x01))
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
