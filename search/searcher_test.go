package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	aimock "github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noExpansion makes the completer decline rephrasing and answer otherwise.
func noExpansion(ctx context.Context, prompt, evidence string) (string, error) {
	if evidence == "" {
		return "", nil
	}
	return "synthesized", nil
}

func newTestSearcher(t *testing.T, index storage.VectorIndex, repo storage.MessageRepository, completer *aimock.MockCompleter, opts ...Option) *Searcher {
	t.Helper()
	s, err := NewSearcher(index, repo, completer, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSearcher(t *testing.T) {
	index := mock.NewMockVectorIndex()
	repo := mock.NewMockMessageRepository()
	completer := aimock.NewMockCompleter()

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(index, repo, completer)
		require.NoError(t, err)
		assert.NotNil(t, s)
		require.NoError(t, s.Close())
	})

	t.Run("with custom logger", func(t *testing.T) {
		s, err := NewSearcher(index, repo, completer, WithLogger(slog.Default()))
		require.NoError(t, err)
		require.NoError(t, s.Close())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewSearcher(index, repo, completer, WithLogger(nil))
		require.NoError(t, err)
		require.NoError(t, s.Close())
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewSearcher(nil, repo, completer)
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(index, nil, completer)
		assert.Equal(t, ErrMessageRepositoryRequired, err)
	})

	t.Run("nil completer", func(t *testing.T) {
		_, err := NewSearcher(index, repo, nil)
		assert.Equal(t, ErrCompleterRequired, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxEvidence = 0
		_, err := NewSearcher(index, repo, completer, WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewSearcher(index, repo, completer, WithConfig(nil))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestPerformSearch_InvalidInput(t *testing.T) {
	index := mock.NewMockVectorIndex()
	s := newTestSearcher(t, index, mock.NewMockMessageRepository(), aimock.NewMockCompleter())

	tests := []struct {
		name   string
		query  string
		userID string
	}{
		{"empty query", "", "u1"},
		{"blank query", "   \t", "u1"},
		{"punctuation only", "?!...", "u1"},
		{"empty user", "lunch plans", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := newRecordingMonitor()
			answer, err := s.PerformSearchWithMonitor(context.Background(), tt.query, tt.userID, monitor)
			assert.Nil(t, answer)
			assert.Equal(t, ErrInvalidQuery, err)
			assert.True(t, monitor.finished)
			assert.Equal(t, ErrInvalidQuery, monitor.finishErr)
		})
	}
	assert.Equal(t, 0, index.CallCount())
}

func TestPerformSearch_NoResults(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = noExpansion
	s := newTestSearcher(t, mock.NewMockVectorIndex(), mock.NewMockMessageRepository(), completer)

	answer, err := s.PerformSearch(context.Background(), "what did we decide about the offsite", "u1")
	require.NoError(t, err)
	assert.Equal(t, NoAccessibleInformation, answer.Answer)
	assert.Empty(t, answer.Evidence)

	// only the expansion request reached the model
	for _, call := range completer.Calls() {
		assert.Empty(t, call.Evidence)
	}
}

func TestPerformSearch_NothingAccessible(t *testing.T) {
	now := time.Now()
	repo := mock.NewMockMessageRepository(
		&core.Message{ID: "private", Kind: core.KindDM, SenderID: "alice", ReceiverID: "bob"},
	)
	index := mock.NewMockVectorIndex()
	index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
		return []core.SearchResult{
			dmResult("private", "the offsite is cancelled", 0.9, now),
			channelResult("deleted", "offsite plans", 0.8, now),
		}, nil
	}
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = noExpansion
	s := newTestSearcher(t, index, repo, completer)

	answer, err := s.PerformSearch(context.Background(), "what about the offsite", "mallory")
	require.NoError(t, err)
	assert.Equal(t, NoAccessibleInformation, answer.Answer)
	assert.Empty(t, answer.Evidence)
}

func TestPerformSearch_HiringScenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posted := now.Add(-2 * time.Hour)
	query := "How many roles are hiring right now?"
	base := Normalize(query)

	repo := mock.NewMockMessageRepository(
		&core.Message{ID: "channel", Kind: core.KindChannel, ChannelID: "general", Content: "We're hiring for 60+ roles right now"},
		&core.Message{ID: "dm", Kind: core.KindDM, SenderID: "recruiter", ReceiverID: "me", Content: "hiring for 5 roles"},
	)
	index := mock.NewMockVectorIndex()
	index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
		if text != base {
			return []core.SearchResult{}, nil
		}
		if opts.Mode == storage.ModeSemantic {
			return []core.SearchResult{channelResult("channel", "We're hiring for 60+ roles right now", 0.9, posted)}, nil
		}
		return []core.SearchResult{dmResult("dm", "hiring for 5 roles", 0.9, posted)}, nil
	}
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = noExpansion
	s := newTestSearcher(t, index, repo, completer, WithClock(func() time.Time { return now }))

	monitor := newRecordingMonitor()
	answer, err := s.PerformSearchWithMonitor(context.Background(), query, "me", monitor)
	require.NoError(t, err)

	// four variations, two modes each, no expansion
	assert.Equal(t, 8, index.CallCount())

	t.Run("channel message leads after fusion", func(t *testing.T) {
		require.Equal(t, []string{"channel", "dm"}, ids(monitor.fused))
		b := 0.9 / 11
		assert.InDelta(t, 4.2*b, monitor.fused[0].Score, 1e-9)
		assert.InDelta(t, 4.14*b, monitor.fused[1].Score, 1e-9)
	})

	t.Run("final direct message boost reorders evidence", func(t *testing.T) {
		require.Len(t, answer.Evidence, 2)
		assert.Equal(t, "dm", answer.Evidence[0].MessageID)
		assert.Equal(t, "recruiter", answer.Evidence[0].OtherUserID)
		assert.Equal(t, "channel", answer.Evidence[1].MessageID)
	})

	assert.Equal(t, "synthesized", answer.Answer)
	assert.Equal(t, "Found 2 relevant messages", answer.AdditionalContext)
	assert.True(t, monitor.finished)
	assert.NoError(t, monitor.finishErr)
	assert.Same(t, answer, monitor.answer)
}

func TestPerformSearch_ExpansionCalledOnceWithinTTL(t *testing.T) {
	now := time.Now()
	index := mock.NewMockVectorIndex()
	index.SetResults("what did we decide about the offsite", channelResult("c1", "offsite moved to May", 0.7, now))
	index.SetResults("offsite decision", channelResult("c2", "offsite decided", 0.6, now))
	repo := mock.NewMockMessageRepository(
		&core.Message{ID: "c1", Kind: core.KindChannel, ChannelID: "general"},
		&core.Message{ID: "c2", Kind: core.KindChannel, ChannelID: "general"},
	)
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt, evidence string) (string, error) {
		if evidence == "" {
			return "offsite decision", nil
		}
		return "May", nil
	}
	s := newTestSearcher(t, index, repo, completer)

	for i := 0; i < 3; i++ {
		answer, err := s.PerformSearch(context.Background(), "What did we decide about the offsite?", "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, []string{answer.Evidence[0].MessageID, answer.Evidence[1].MessageID})
	}

	rephrasings := 0
	for _, call := range completer.Calls() {
		if call.Evidence == "" {
			rephrasings++
		}
	}
	assert.Equal(t, 1, rephrasings)
	assert.Equal(t, 4, completer.CallCount())
}

func TestPerformSearch_PermissionSoundness(t *testing.T) {
	now := time.Now()
	repo := mock.NewMockMessageRepository(
		&core.Message{ID: "mine", Kind: core.KindDM, SenderID: "me", ReceiverID: "bob"},
		&core.Message{ID: "theirs", Kind: core.KindDM, SenderID: "alice", ReceiverID: "bob"},
		&core.Message{ID: "public", Kind: core.KindChannel, ChannelID: "general"},
	)
	index := mock.NewMockVectorIndex()
	index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
		return []core.SearchResult{
			dmResult("theirs", "salary bands", 0.9, now),
			dmResult("mine", "salary question", 0.8, now),
			channelResult("public", "salary review cycle", 0.7, now),
		}, nil
	}
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = noExpansion
	s := newTestSearcher(t, index, repo, completer)

	answer, err := s.PerformSearch(context.Background(), "salary review timeline", "me")
	require.NoError(t, err)

	var got []string
	for _, item := range answer.Evidence {
		got = append(got, item.MessageID)
		if item.Type == core.KindDM {
			assert.Contains(t, []string{item.SenderID, item.ReceiverID}, "me")
		}
	}
	assert.ElementsMatch(t, []string{"mine", "public"}, got)
	assert.NotContains(t, completer.Calls()[len(completer.Calls())-1].Evidence, "salary bands")
}

func TestPerformSearch_Failures(t *testing.T) {
	now := time.Now()
	boom := errors.New("boom")

	t.Run("partial retrieval failure is tolerated", func(t *testing.T) {
		index := mock.NewMockVectorIndex()
		index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
			if opts.Mode == storage.ModeLexical {
				return nil, boom
			}
			return []core.SearchResult{channelResult("c1", "notes", 0.5, now)}, nil
		}
		repo := mock.NewMockMessageRepository(&core.Message{ID: "c1", Kind: core.KindChannel, ChannelID: "general"})
		completer := aimock.NewMockCompleter()
		completer.CompleteFunc = noExpansion
		s := newTestSearcher(t, index, repo, completer)

		monitor := newRecordingMonitor()
		answer, err := s.PerformSearchWithMonitor(context.Background(), "meeting notes please", "u1", monitor)
		require.NoError(t, err)
		assert.Len(t, answer.Evidence, 1)
		assert.Equal(t, 1, monitor.failures)
	})

	t.Run("all retrieval calls fail", func(t *testing.T) {
		index := mock.NewMockVectorIndex()
		index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
			return nil, boom
		}
		completer := aimock.NewMockCompleter()
		completer.CompleteFunc = noExpansion
		s := newTestSearcher(t, index, mock.NewMockMessageRepository(), completer)

		monitor := newRecordingMonitor()
		answer, err := s.PerformSearchWithMonitor(context.Background(), "meeting notes please", "u1", monitor)
		assert.Nil(t, answer)
		assert.ErrorIs(t, err, ErrSearchFailed)
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, monitor.finishErr, ErrRetrievalFailed)
	})

	t.Run("permission lookup failure", func(t *testing.T) {
		index := mock.NewMockVectorIndex()
		index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
			return []core.SearchResult{channelResult("c1", "notes", 0.5, now)}, nil
		}
		repo := mock.NewMockMessageRepository()
		repo.FindChannelMessageIDsAmongFunc = func(ctx context.Context, ids []string) ([]string, error) {
			return nil, boom
		}
		completer := aimock.NewMockCompleter()
		completer.CompleteFunc = noExpansion
		s := newTestSearcher(t, index, repo, completer)

		_, err := s.PerformSearch(context.Background(), "meeting notes please", "u1")
		assert.ErrorIs(t, err, ErrSearchFailed)
		assert.ErrorIs(t, err, ErrPermissionLookupFailed)
	})

	t.Run("synthesis failure", func(t *testing.T) {
		index := mock.NewMockVectorIndex()
		index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
			return []core.SearchResult{channelResult("c1", "notes", 0.5, now)}, nil
		}
		repo := mock.NewMockMessageRepository(&core.Message{ID: "c1", Kind: core.KindChannel, ChannelID: "general"})
		completer := aimock.NewMockCompleter()
		completer.CompleteFunc = func(ctx context.Context, prompt, evidence string) (string, error) {
			if evidence == "" {
				return "", nil
			}
			return "", boom
		}
		s := newTestSearcher(t, index, repo, completer)

		answer, err := s.PerformSearch(context.Background(), "meeting notes please", "u1")
		assert.Nil(t, answer)
		assert.ErrorIs(t, err, ErrSearchFailed)
		assert.ErrorIs(t, err, ErrSynthesisFailed)
	})

	t.Run("expansion failure is not surfaced", func(t *testing.T) {
		index := mock.NewMockVectorIndex()
		index.QueryFunc = func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
			return []core.SearchResult{channelResult("c1", "notes", 0.5, now)}, nil
		}
		repo := mock.NewMockMessageRepository(&core.Message{ID: "c1", Kind: core.KindChannel, ChannelID: "general"})
		completer := aimock.NewMockCompleter()
		completer.CompleteFunc = func(ctx context.Context, prompt, evidence string) (string, error) {
			if evidence == "" {
				return "", boom
			}
			return "ok", nil
		}
		s := newTestSearcher(t, index, repo, completer)

		monitor := newRecordingMonitor()
		answer, err := s.PerformSearchWithMonitor(context.Background(), "meeting notes please", "u1", monitor)
		require.NoError(t, err)
		assert.Equal(t, "ok", answer.Answer)
		assert.Equal(t, []ExpansionSource{ExpansionFailed}, monitor.expansions)
	})
}

func TestSearcher_Close(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt, evidence string) (string, error) {
		return "rephrased", nil
	}

	t.Run("searches fail after close", func(t *testing.T) {
		s, err := NewSearcher(mock.NewMockVectorIndex(), mock.NewMockMessageRepository(), completer)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = s.PerformSearch(context.Background(), "meeting notes please", "u1")
		assert.ErrorIs(t, err, ErrSearchFailed)
	})

	t.Run("shared expansion cache survives", func(t *testing.T) {
		cache, err := NewExpansionCache(completer, 16)
		require.NoError(t, err)

		s, err := NewSearcher(mock.NewMockVectorIndex(), mock.NewMockMessageRepository(), completer, WithExpansionCache(cache))
		require.NoError(t, err)
		_, err = s.PerformSearch(context.Background(), "meeting notes please", "u1")
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.Equal(t, 1, cache.Len())
	})
}
