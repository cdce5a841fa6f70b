package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"golang.org/x/sync/errgroup"
)

// PermissionFilter restricts results to messages a user may see, using the
// message repository as the source of truth.
type PermissionFilter struct {
	repo   storage.MessageRepository
	logger *slog.Logger
}

// NewPermissionFilter creates a filter backed by repo.
func NewPermissionFilter(repo storage.MessageRepository, logger *slog.Logger) (*PermissionFilter, error) {
	if repo == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionFilter{
		repo:   repo,
		logger: logger.With("component", "permission-filter"),
	}, nil
}

// Filter keeps, in order, the results userID may see. Channel and summary
// messages are visible if they exist; direct messages only to their sender
// and receiver. Surviving direct messages are annotated with participants.
//
// Both lookups run concurrently; if either fails, nothing is returned.
func (f *PermissionFilter) Filter(ctx context.Context, results []core.SearchResult, userID string) ([]core.SearchResult, error) {
	var channelIDs, directIDs []string
	for _, r := range results {
		switch r.Metadata.Kind() {
		case core.KindDM:
			directIDs = append(directIDs, r.Metadata.MessageID)
		default:
			channelIDs = append(channelIDs, r.Metadata.MessageID)
		}
	}

	var visibleChannel []string
	var visibleDirect []core.DirectMessageRecord

	g, gctx := errgroup.WithContext(ctx)
	if len(channelIDs) > 0 {
		g.Go(func() error {
			var err error
			visibleChannel, err = f.repo.FindChannelMessageIDsAmong(gctx, channelIDs)
			return err
		})
	}
	if len(directIDs) > 0 {
		g.Go(func() error {
			var err error
			visibleDirect, err = f.repo.FindDirectMessageRecordsAmong(gctx, directIDs, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		f.logger.Error("permission lookup failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrPermissionLookupFailed, err)
	}

	channelSet := make(map[string]struct{}, len(visibleChannel))
	for _, id := range visibleChannel {
		channelSet[id] = struct{}{}
	}
	directSet := make(map[string]core.DirectMessageRecord, len(visibleDirect))
	for _, rec := range visibleDirect {
		// a record the user is not part of is never trusted
		if rec.SenderID != userID && rec.ReceiverID != userID {
			continue
		}
		directSet[rec.ID] = rec
	}

	permitted := make([]core.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Metadata.Kind() == core.KindDM {
			rec, ok := directSet[r.Metadata.MessageID]
			if !ok {
				continue
			}
			other := rec.SenderID
			if rec.SenderID == userID {
				other = rec.ReceiverID
			}
			r.Metadata.Source = core.DirectSource{
				SenderID:    rec.SenderID,
				ReceiverID:  rec.ReceiverID,
				OtherUserID: other,
			}
			permitted = append(permitted, r)
			continue
		}
		if _, ok := channelSet[r.Metadata.MessageID]; ok {
			permitted = append(permitted, r)
		}
	}

	f.logger.Debug("filtered results", "candidates", len(results), "permitted", len(permitted))
	return permitted, nil
}
