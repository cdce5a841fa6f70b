package search

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/recollect/core"
)

var (
	// numberPattern matches a count, optionally qualified as a lower bound ("60+", "60 plus").
	numberPattern = regexp.MustCompile(`\d+(\+|\s*plus)?`)

	hiringPhrases = []string{
		"hiring for",
		"open positions",
		"job openings",
		"current roles",
		"looking to hire",
	}
)

const (
	numberBoost    = 1.0
	qualifierBoost = 0.5
	phraseBoost    = 0.3
)

// fusionEntry accumulates the best score seen for one message across lists.
type fusionEntry struct {
	doc        core.SearchResult
	best       float64
	matchCount int
	hasNumber  bool
	isRecent   bool
}

// contentScore rates how directly text answers a query with the given intent.
func contentScore(text string, intent Intent) (score float64, matchCount int, hasNumber bool) {
	lower := strings.ToLower(text)

	if intent.Hiring && intent.Quantity {
		if m := numberPattern.FindStringSubmatch(lower); m != nil {
			score += numberBoost
			hasNumber = true
			if m[1] != "" {
				score += qualifierBoost
			}
		}
	}

	for _, phrase := range hiringPhrases {
		if strings.Contains(lower, phrase) {
			score += phraseBoost
			matchCount++
		}
	}
	return score, matchCount, hasNumber
}

// Fuse merges ranked lists into one list ordered by fused score, highest first.
//
// Each document at 0-based rank r scores 1/(k+r+1) times its retrieval score,
// then direct-message, content and recency boosts apply. A document found in
// several lists keeps its maximum score. Ties keep first-seen order.
func Fuse(lists [][]core.SearchResult, intent Intent, now time.Time, cfg *Config) []core.SearchResult {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	entries := make(map[string]*fusionEntry)
	order := make([]*fusionEntry, 0)

	for _, list := range lists {
		for rank, doc := range list {
			score := 1.0 / float64(cfg.RRFK+rank+1)

			retrieval := doc.Score
			if retrieval == 0 {
				retrieval = cfg.UnscoredScore
			}
			score *= retrieval

			if doc.Metadata.Kind() == core.KindDM {
				score *= cfg.DirectMessageBoost
			}

			content, matchCount, hasNumber := contentScore(doc.Content, intent)
			score *= 1 + content

			recent := !doc.Metadata.CreatedAt.IsZero() && now.Sub(doc.Metadata.CreatedAt) <= cfg.RecencyWindow
			if recent && intent.Current {
				score *= cfg.RecencyBoost
			}

			id := doc.Metadata.MessageID
			entry, ok := entries[id]
			if !ok {
				entry = &fusionEntry{
					doc:        doc,
					best:       score,
					matchCount: matchCount,
					hasNumber:  hasNumber,
					isRecent:   recent,
				}
				entries[id] = entry
				order = append(order, entry)
				continue
			}
			entry.best = max(entry.best, score)
			entry.matchCount = max(entry.matchCount, matchCount)
			entry.hasNumber = entry.hasNumber || hasNumber
			entry.isRecent = entry.isRecent || recent
		}
	}

	slices.SortStableFunc(order, func(a, b *fusionEntry) int {
		switch {
		case a.best > b.best:
			return -1
		case a.best < b.best:
			return 1
		}
		return 0
	})

	fused := make([]core.SearchResult, len(order))
	for i, entry := range order {
		fused[i] = entry.doc
		fused[i].Score = entry.best
	}
	return fused
}
