package metrics

import (
	"errors"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/search"
	"github.com/poiesic/recollect/storage"
)

// SearchMonitor records a single search into the package collectors.
// Create one per search.
type SearchMonitor struct {
	now   func() time.Time
	start time.Time
}

var _ search.SearchMonitor = (*SearchMonitor)(nil)

// NewSearchMonitor creates a monitor for one search.
func NewSearchMonitor() *SearchMonitor {
	return &SearchMonitor{now: time.Now}
}

func (m *SearchMonitor) Start(_, _ string) {
	m.start = m.now()
}

func (m *SearchMonitor) ExpansionResolved(source search.ExpansionSource) {
	ExpansionsTotal.WithLabelValues(string(source)).Inc()
}

func (m *SearchMonitor) RetrievalCall(mode storage.Mode, _ int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RetrievalCallsTotal.WithLabelValues(string(mode), outcome).Inc()
}

func (m *SearchMonitor) AfterRetrieval(_ [][]core.SearchResult)      {}
func (m *SearchMonitor) AfterFusion(_ []core.SearchResult)           {}
func (m *SearchMonitor) AfterPermissionFilter(_ []core.SearchResult) {}

func (m *SearchMonitor) Finish(answer *core.Answer, err error) {
	SearchDuration.Observe(m.now().Sub(m.start).Seconds())
	SearchesTotal.WithLabelValues(Outcome(answer, err)).Inc()
	if answer != nil {
		EvidenceItems.Observe(float64(len(answer.Evidence)))
	}
}

// Outcome classifies a finished search for the searches_total label.
func Outcome(answer *core.Answer, err error) string {
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		return "invalid"
	case err != nil:
		return "error"
	case answer == nil || len(answer.Evidence) == 0:
		return "empty"
	default:
		return "ok"
	}
}
