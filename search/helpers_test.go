package search

import (
	"sync"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

func channelResult(id, content string, score float64, created time.Time) core.SearchResult {
	return core.SearchResult{
		Content: content,
		Metadata: core.Metadata{
			MessageID: id,
			UserName:  "user-" + id,
			CreatedAt: created,
			Source:    core.ChannelSource{ChannelID: "general"},
		},
		Score: score,
	}
}

func dmResult(id, content string, score float64, created time.Time) core.SearchResult {
	return core.SearchResult{
		Content: content,
		Metadata: core.Metadata{
			MessageID: id,
			UserName:  "user-" + id,
			CreatedAt: created,
			Source:    core.DirectSource{},
		},
		Score: score,
	}
}

func summaryResult(id, content string, score float64, created time.Time) core.SearchResult {
	r := channelResult(id, content, score, created)
	r.Metadata.Source = core.SummarySource{ChannelID: "general"}
	return r
}

func ids(results []core.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Metadata.MessageID
	}
	return out
}

// recordingMonitor captures monitor callbacks.
type recordingMonitor struct {
	mu         sync.Mutex
	started    bool
	expansions []ExpansionSource
	calls      map[storage.Mode]int
	failures   int
	retrieved  [][]core.SearchResult
	fused      []core.SearchResult
	permitted  []core.SearchResult
	answer     *core.Answer
	finishErr  error
	finished   bool
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{calls: make(map[storage.Mode]int)}
}

func (m *recordingMonitor) Start(_, _ string) { m.started = true }

func (m *recordingMonitor) ExpansionResolved(source ExpansionSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expansions = append(m.expansions, source)
}

func (m *recordingMonitor) RetrievalCall(mode storage.Mode, _ int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[mode]++
	if err != nil {
		m.failures++
	}
}

func (m *recordingMonitor) AfterRetrieval(lists [][]core.SearchResult)       { m.retrieved = lists }
func (m *recordingMonitor) AfterFusion(fused []core.SearchResult)            { m.fused = fused }
func (m *recordingMonitor) AfterPermissionFilter(permitted []core.SearchResult) { m.permitted = permitted }

func (m *recordingMonitor) Finish(answer *core.Answer, err error) {
	m.finished = true
	m.answer = answer
	m.finishErr = err
}
