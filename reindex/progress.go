package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many messages have been reindexed.
type ProgressTracker struct {
	mu             sync.Mutex
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	now            func() time.Time
}

// NewProgressTracker reports to writer every reportInterval of total messages.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
		now:            time.Now,
	}
}

// Start begins tracking.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Update sets the number of messages done, capped at the total.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = min(current, p.total)
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish reports completion and ends the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return p.now().Sub(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if secs := p.now().Sub(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rReindexed: %d/%d (%.1f%%) - %.1f messages/s",
		p.current, p.total, percentage, rate)
}
