package reindex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestTracker(buf *bytes.Buffer, total, interval int) (*ProgressTracker, *time.Time) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewProgressTracker(buf, total, interval)
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestProgressTracker(t *testing.T) {
	t.Run("reports on interval", func(t *testing.T) {
		var buf bytes.Buffer
		p, clock := newTestTracker(&buf, 100, 50)
		p.Start()

		*clock = clock.Add(time.Second)
		p.Update(20)
		assert.Empty(t, buf.String())

		p.Update(60)
		assert.Contains(t, buf.String(), "60/100 (60.0%) - 60.0 messages/s")
	})

	t.Run("finish reports total", func(t *testing.T) {
		var buf bytes.Buffer
		p, clock := newTestTracker(&buf, 100, 1000)
		p.Start()
		p.Update(75)
		*clock = clock.Add(2 * time.Second)
		p.Finish()

		assert.Contains(t, buf.String(), "100/100 (100.0%)")
		assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
		assert.Equal(t, 2*time.Second, p.Elapsed())
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		p, _ := newTestTracker(&buf, 10, 1)
		p.Start()
		p.Update(50)
		assert.Contains(t, buf.String(), "10/10")
	})

	t.Run("ignored before start", func(t *testing.T) {
		var buf bytes.Buffer
		p, _ := newTestTracker(&buf, 10, 1)
		p.Update(5)
		p.Finish()
		assert.Empty(t, buf.String())
		assert.Zero(t, p.Elapsed())
	})
}
