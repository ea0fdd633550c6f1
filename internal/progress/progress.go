// Package progress reports download progress to interested consumers
// without ever blocking the transfer that produces it.
package progress

import (
	"fmt"
	"time"
)

// Update is a single progress snapshot.
type Update struct {
	Done    int64
	Total   int64
	Percent float64
	Speed   float64 // bytes per second
	ETA     time.Duration
}

// String renders the snapshot the way it is shown to users.
func (u Update) String() string {
	return fmt.Sprintf("%.1f%% (%s/%s) %s/s",
		u.Percent,
		humanSize(u.Done),
		humanSize(u.Total),
		humanSize(int64(u.Speed)),
	)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// Tracker throttles raw byte-count callbacks into a stream of Updates.
// An update is emitted when at least minInterval has passed since the
// previous one, when progress crosses a 5% boundary, or on completion.
// The updates channel is buffered and never blocks the producer: if the
// consumer lags, snapshots are dropped.
type Tracker struct {
	updates chan Update

	start       time.Time
	lastEmit    time.Time
	lastPercent float64

	now func() time.Time
}

const (
	minInterval = 500 * time.Millisecond
	percentStep = 5.0
)

func NewTracker() *Tracker {
	t := &Tracker{
		updates: make(chan Update, 16),
		now:     time.Now,
	}
	t.start = t.now()
	t.lastEmit = t.start
	t.lastPercent = -percentStep
	return t
}

// Updates is the consumer side of the tracker. It is closed by Close.
func (t *Tracker) Updates() <-chan Update {
	return t.updates
}

// Report is called from the download loop with cumulative byte counts.
func (t *Tracker) Report(done, total int64) {
	now := t.now()

	var percent float64
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}
	finished := total > 0 && done >= total

	if !finished &&
		now.Sub(t.lastEmit) < minInterval &&
		percent < t.lastPercent+percentStep {
		return
	}

	elapsed := now.Sub(t.start).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(done) / elapsed
	}
	var eta time.Duration
	if speed > 0 && total > done {
		eta = time.Duration(float64(total-done)/speed) * time.Second
	}

	t.lastEmit = now
	t.lastPercent = percent

	select {
	case t.updates <- Update{Done: done, Total: total, Percent: percent, Speed: speed, ETA: eta}:
	default:
	}
}

// Close signals the consumer that no more updates will follow.
func (t *Tracker) Close() {
	close(t.updates)
}
