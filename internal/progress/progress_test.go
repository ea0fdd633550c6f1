package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTrackerAt(start time.Time) (*Tracker, *time.Time) {
	current := start
	tr := NewTracker()
	tr.now = func() time.Time { return current }
	tr.start = start
	tr.lastEmit = start
	return tr, &current
}

func drain(tr *Tracker) []Update {
	var out []Update
	for {
		select {
		case u := <-tr.Updates():
			out = append(out, u)
		default:
			return out
		}
	}
}

func TestTracker_ThrottlesByTime(t *testing.T) {
	start := time.Now()
	tr, clock := newTrackerAt(start)

	tr.Report(10, 1000) // first report always passes the percent gate
	tr.Report(20, 1000) // same instant, below both gates
	tr.Report(30, 1000)

	*clock = start.Add(600 * time.Millisecond)
	tr.Report(40, 1000)

	updates := drain(tr)
	assert.Len(t, updates, 2)
	assert.Equal(t, int64(10), updates[0].Done)
	assert.Equal(t, int64(40), updates[1].Done)
}

func TestTracker_EmitsOnPercentBoundary(t *testing.T) {
	start := time.Now()
	tr, _ := newTrackerAt(start)

	tr.Report(10, 1000) // 1%
	tr.Report(30, 1000) // 3%, suppressed
	tr.Report(70, 1000) // 7%, crosses the 5% step

	updates := drain(tr)
	assert.Len(t, updates, 2)
	assert.InDelta(t, 7.0, updates[1].Percent, 0.01)
}

func TestTracker_AlwaysEmitsCompletion(t *testing.T) {
	start := time.Now()
	tr, _ := newTrackerAt(start)

	tr.Report(10, 1000)
	tr.Report(1000, 1000) // same instant, but finished

	updates := drain(tr)
	assert.Len(t, updates, 2)
	assert.InDelta(t, 100.0, updates[1].Percent, 0.01)
}

func TestTracker_DropsWhenConsumerLags(t *testing.T) {
	start := time.Now()
	tr, clock := newTrackerAt(start)

	for i := 0; i < 50; i++ {
		*clock = start.Add(time.Duration(i) * time.Second)
		tr.Report(int64(i), 10000)
	}

	// Buffer holds 16; everything past that was dropped, not blocked.
	updates := drain(tr)
	assert.Len(t, updates, 16)
}

func TestTracker_SpeedAndETA(t *testing.T) {
	start := time.Now()
	tr, clock := newTrackerAt(start)

	*clock = start.Add(2 * time.Second)
	tr.Report(200, 1000)

	updates := drain(tr)
	assert.Len(t, updates, 1)
	assert.InDelta(t, 100.0, updates[0].Speed, 0.01)
	assert.Equal(t, 8*time.Second, updates[0].ETA)
}

func TestUpdate_String(t *testing.T) {
	u := Update{Done: 512 * 1024, Total: 2 * 1024 * 1024, Percent: 25, Speed: 1024 * 1024}
	s := u.String()
	assert.Contains(t, s, "25.0%")
	assert.Contains(t, s, "512.0 KB")
	assert.Contains(t, s, "2.0 MB")
	assert.Contains(t, s, "1.0 MB/s")
}
