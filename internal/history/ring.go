// Package history records max/min temperature readings in a bounded
// in-memory ring and derives aggregates, trend plots, and debug charts from
// it. Nothing here persists across restarts.
package history

import (
	"sync"
	"time"
)

// Reading is one recorded max/min pair. The wire shape matches the
// /temperature_history contract: a wall-clock time string plus the two
// rounded readings.
type Reading struct {
	Time string  `json:"time"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`

	// At is the capture instant; used for plotting, not serialised.
	At time.Time `json:"-"`
}

// Ring is a FIFO buffer of readings with a fixed capacity. Appending beyond
// capacity drops the oldest reading.
type Ring struct {
	mu    sync.Mutex
	buf   []Reading
	start int
	count int
}

// NewRing creates a ring holding up to capacity readings.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Reading, capacity)}
}

// Append records a reading, evicting the oldest when full.
func (r *Ring) Append(reading Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = reading
		r.count++
		return
	}
	r.buf[r.start] = reading
	r.start = (r.start + 1) % len(r.buf)
}

// Record captures a max/min pair at the given instant.
func (r *Ring) Record(at time.Time, max, min float64) {
	r.Append(Reading{
		Time: at.Format("15:04:05"),
		Max:  max,
		Min:  min,
		At:   at,
	})
}

// Readings returns the buffered readings oldest-first.
func (r *Ring) Readings() []Reading {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reading, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of buffered readings.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
