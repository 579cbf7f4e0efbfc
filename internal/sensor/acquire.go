package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/monitoring"
	"github.com/komorebi-dev/thermal.view/internal/thermal"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// Read retry policy: a frame read is attempted a few times with a short
// pause before the cycle gives up until the next tick.
const (
	readRetries    = 3
	readRetryDelay = 10 * time.Millisecond
	logInterval    = 5 * time.Second
)

// Acquirer owns a Source and continuously reads it into a shared latest-frame
// buffer. HTTP handlers read the buffer; they never touch the device.
type Acquirer struct {
	source   Source
	clock    timeutil.Clock
	interval time.Duration

	mu       sync.Mutex
	snapshot *thermal.Snapshot
	at       time.Time
	lastErr  error
	lastLog  time.Time
}

// NewAcquirer creates an acquirer reading the source at the given interval.
func NewAcquirer(source Source, clock timeutil.Clock, interval time.Duration) *Acquirer {
	return &Acquirer{source: source, clock: clock, interval: interval}
}

// Run reads frames until the context is cancelled.
func (a *Acquirer) Run(ctx context.Context) error {
	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.ReadOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
		}
	}
}

// ReadOnce attempts one frame read with the retry policy and updates the
// shared buffer on success.
func (a *Acquirer) ReadOnce(ctx context.Context) {
	var frame []float64
	var err error
	for attempt := 0; attempt < readRetries; attempt++ {
		frame, err = a.source.Read(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		a.clock.Sleep(readRetryDelay)
	}
	if err != nil {
		a.recordError(err)
		return
	}

	snap, err := thermal.NewSnapshot(a.source.ResX(), a.source.ResY(), frame)
	if err != nil {
		a.recordError(err)
		return
	}

	a.mu.Lock()
	a.snapshot = snap
	a.at = a.clock.Now()
	a.lastErr = nil
	a.mu.Unlock()
}

func (a *Acquirer) recordError(err error) {
	a.mu.Lock()
	a.lastErr = err
	now := a.clock.Now()
	shouldLog := now.Sub(a.lastLog) > logInterval
	if shouldLog {
		a.lastLog = now
	}
	a.mu.Unlock()
	if shouldLog {
		monitoring.Logf("thermal read failed: %v", err)
	}
}

// Latest returns the most recent snapshot and its capture time. ok is false
// until the first successful read.
func (a *Acquirer) Latest() (snap *thermal.Snapshot, at time.Time, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot == nil {
		return nil, time.Time{}, false
	}
	return a.snapshot, a.at, true
}

// LastError returns the most recent read error, or nil.
func (a *Acquirer) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
