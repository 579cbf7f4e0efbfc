package camera

import (
	"context"
	"sync"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/monitoring"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// resetThreshold is how many consecutive read failures trigger a device
// reset.
const resetThreshold = 5

const logInterval = 5 * time.Second

// Acquirer owns a camera Source and continuously reads frames into a shared
// latest-frame buffer at the configured rate.
type Acquirer struct {
	source Source
	clock  timeutil.Clock
	fps    float64

	mu       sync.Mutex
	frame    []byte
	at       time.Time
	failures int
	lastErr  error
	lastLog  time.Time
}

// NewAcquirer creates an acquirer reading the source at the given frame rate.
func NewAcquirer(source Source, clock timeutil.Clock, fps float64) *Acquirer {
	if fps < 1 {
		fps = 1
	}
	return &Acquirer{source: source, clock: clock, fps: fps}
}

// Run reads frames until the context is cancelled.
func (a *Acquirer) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / a.fps)
	ticker := a.clock.NewTicker(interval)
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

// ReadOnce reads one frame. After resetThreshold consecutive failures the
// source is reset if it supports it, matching how a wedged USB capture
// handle is recovered.
func (a *Acquirer) ReadOnce(ctx context.Context) {
	frame, err := a.source.Frame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		a.recordFailure(err)
		return
	}

	a.mu.Lock()
	a.frame = frame
	a.at = a.clock.Now()
	a.failures = 0
	a.lastErr = nil
	a.mu.Unlock()
}

func (a *Acquirer) recordFailure(err error) {
	a.mu.Lock()
	a.failures++
	a.lastErr = err
	failures := a.failures
	now := a.clock.Now()
	shouldLog := now.Sub(a.lastLog) > logInterval
	if shouldLog {
		a.lastLog = now
	}
	if failures >= resetThreshold {
		a.failures = 0
	}
	a.mu.Unlock()

	if shouldLog {
		monitoring.Logf("camera read failed (%d): %v", failures, err)
	}

	if failures >= resetThreshold {
		if r, ok := a.source.(Resetter); ok {
			if resetErr := r.Reset(); resetErr != nil {
				monitoring.Logf("camera reset failed: %v", resetErr)
				a.mu.Lock()
				a.lastErr = resetErr
				a.mu.Unlock()
			} else {
				monitoring.Logf("camera reset after read failures")
			}
		}
	}
}

// Latest returns the most recent frame and its capture time. ok is false
// until the first successful read.
func (a *Acquirer) Latest() (frame []byte, at time.Time, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frame == nil {
		return nil, time.Time{}, false
	}
	return a.frame, a.at, true
}

// LastError returns the most recent read error, or nil.
func (a *Acquirer) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
