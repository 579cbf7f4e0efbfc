// Package stream supervises the camera's MJPEG connection: it keeps the
// stream loading, detects transport failures, and reconnects with its own
// exponential backoff, independent of the thermal poll loop.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/komorebi-dev/thermal.view/internal/config"
	"github.com/komorebi-dev/thermal.view/internal/display"
	"github.com/komorebi-dev/thermal.view/internal/httputil"
	"github.com/komorebi-dev/thermal.view/internal/mjpeg"
	"github.com/komorebi-dev/thermal.view/internal/monitoring"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// FrameSink receives decoded JPEG frames from the live stream.
type FrameSink interface {
	Frame(jpg []byte)
}

// Connection is one attempt at consuming the stream. A new Start supersedes
// the previous connection by cancelling it; the old transfer is then
// discarded rather than left racing the new one.
type Connection struct {
	ID  uuid.UUID
	URL string

	ctx    context.Context
	cancel context.CancelFunc
}

// Cancel abandons the connection.
func (c *Connection) Cancel() {
	c.cancel()
}

// Canceled reports whether the connection has been abandoned.
func (c *Connection) Canceled() bool {
	return c.ctx.Err() != nil
}

// Supervisor keeps the stream connected. Retries are unbounded: an always-on
// dashboard must keep trying, so there is deliberately no max-attempts
// cutoff.
type Supervisor struct {
	url    string
	client httputil.HTTPClient
	clock  timeutil.Clock
	status display.StatusSink
	frames FrameSink

	base   time.Duration
	max    time.Duration
	factor float64

	mu          sync.Mutex
	retryDelay  time.Duration
	nextRetryIn time.Duration
	conn        *Connection
	retryTimer  timeutil.Timer
	retryCancel chan struct{}
	retrySeq    int
	stopped     bool
}

// NewSupervisor creates a supervisor for the given stream endpoint URL.
func NewSupervisor(url string, hc httputil.HTTPClient, clock timeutil.Clock, status display.StatusSink, frames FrameSink, cfg *config.TuningConfig) *Supervisor {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Supervisor{
		url:        url,
		client:     hc,
		clock:      clock,
		status:     status,
		frames:     frames,
		base:       cfg.GetStreamRetry(),
		max:        cfg.GetMaxBackoff(),
		factor:     cfg.GetBackoffFactor(),
		retryDelay: cfg.GetStreamRetry(),
	}
}

// Start opens a fresh connection, superseding any previous one. The URL
// carries a cache-busting timestamp so the transport opens a new transfer
// instead of resuming a stale one.
func (s *Supervisor) Start() {
	s.mu.Lock()
	s.stopped = false
	s.cancelRetryLocked()
	if s.conn != nil {
		s.conn.Cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn := &Connection{
		ID:     uuid.New(),
		URL:    fmt.Sprintf("%s?t=%d", s.url, s.clock.Now().UnixMilli()),
		ctx:    ctx,
		cancel: cancel,
	}
	s.conn = conn
	s.mu.Unlock()

	go s.consume(conn)
}

// Stop abandons the current connection and any pending retry, releasing the
// transport. Used when the page goes hidden.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelRetryLocked()
	if s.conn != nil {
		s.conn.Cancel()
		s.conn = nil
	}
}

// consume reads frames from one connection until it fails or is superseded.
func (s *Supervisor) consume(conn *Connection) {
	req, err := http.NewRequestWithContext(conn.ctx, http.MethodGet, conn.URL, nil)
	if err != nil {
		s.handleError(conn, err)
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.handleError(conn, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.handleError(conn, fmt.Errorf("stream returned status %d", resp.StatusCode))
		return
	}

	r := mjpeg.NewReader(resp.Body, mjpeg.ParseBoundary(resp.Header.Get("Content-Type")))
	loaded := false
	for {
		frame, err := r.NextFrame()
		if err != nil {
			s.handleError(conn, err)
			return
		}
		if !loaded {
			loaded = true
			s.handleOpen(conn)
		}
		if s.frames != nil {
			s.frames.Frame(frame)
		}
	}
}

// handleOpen resets the retry delay after the stream delivers its first
// frame.
func (s *Supervisor) handleOpen(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn || conn.Canceled() {
		return
	}
	s.retryDelay = s.base
	s.nextRetryIn = 0
}

// handleError schedules a reconnect. The retry fires after the current
// delay; the delay then grows for the retry after that, capped at the
// ceiling.
func (s *Supervisor) handleError(conn *Connection, err error) {
	s.mu.Lock()
	if s.conn != conn || conn.Canceled() || s.stopped {
		// Superseded or deliberately stopped; not a failure.
		s.mu.Unlock()
		return
	}
	monitoring.Logf("stream connection %s failed: %v", conn.ID, err)

	wait := s.retryDelay
	s.retryDelay = min(time.Duration(float64(s.retryDelay)*s.factor), s.max)

	s.cancelRetryLocked()
	s.nextRetryIn = wait
	s.retrySeq++
	seq := s.retrySeq
	timer := s.clock.NewTimer(wait)
	cancel := make(chan struct{})
	s.retryTimer = timer
	s.retryCancel = cancel
	s.mu.Unlock()

	s.status.SetStatus(display.StatusReconnecting)

	go func() {
		select {
		case <-cancel:
			return
		case <-timer.C():
		}
		s.mu.Lock()
		stale := s.retrySeq != seq || s.stopped
		s.mu.Unlock()
		if stale {
			return
		}
		s.Start()
	}()
}

// cancelRetryLocked stops a pending retry timer and releases its goroutine.
// Caller holds mu.
func (s *Supervisor) cancelRetryLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	if s.retryCancel != nil {
		close(s.retryCancel)
		s.retryCancel = nil
	}
	s.retrySeq++
	s.nextRetryIn = 0
}

// RetryDelay returns the delay that will apply to the retry after the next
// failure.
func (s *Supervisor) RetryDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryDelay
}

// NextRetryIn returns the armed retry delay, or zero when no retry is
// pending.
func (s *Supervisor) NextRetryIn() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRetryIn
}

// Connection returns the current connection, or nil when stopped.
func (s *Supervisor) Connection() *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
