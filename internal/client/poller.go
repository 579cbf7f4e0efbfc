// Package client implements the dashboard's control loops: the thermal
// snapshot poller with adaptive backoff and the visibility coordinator that
// drives both the poller and the camera stream supervisor.
package client

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/config"
	"github.com/komorebi-dev/thermal.view/internal/display"
	"github.com/komorebi-dev/thermal.view/internal/heatmap"
	"github.com/komorebi-dev/thermal.view/internal/httputil"
	"github.com/komorebi-dev/thermal.view/internal/thermal"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// State names the poller's position in its fetch cycle.
type State int

const (
	// StateIdle means no fetch is outstanding and the delay is at base.
	StateIdle State = iota
	// StateFetching means a fetch is in flight.
	StateFetching
	// StateBackingOff means the last fetch failed at the transport level
	// and the delay has grown.
	StateBackingOff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateBackingOff:
		return "backing-off"
	default:
		return "unknown"
	}
}

// fetch outcome classification, mirroring the error taxonomy: HTTP-level
// errors are soft and do not grow the delay; transport or decode errors do.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeConnError
	outcomeCommFailure
)

// responseLimit bounds how much of a snapshot body is read. A 32x24 grid of
// float temperatures is well under this.
const responseLimit = 1 << 20

// Poller maintains the self-rescheduling thermal fetch cycle. Each tick
// either fetches a snapshot or defers; resilience comes from rescheduling,
// never from retry-within-call.
type Poller struct {
	url      string
	client   httputil.HTTPClient
	clock    timeutil.Clock
	status   display.StatusSink
	renderer *heatmap.Renderer

	base   time.Duration
	hidden time.Duration
	max    time.Duration
	factor float64

	mu         sync.Mutex
	state      State
	delay      time.Duration
	inFlight   bool
	pageHidden bool

	// wake interrupts the current timer wait so a fast resume takes
	// effect immediately instead of after the armed delay.
	wake chan struct{}

	// onRender, when set, observes each successfully rendered snapshot.
	onRender func(s *thermal.Snapshot)
}

// NewPoller creates a poller for the given sensor endpoint URL.
func NewPoller(url string, hc httputil.HTTPClient, clock timeutil.Clock, status display.StatusSink, renderer *heatmap.Renderer, cfg *config.TuningConfig) *Poller {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Poller{
		url:      url,
		client:   hc,
		clock:    clock,
		status:   status,
		renderer: renderer,
		base:     cfg.GetPollInterval(),
		hidden:   cfg.GetHiddenInterval(),
		max:      cfg.GetMaxBackoff(),
		factor:   cfg.GetBackoffFactor(),
		delay:    cfg.GetPollInterval(),
		wake:     make(chan struct{}, 1),
	}
}

// OnSnapshot registers an observer called with each successfully rendered
// snapshot. Used for client-side trend recording.
func (p *Poller) OnSnapshot(fn func(s *thermal.Snapshot)) {
	p.onRender = fn
}

// Tick runs one cycle of the poll loop and returns the delay until the next
// tick. Hidden-state takes precedence over everything else; an in-flight
// fetch degrades the tick to a skip at base cadence.
func (p *Poller) Tick(ctx context.Context) time.Duration {
	if p.Hidden() {
		return p.hidden
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return p.base
	}
	p.inFlight = true
	p.state = StateFetching
	p.mu.Unlock()

	out, snap := p.fetch(ctx)

	p.mu.Lock()
	p.inFlight = false
	switch out {
	case outcomeSuccess:
		p.delay = p.base
		p.state = StateIdle
	case outcomeConnError:
		// Soft hiccup: cadence unchanged, including any backoff already
		// in effect from earlier communication failures.
		if p.delay > p.base {
			p.state = StateBackingOff
		} else {
			p.state = StateIdle
		}
	case outcomeCommFailure:
		p.delay = min(time.Duration(float64(p.delay)*p.factor), p.max)
		p.state = StateBackingOff
	}
	next := p.delay
	p.mu.Unlock()

	switch out {
	case outcomeSuccess:
		p.renderer.Render(snap)
		p.status.SetReadings(snap.Max, snap.Min)
		p.status.SetStatus(display.StatusMonitoring)
		p.status.SetLive(true)
		if p.onRender != nil {
			p.onRender(snap)
		}
	case outcomeConnError:
		p.status.SetStatus(display.StatusConnError)
		p.status.SetLive(false)
	case outcomeCommFailure:
		p.status.SetStatus(display.StatusCommFailure)
		p.status.SetLive(false)
	}

	return next
}

// fetch issues one request against the sensor endpoint with cache bypass.
func (p *Poller) fetch(ctx context.Context) (outcome, *thermal.Snapshot) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return outcomeCommFailure, nil
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := p.client.Do(req)
	if err != nil {
		return outcomeCommFailure, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, responseLimit))
		return outcomeConnError, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return outcomeCommFailure, nil
	}
	snap, err := thermal.Decode(body)
	if err != nil {
		return outcomeCommFailure, nil
	}
	return outcomeSuccess, snap
}

// Run executes the poll loop until the context is cancelled. Ticks are
// strictly sequential: the next timer is armed only after the prior fetch's
// outcome has been fully processed.
func (p *Poller) Run(ctx context.Context) error {
	p.status.SetStatus(display.StatusConnecting)
	for {
		d := p.Tick(ctx)
		timer := p.clock.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		case <-p.wake:
			timer.Stop()
		}
	}
}

// SetHidden records the page visibility signal the poller consults on each
// tick.
func (p *Poller) SetHidden(hidden bool) {
	p.mu.Lock()
	p.pageHidden = hidden
	p.mu.Unlock()
}

// Hidden reports whether the page is currently hidden.
func (p *Poller) Hidden() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageHidden
}

// Resume resets the delay to the base interval and interrupts the current
// timer wait, discarding whatever backoff was in effect.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.delay = p.base
	p.state = StateIdle
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Delay returns the current adaptive delay.
func (p *Poller) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// State returns the poller's current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
