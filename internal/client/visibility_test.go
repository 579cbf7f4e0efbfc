package client

import (
	"testing"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/display"
	"github.com/komorebi-dev/thermal.view/internal/heatmap"
	"github.com/komorebi-dev/thermal.view/internal/httputil"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

type fakeStream struct {
	starts int
	stops  int
}

func (f *fakeStream) Start() { f.starts++ }
func (f *fakeStream) Stop()  { f.stops++ }

func TestCoordinatorHidden(t *testing.T) {
	p, _, _ := newTestPoller(httputil.NewMockHTTPClient())
	stream := &fakeStream{}
	c := NewCoordinator(p, stream)

	c.SetVisible(false)

	if !p.Hidden() {
		t.Error("poller should see the hidden flag")
	}
	if stream.stops != 1 {
		t.Errorf("stream stops = %d, want 1", stream.stops)
	}
	if stream.starts != 0 {
		t.Errorf("stream starts = %d, want 0", stream.starts)
	}
}

func TestCoordinatorVisibleFastResume(t *testing.T) {
	board := display.NewStatusBoard("c")
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	p := NewPoller("http://sensor/thermal", httputil.NewMockHTTPClient(), clock, board, heatmap.NewRenderer(nil), nil)
	stream := &fakeStream{}
	c := NewCoordinator(p, stream)

	c.SetVisible(false)
	// Simulate backoff accumulated before hiding.
	p.mu.Lock()
	p.delay = 5 * time.Second
	p.mu.Unlock()

	c.SetVisible(true)

	if p.Hidden() {
		t.Error("poller should no longer be hidden")
	}
	if got := p.Delay(); got != 167*time.Millisecond {
		t.Errorf("delay after resume = %v, want base 167ms", got)
	}
	if stream.starts != 1 {
		t.Errorf("stream starts = %d, want 1", stream.starts)
	}
}
