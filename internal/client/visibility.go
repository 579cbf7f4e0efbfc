package client

import "github.com/komorebi-dev/thermal.view/internal/monitoring"

// StreamController is the slice of the stream supervisor the visibility
// coordinator drives.
type StreamController interface {
	Start()
	Stop()
}

// Coordinator reacts to the page visibility signal. Hidden stops the camera
// stream and lets the poller self-detect via its hidden flag; visible
// restarts the stream and fast-resumes the poller at the base interval.
type Coordinator struct {
	poller *Poller
	stream StreamController
}

// NewCoordinator wires the visibility signal to the two loops.
func NewCoordinator(poller *Poller, stream StreamController) *Coordinator {
	return &Coordinator{poller: poller, stream: stream}
}

// SetVisible applies a visibility transition.
func (c *Coordinator) SetVisible(visible bool) {
	if visible {
		monitoring.Logf("page visible: resuming loops")
		c.poller.SetHidden(false)
		c.poller.Resume()
		if c.stream != nil {
			c.stream.Start()
		}
		return
	}
	monitoring.Logf("page hidden: stopping stream")
	c.poller.SetHidden(true)
	if c.stream != nil {
		c.stream.Stop()
	}
}
