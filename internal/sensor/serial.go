package sensor

import (
	"bufio"
	"context"
	"sync"

	"github.com/komorebi-dev/thermal.view/internal/thermal"
)

// SerialSource reads temperature frames from a UART thermal bridge module
// through a Porter.
type SerialSource struct {
	width  int
	height int

	mu sync.Mutex
	r  *bufio.Reader

	// Close must not wait on mu: a blocked Read holds it, and closing the
	// port is what unblocks that read.
	port      Porter
	closeOnce sync.Once
	closeErr  error
}

// NewSerialSource wraps an open port as a frame source at the MLX90640's
// native resolution.
func NewSerialSource(port Porter) *SerialSource {
	return &SerialSource{
		width:  thermal.SensorWidth,
		height: thermal.SensorHeight,
		port:   port,
		r:      bufio.NewReaderSize(port, 4096),
	}
}

func (s *SerialSource) ResX() int { return s.width }
func (s *SerialSource) ResY() int { return s.height }

// Read blocks until the bridge delivers the next complete frame. Cancelling
// the context closes the port to unblock a pending read, so the source is
// unusable afterwards. A checksum mismatch is returned as an error; the
// caller's retry policy decides whether to try again.
func (s *SerialSource) Read(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-done:
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	frame, err := readFrame(s.r, s.width*s.height)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	return frame, nil
}

// Close releases the underlying port. Safe to call concurrently with a
// blocked Read, which it unblocks.
func (s *SerialSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.port.Close()
	})
	return s.closeErr
}
