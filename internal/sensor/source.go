// Package sensor provides thermal frame sources for the backend daemon: a
// deterministic synthetic source for dev mode and tests, and a serial bridge
// for UART thermal camera modules.
package sensor

import (
	"context"
	"math"

	"github.com/komorebi-dev/thermal.view/internal/thermal"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// Source produces raw temperature frames in row-major order.
type Source interface {
	// ResX returns the grid width in pixels.
	ResX() int
	// ResY returns the grid height in pixels.
	ResY() int
	// Read returns the next temperature frame in degrees Celsius,
	// length ResX*ResY.
	Read(ctx context.Context) ([]float64, error)
}

// MockSource generates a synthetic scene: a warm blob orbiting the grid
// center over a cool ambient field. Output depends only on the injected
// clock, so frames are reproducible in tests.
type MockSource struct {
	width  int
	height int
	clock  timeutil.Clock

	// Scene parameters in degrees Celsius.
	ambient float64
	peak    float64
	period  float64 // orbit period in seconds
}

// NewMockSource creates a synthetic source at the MLX90640's native
// resolution.
func NewMockSource(clock timeutil.Clock) *MockSource {
	return &MockSource{
		width:   thermal.SensorWidth,
		height:  thermal.SensorHeight,
		clock:   clock,
		ambient: 21.0,
		peak:    36.5,
		period:  12.0,
	}
}

func (m *MockSource) ResX() int { return m.width }
func (m *MockSource) ResY() int { return m.height }

// Read renders the scene for the current clock time.
func (m *MockSource) Read(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := float64(m.clock.Now().UnixNano()) / float64(1e9)
	angle := 2 * math.Pi * math.Mod(t, m.period) / m.period

	cx := float64(m.width)/2 + float64(m.width)/4*math.Cos(angle)
	cy := float64(m.height)/2 + float64(m.height)/4*math.Sin(angle)

	frame := make([]float64, m.width*m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			d2 := dx*dx + dy*dy
			// Gaussian falloff from the blob center.
			frame[y*m.width+x] = m.ambient + (m.peak-m.ambient)*math.Exp(-d2/18)
		}
	}
	return frame, nil
}
