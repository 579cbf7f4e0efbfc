// Package thermal defines the temperature snapshot exchanged between the
// sensor backend and the dashboard client.
package thermal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Sensor grid dimensions for the MLX90640.
const (
	SensorWidth  = 32
	SensorHeight = 24
)

var ErrEmptySnapshot = errors.New("thermal: empty snapshot")

// Snapshot is one full temperature grid reading. Temps is row-major with
// length Width*Height. A snapshot is immutable once produced.
type Snapshot struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Temps  []float64 `json:"temps"`
	Max    float64   `json:"max"`
	Min    float64   `json:"min"`
}

// NewSnapshot builds a snapshot from a raw frame, computing max/min and
// rounding them to two decimal places to match the wire contract.
func NewSnapshot(width, height int, temps []float64) (*Snapshot, error) {
	if len(temps) == 0 {
		return nil, ErrEmptySnapshot
	}
	if len(temps) != width*height {
		return nil, fmt.Errorf("thermal: frame has %d values, want %d (%dx%d)", len(temps), width*height, width, height)
	}
	max, min := temps[0], temps[0]
	for _, v := range temps[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return &Snapshot{
		Width:  width,
		Height: height,
		Temps:  temps,
		Max:    round2(max),
		Min:    round2(min),
	}, nil
}

// Validate checks the snapshot invariants after decoding from the wire.
func (s *Snapshot) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("thermal: invalid dimensions %dx%d", s.Width, s.Height)
	}
	if len(s.Temps) != s.Width*s.Height {
		return fmt.Errorf("thermal: temps length %d does not match %dx%d", len(s.Temps), s.Width, s.Height)
	}
	for i, v := range s.Temps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thermal: non-finite temperature at index %d", i)
		}
	}
	return nil
}

// At returns the temperature at grid position (x, y) in sensor orientation.
func (s *Snapshot) At(x, y int) float64 {
	return s.Temps[y*s.Width+x]
}

// Decode parses a JSON snapshot body and validates it.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("thermal: decode snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
