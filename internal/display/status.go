package display

import (
	"sync"

	"github.com/komorebi-dev/thermal.view/internal/monitoring"
	"github.com/komorebi-dev/thermal.view/internal/units"
)

// StatusSink receives the dashboard's status surface updates: the status
// label, the live badge, and the max/min temperature readouts.
type StatusSink interface {
	SetStatus(text string)
	SetLive(live bool)
	SetReadings(max, min float64)
}

// StatusBoard is the in-process status surface. It records the current label,
// badge, and readouts, and logs label transitions.
type StatusBoard struct {
	mu       sync.Mutex
	status   string
	live     bool
	max, min float64
	hasTemps bool
	units    string
}

// NewStatusBoard creates a status board formatting readouts in the given
// temperature units.
func NewStatusBoard(tempUnits string) *StatusBoard {
	if !units.IsValid(tempUnits) {
		tempUnits = units.Celsius
	}
	return &StatusBoard{units: tempUnits}
}

// SetStatus updates the status label. Transitions are logged; repeats are not.
func (b *StatusBoard) SetStatus(text string) {
	b.mu.Lock()
	changed := b.status != text
	b.status = text
	b.mu.Unlock()
	if changed {
		monitoring.Logf("status: %s", text)
	}
}

// SetLive updates the live badge.
func (b *StatusBoard) SetLive(live bool) {
	b.mu.Lock()
	b.live = live
	b.mu.Unlock()
}

// SetReadings updates the max/min temperature readouts.
func (b *StatusBoard) SetReadings(max, min float64) {
	b.mu.Lock()
	b.max = max
	b.min = min
	b.hasTemps = true
	b.mu.Unlock()
}

// Status returns the current status label.
func (b *StatusBoard) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Live returns the current live badge state.
func (b *StatusBoard) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Readings returns the formatted max/min readouts, one decimal place each.
// Before the first successful poll both readouts are "--".
func (b *StatusBoard) Readings() (max, min string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasTemps {
		return "--", "--"
	}
	return units.Format(b.max, b.units), units.Format(b.min, b.units)
}
