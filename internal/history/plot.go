package history

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/komorebi-dev/thermal.view/internal/monitoring"
)

// TrendPlotter turns recorded readings into time-series PNG plots of the
// max and min temperature. Sampling runs during a session; Generate writes
// the output files afterwards.
type TrendPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	ring      *Ring
}

// NewTrendPlotter creates a plotter over the given ring.
func NewTrendPlotter(ring *Ring) *TrendPlotter {
	return &TrendPlotter{ring: ring}
}

// Start enables sampling and sets the output directory.
func (tp *TrendPlotter) Start(outputDir string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tp.outputDir = outputDir
	tp.enabled = true
	return nil
}

// Stop disables sampling. Call Generate to produce output files.
func (tp *TrendPlotter) Stop() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (tp *TrendPlotter) IsEnabled() bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.enabled
}

// Sample records a max/min pair if the plotter is enabled.
func (tp *TrendPlotter) Sample(reading Reading) {
	tp.mu.Lock()
	enabled := tp.enabled
	tp.mu.Unlock()
	if !enabled {
		return
	}
	tp.ring.Append(reading)
}

// Generate writes the trend plot PNG and returns its path. The x axis is
// seconds since the first reading.
func (tp *TrendPlotter) Generate() (string, error) {
	tp.mu.Lock()
	outputDir := tp.outputDir
	tp.mu.Unlock()
	if outputDir == "" {
		return "", fmt.Errorf("trend plotter was never started")
	}

	readings := tp.ring.Readings()
	if len(readings) == 0 {
		return "", fmt.Errorf("no readings to plot")
	}

	p := plot.New()
	p.Title.Text = "Temperature Trend"
	p.X.Label.Text = "Seconds"
	p.Y.Label.Text = "Temperature (°C)"

	t0 := readings[0].At
	maxPts := make(plotter.XYs, 0, len(readings))
	minPts := make(plotter.XYs, 0, len(readings))
	for _, rd := range readings {
		x := rd.At.Sub(t0).Seconds()
		maxPts = append(maxPts, plotter.XY{X: x, Y: rd.Max})
		minPts = append(minPts, plotter.XY{X: x, Y: rd.Min})
	}

	maxLine, err := plotter.NewLine(maxPts)
	if err != nil {
		return "", fmt.Errorf("max series: %w", err)
	}
	maxLine.Color = color.RGBA{R: 220, G: 60, B: 40, A: 255}
	maxLine.Width = vg.Points(1)
	p.Add(maxLine)
	p.Legend.Add("max", maxLine)

	minLine, err := plotter.NewLine(minPts)
	if err != nil {
		return "", fmt.Errorf("min series: %w", err)
	}
	minLine.Color = color.RGBA{R: 40, G: 90, B: 220, A: 255}
	minLine.Width = vg.Points(1)
	p.Add(minLine)
	p.Legend.Add("min", minLine)

	outFile := filepath.Join(outputDir, "temperature_trend.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, outFile); err != nil {
		return "", fmt.Errorf("save trend plot: %w", err)
	}
	monitoring.Logf("wrote trend plot %s (%d readings)", outFile, len(readings))
	return outFile, nil
}
