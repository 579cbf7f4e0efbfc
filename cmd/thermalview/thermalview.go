// Command thermalview is a headless viewer for a thermald backend. It polls
// the thermal snapshot endpoint, renders the heatmap to a PNG, follows the
// camera MJPEG stream, and reports connection status on stdout. SIGUSR1
// toggles the viewer between visible and hidden, which slows polling and
// pauses the stream the way a backgrounded dashboard tab would.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/client"
	"github.com/komorebi-dev/thermal.view/internal/config"
	"github.com/komorebi-dev/thermal.view/internal/display"
	"github.com/komorebi-dev/thermal.view/internal/heatmap"
	"github.com/komorebi-dev/thermal.view/internal/history"
	"github.com/komorebi-dev/thermal.view/internal/httputil"
	"github.com/komorebi-dev/thermal.view/internal/stream"
	"github.com/komorebi-dev/thermal.view/internal/thermal"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
	"github.com/komorebi-dev/thermal.view/internal/units"
	"github.com/komorebi-dev/thermal.view/internal/version"
)

var (
	backend     = flag.String("backend", "http://localhost:5001", "Base URL of the thermald backend")
	configPath  = flag.String("config", "", "Path to tuning config JSON")
	outPath     = flag.String("out", "heatmap.png", "Path for the rendered heatmap PNG")
	framesDir   = flag.String("frames-dir", "", "Save received camera frames into this directory")
	trendDir    = flag.String("trend-dir", "", "Write a temperature trend plot here on exit")
	tempUnits   = flag.String("units", units.Celsius, "Temperature units for readouts ("+units.GetValidUnitsString()+")")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// dirFrameSink writes each received camera frame to a numbered JPEG file.
type dirFrameSink struct {
	dir string
	n   atomic.Int64
}

func (d *dirFrameSink) Frame(jpg []byte) {
	n := d.n.Add(1)
	path := filepath.Join(d.dir, fmt.Sprintf("frame-%06d.jpg", n))
	if err := os.WriteFile(path, jpg, 0644); err != nil {
		log.Printf("failed to save frame: %v", err)
	}
}

// countFrameSink discards frames and keeps a count for the shutdown summary.
type countFrameSink struct {
	n atomic.Int64
}

func (c *countFrameSink) Frame([]byte) {
	c.n.Add(1)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("thermalview %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *backend == "" {
		log.Fatal("Backend URL is required")
	}
	if !units.IsValid(*tempUnits) {
		log.Fatalf("invalid units %q, expected one of %s", *tempUnits, units.GetValidUnitsString())
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	clock := timeutil.RealClock{}
	hc := httputil.NewStandardClient(&http.Client{Timeout: 10 * time.Second})
	base := strings.TrimRight(*backend, "/")

	board := display.NewStatusBoard(*tempUnits)
	surface := display.NewFileSurface(*outPath)
	renderer := heatmap.NewRenderer(surface)

	poller := client.NewPoller(base+"/thermal", hc, clock, board, renderer, cfg)

	var frames stream.FrameSink
	var counter *countFrameSink
	if *framesDir != "" {
		if err := os.MkdirAll(*framesDir, 0755); err != nil {
			log.Fatalf("failed to create frames directory: %v", err)
		}
		frames = &dirFrameSink{dir: *framesDir}
	} else {
		counter = &countFrameSink{}
		frames = counter
	}
	supervisor := stream.NewSupervisor(base+"/stream", hc, clock, board, frames, cfg)

	coordinator := client.NewCoordinator(poller, supervisor)

	var plotter *history.TrendPlotter
	if *trendDir != "" {
		ring := history.NewRing(cfg.GetHistorySize())
		plotter = history.NewTrendPlotter(ring)
		if err := plotter.Start(*trendDir); err != nil {
			log.Fatalf("failed to start trend plotter: %v", err)
		}
		poller.OnSnapshot(func(s *thermal.Snapshot) {
			now := clock.Now()
			plotter.Sample(history.Reading{
				Time: now.Format("15:04:05"),
				Max:  s.Max,
				Min:  s.Min,
				At:   now,
			})
		})
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SIGUSR1 stands in for the page visibility events a browser tab would
	// deliver: each signal toggles between foreground and background mode.
	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		visible := true
		for {
			select {
			case <-toggle:
				visible = !visible
				if visible {
					log.Print("viewer visible: resuming poll and stream")
				} else {
					log.Print("viewer hidden: slowing poll, pausing stream")
				}
				coordinator.SetVisible(visible)
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := poller.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("poller stopped: %v", err)
		}
		log.Print("poll routine terminated")
	}()

	coordinator.SetVisible(true)

	<-ctx.Done()
	supervisor.Stop()
	wg.Wait()

	if counter != nil {
		log.Printf("received %d camera frames", counter.n.Load())
	}
	if plotter != nil {
		plotter.Stop()
		if path, err := plotter.Generate(); err != nil {
			log.Printf("trend plot not written: %v", err)
		} else {
			log.Printf("trend plot written to %s", path)
		}
	}
	log.Printf("Graceful shutdown complete")
}
