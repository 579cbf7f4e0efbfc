package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/komorebi-dev/thermal.view/internal/api"
	"github.com/komorebi-dev/thermal.view/internal/camera"
	"github.com/komorebi-dev/thermal.view/internal/config"
	"github.com/komorebi-dev/thermal.view/internal/history"
	"github.com/komorebi-dev/thermal.view/internal/sensor"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
	"github.com/komorebi-dev/thermal.view/internal/version"
)

var (
	devMode     = flag.Bool("dev", false, "Run with synthetic sensor and camera sources")
	listen      = flag.String("listen", ":5001", "Listen address")
	serialPort  = flag.String("port", "/dev/ttyUSB0", "Thermal sensor serial port (ignored in dev mode)")
	baudRate    = flag.Int("baud", 115200, "Serial baud rate")
	cameraDir   = flag.String("camera-dir", "", "Serve camera frames from a directory of JPEGs instead of the synthetic source")
	configPath  = flag.String("config", "", "Path to tuning config JSON")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("thermald %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
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

	var thermalSource sensor.Source
	if *devMode {
		thermalSource = sensor.NewMockSource(clock)
		log.Print("using synthetic thermal source")
	} else {
		if *serialPort == "" {
			log.Fatal("Serial port is required")
		}
		opts, err := sensor.PortOptions{BaudRate: *baudRate}.Normalize()
		if err != nil {
			log.Fatalf("invalid serial options: %v", err)
		}
		port, err := sensor.OpenPort(*serialPort, opts)
		if err != nil {
			log.Fatalf("failed to open thermal sensor port: %v", err)
		}
		src := sensor.NewSerialSource(port)
		defer src.Close()
		thermalSource = src
		log.Printf("opened thermal sensor on %s", *serialPort)
	}

	var cameraSource camera.Source
	if *cameraDir != "" {
		src, err := camera.NewDirSource(*cameraDir)
		if err != nil {
			log.Fatalf("failed to open camera directory: %v", err)
		}
		cameraSource = src
		log.Printf("serving camera frames from %s", *cameraDir)
	} else {
		cameraSource = camera.NewSyntheticSource(clock, cfg.GetJPEGQuality())
		log.Print("using synthetic camera source")
	}

	thermalAcq := sensor.NewAcquirer(thermalSource, clock, cfg.GetThermalInterval())
	cameraAcq := camera.NewAcquirer(cameraSource, clock, cfg.GetCameraFPS())
	ring := history.NewRing(cfg.GetHistorySize())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the acquisition loops that keep the latest-frame caches warm
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := thermalAcq.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("thermal acquisition stopped: %v", err)
		}
		log.Print("thermal acquisition routine terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cameraAcq.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("camera acquisition stopped: %v", err)
		}
		log.Print("camera acquisition routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(thermalAcq, cameraAcq, ring, cfg, clock).ServeMux()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
