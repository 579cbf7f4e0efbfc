// Package api serves the thermal dashboard's HTTP endpoints: the snapshot
// JSON contract, the MJPEG camera and heatmap streams, the temperature
// history surface, and health checks.
package api

import (
	"net/http"
	"strconv"
	"time"

	"tailscale.com/tsweb"

	"github.com/komorebi-dev/thermal.view/internal/camera"
	"github.com/komorebi-dev/thermal.view/internal/config"
	"github.com/komorebi-dev/thermal.view/internal/history"
	"github.com/komorebi-dev/thermal.view/internal/monitoring"
	"github.com/komorebi-dev/thermal.view/internal/sensor"
	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server wires the acquisition loops and the history ring to HTTP.
type Server struct {
	thermal *sensor.Acquirer
	camera  *camera.Acquirer
	ring    *history.Ring
	cfg     *config.TuningConfig
	clock   timeutil.Clock
}

// NewServer creates a server. thermal or cam may be nil when the
// corresponding device is absent; the affected endpoints then report the
// backend as unavailable.
func NewServer(thermal *sensor.Acquirer, cam *camera.Acquirer, ring *history.Ring, cfg *config.TuningConfig, clock timeutil.Clock) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		thermal: thermal,
		camera:  cam,
		ring:    ring,
		cfg:     cfg,
		clock:   clock,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table, including the debug routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/thermal", s.handleThermal)
	mux.HandleFunc("/stream", s.handleCameraStream)
	mux.HandleFunc("/video_usb", s.handleCameraStream)
	mux.HandleFunc("/video_thermal", s.handleThermalStream)
	mux.HandleFunc("/temperature", s.handleTemperature)
	mux.HandleFunc("/temperature_history", s.handleTemperatureHistory)
	mux.HandleFunc("/temperature_stats", s.handleTemperatureStats)
	mux.HandleFunc("/healthz", s.handleHealthz)

	if s.ring != nil {
		debug := tsweb.Debugger(mux)
		debug.HandleFunc("thermal-history", "temperature history line chart", s.ring.ChartHandler)
	}
	return mux
}
