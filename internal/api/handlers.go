package api

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/komorebi-dev/thermal.view/internal/heatmap"
	"github.com/komorebi-dev/thermal.view/internal/history"
	"github.com/komorebi-dev/thermal.view/internal/httputil"
	"github.com/komorebi-dev/thermal.view/internal/mjpeg"
	"github.com/komorebi-dev/thermal.view/internal/thermal"
)

// Error bodies on the thermal endpoints are part of the wire contract; the
// frontend matches on them.
const (
	msgThermalUnavailable = "MLX90640 not available"
	msgThermalReadFailed  = "MLX90640 read failed"
	msgThermalStale       = "MLX90640 data stale"
	msgCameraUnavailable  = "Camera backend not available"
)

// thermalUpscale is the integer scale factor from the oriented sensor grid
// (24x32) to the streamed heatmap (480x640).
const thermalUpscale = 20

// handleThermal serves the latest snapshot as JSON for the frontend heatmap.
func (s *Server) handleThermal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.thermal == nil {
		http.Error(w, msgThermalUnavailable, http.StatusServiceUnavailable)
		return
	}
	snap, at, ok := s.thermal.Latest()
	if !ok {
		http.Error(w, msgThermalReadFailed, http.StatusServiceUnavailable)
		return
	}
	if s.clock.Since(at) > s.cfg.GetStalenessWindow() {
		http.Error(w, msgThermalStale, http.StatusServiceUnavailable)
		return
	}
	httputil.WriteJSONOK(w, snap)
}

// handleTemperature returns max/min readings and records them into the
// history ring.
func (s *Server) handleTemperature(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.thermal == nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "Thermal sensor not initialized")
		return
	}
	snap, at, ok := s.thermal.Latest()
	if !ok {
		httputil.WriteJSONError(w, http.StatusInternalServerError, msgThermalReadFailed)
		return
	}
	if s.clock.Since(at) > s.cfg.GetStalenessWindow() {
		httputil.WriteJSONError(w, http.StatusInternalServerError, msgThermalStale)
		return
	}

	if s.ring != nil {
		s.ring.Record(s.clock.Now(), snap.Max, snap.Min)
	}
	httputil.WriteJSONOK(w, map[string]float64{"max": snap.Max, "min": snap.Min})
}

// handleTemperatureHistory returns the FIFO history ring contents.
func (s *Server) handleTemperatureHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.ring == nil {
		httputil.WriteJSONOK(w, []history.Reading{})
		return
	}
	httputil.WriteJSONOK(w, s.ring.Readings())
}

// handleTemperatureStats returns the rollup over the history ring.
func (s *Server) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.ring == nil {
		httputil.WriteJSONOK(w, history.Stats{})
		return
	}
	httputil.WriteJSONOK(w, s.ring.Aggregate())
}

// healthStatus is the /healthz body shape.
type healthStatus struct {
	Camera       string  `json:"camera"`
	Thermal      string  `json:"thermal"`
	CameraError  *string `json:"camera_error"`
	ThermalError *string `json:"thermal_error"`
}

// handleHealthz reports a lightweight health status for UI checks.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	status := healthStatus{Camera: "unavailable", Thermal: "unavailable"}
	if s.camera != nil {
		if _, _, ok := s.camera.Latest(); ok {
			status.Camera = "ok"
		}
		if err := s.camera.LastError(); err != nil {
			msg := err.Error()
			status.CameraError = &msg
		}
	}
	if s.thermal != nil {
		if _, _, ok := s.thermal.Latest(); ok {
			status.Thermal = "ok"
		}
		if err := s.thermal.LastError(); err != nil {
			msg := err.Error()
			status.ThermalError = &msg
		}
	}
	httputil.WriteJSONOK(w, status)
}

// handleCameraStream streams MJPEG frames from the USB camera.
func (s *Server) handleCameraStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.camera == nil {
		http.Error(w, msgCameraUnavailable, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", mjpeg.ContentType)
	fw := mjpeg.NewWriter(w)

	interval := time.Duration(float64(time.Second) / s.cfg.GetStreamFPS())
	maxAge := s.cfg.GetStalenessWindow()
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	var lastSent time.Time
	for {
		frame, at, ok := s.camera.Latest()
		if ok && s.clock.Since(at) <= maxAge && at.After(lastSent) {
			if err := fw.WriteFrame(frame); err != nil {
				// Client went away.
				return
			}
			lastSent = at
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C():
		}
	}
}

// handleThermalStream streams the heatmap as MJPEG: snapshot, orient,
// Catmull-Rom upscale, JPEG.
func (s *Server) handleThermalStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.thermal == nil {
		http.Error(w, msgThermalUnavailable, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", mjpeg.ContentType)
	fw := mjpeg.NewWriter(w)

	maxAge := s.cfg.GetStalenessWindow()
	ticker := s.clock.NewTicker(s.cfg.GetThermalInterval())
	defer ticker.Stop()

	var lastSent time.Time
	for {
		snap, at, ok := s.thermal.Latest()
		if ok && s.clock.Since(at) <= maxAge && at.After(lastSent) {
			frame, err := s.encodeThermalFrame(snap)
			if err == nil {
				if err := fw.WriteFrame(frame); err != nil {
					return
				}
				lastSent = at
			}
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C():
		}
	}
}

// encodeThermalFrame renders one heatmap JPEG at stream resolution.
func (s *Server) encodeThermalFrame(snap *thermal.Snapshot) ([]byte, error) {
	oriented := heatmap.Orient(heatmap.Compose(snap))

	big := image.NewRGBA(image.Rect(0, 0,
		oriented.Rect.Dx()*thermalUpscale,
		oriented.Rect.Dy()*thermalUpscale))
	xdraw.CatmullRom.Scale(big, big.Rect, oriented, oriented.Rect, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, big, &jpeg.Options{Quality: s.cfg.GetJPEGQuality()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
