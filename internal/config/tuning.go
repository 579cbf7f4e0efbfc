package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Compile-time defaults for the dashboard's scheduling and streaming
// parameters. The client polls at roughly 6 Hz while visible, slows to the
// hidden interval when unobserved, and backs off multiplicatively on
// communication failures.
const (
	DefaultPollInterval    = 167 * time.Millisecond
	DefaultHiddenInterval  = 2000 * time.Millisecond
	DefaultMaxBackoff      = 5000 * time.Millisecond
	DefaultStreamRetry     = 500 * time.Millisecond
	DefaultBackoffFactor   = 1.5
	DefaultThermalInterval = 250 * time.Millisecond
	DefaultStalenessWindow = 2 * time.Second
	DefaultCameraFPS       = 20.0
	DefaultStreamFPS       = 15.0
	DefaultJPEGQuality     = 70
	DefaultHistorySize     = 1000
)

// TuningConfig represents the optional tuning overrides for the thermal
// dashboard. All fields are pointers so a partial JSON file only overrides
// what it names; the Get* accessors fall back to the compiled defaults.
type TuningConfig struct {
	// Client scheduling params
	PollIntervalMS   *float64 `json:"poll_interval_ms,omitempty"`
	HiddenIntervalMS *float64 `json:"hidden_interval_ms,omitempty"`
	MaxBackoffMS     *float64 `json:"max_backoff_ms,omitempty"`
	StreamRetryMS    *float64 `json:"stream_retry_ms,omitempty"`
	BackoffFactor    *float64 `json:"backoff_factor,omitempty"`

	// Backend acquisition params
	ThermalInterval *string  `json:"thermal_interval,omitempty"` // duration string like "250ms"
	StalenessWindow *string  `json:"staleness_window,omitempty"` // duration string like "2s"
	CameraFPS       *float64 `json:"camera_fps,omitempty"`
	StreamFPS       *float64 `json:"stream_fps,omitempty"`
	JPEGQuality     *int     `json:"jpeg_quality,omitempty"`
	HistorySize     *int     `json:"history_size,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset, meaning
// every accessor returns its compiled default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from
// the JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"poll_interval_ms":   c.PollIntervalMS,
		"hidden_interval_ms": c.HiddenIntervalMS,
		"max_backoff_ms":     c.MaxBackoffMS,
		"stream_retry_ms":    c.StreamRetryMS,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	if c.BackoffFactor != nil && *c.BackoffFactor < 1 {
		return fmt.Errorf("backoff_factor must be >= 1, got %f", *c.BackoffFactor)
	}

	// The delay invariant requires the base delays to stay under the cap.
	if c.PollIntervalMS != nil && c.MaxBackoffMS != nil && *c.PollIntervalMS > *c.MaxBackoffMS {
		return fmt.Errorf("poll_interval_ms %f exceeds max_backoff_ms %f", *c.PollIntervalMS, *c.MaxBackoffMS)
	}
	if c.StreamRetryMS != nil && c.MaxBackoffMS != nil && *c.StreamRetryMS > *c.MaxBackoffMS {
		return fmt.Errorf("stream_retry_ms %f exceeds max_backoff_ms %f", *c.StreamRetryMS, *c.MaxBackoffMS)
	}

	if c.ThermalInterval != nil && *c.ThermalInterval != "" {
		if _, err := time.ParseDuration(*c.ThermalInterval); err != nil {
			return fmt.Errorf("invalid thermal_interval '%s': %w", *c.ThermalInterval, err)
		}
	}
	if c.StalenessWindow != nil && *c.StalenessWindow != "" {
		if _, err := time.ParseDuration(*c.StalenessWindow); err != nil {
			return fmt.Errorf("invalid staleness_window '%s': %w", *c.StalenessWindow, err)
		}
	}

	if c.JPEGQuality != nil && (*c.JPEGQuality < 1 || *c.JPEGQuality > 100) {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", *c.JPEGQuality)
	}
	if c.HistorySize != nil && *c.HistorySize <= 0 {
		return fmt.Errorf("history_size must be positive, got %d", *c.HistorySize)
	}

	return nil
}

// GetPollInterval returns the base poll interval or the default.
func (c *TuningConfig) GetPollInterval() time.Duration {
	return msOrDefault(c.PollIntervalMS, DefaultPollInterval)
}

// GetHiddenInterval returns the hidden-page poll interval or the default.
func (c *TuningConfig) GetHiddenInterval() time.Duration {
	return msOrDefault(c.HiddenIntervalMS, DefaultHiddenInterval)
}

// GetMaxBackoff returns the backoff delay ceiling or the default.
func (c *TuningConfig) GetMaxBackoff() time.Duration {
	return msOrDefault(c.MaxBackoffMS, DefaultMaxBackoff)
}

// GetStreamRetry returns the initial stream retry delay or the default.
func (c *TuningConfig) GetStreamRetry() time.Duration {
	return msOrDefault(c.StreamRetryMS, DefaultStreamRetry)
}

// GetBackoffFactor returns the multiplicative backoff factor or the default.
func (c *TuningConfig) GetBackoffFactor() float64 {
	if c.BackoffFactor == nil {
		return DefaultBackoffFactor
	}
	return *c.BackoffFactor
}

// GetThermalInterval parses and returns the sensor read interval.
func (c *TuningConfig) GetThermalInterval() time.Duration {
	return durationOrDefault(c.ThermalInterval, DefaultThermalInterval)
}

// GetStalenessWindow parses and returns the cached-frame staleness window.
func (c *TuningConfig) GetStalenessWindow() time.Duration {
	return durationOrDefault(c.StalenessWindow, DefaultStalenessWindow)
}

// GetCameraFPS returns the camera read rate or the default.
func (c *TuningConfig) GetCameraFPS() float64 {
	if c.CameraFPS == nil || *c.CameraFPS <= 0 {
		return DefaultCameraFPS
	}
	return *c.CameraFPS
}

// GetStreamFPS returns the MJPEG delivery rate or the default.
func (c *TuningConfig) GetStreamFPS() float64 {
	if c.StreamFPS == nil || *c.StreamFPS <= 0 {
		return DefaultStreamFPS
	}
	return *c.StreamFPS
}

// GetJPEGQuality returns the stream JPEG quality or the default.
func (c *TuningConfig) GetJPEGQuality() int {
	if c.JPEGQuality == nil {
		return DefaultJPEGQuality
	}
	return *c.JPEGQuality
}

// GetHistorySize returns the temperature history capacity or the default.
func (c *TuningConfig) GetHistorySize() int {
	if c.HistorySize == nil {
		return DefaultHistorySize
	}
	return *c.HistorySize
}

func msOrDefault(v *float64, def time.Duration) time.Duration {
	if v == nil || *v <= 0 {
		return def
	}
	return time.Duration(*v * float64(time.Millisecond))
}

func durationOrDefault(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}
