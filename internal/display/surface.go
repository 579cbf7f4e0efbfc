// Package display provides the paint targets and status surface the
// dashboard client renders into.
package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// MemorySurface holds the most recently painted frame. It backs the viewer's
// in-process display and doubles as a capture target in tests.
type MemorySurface struct {
	mu     sync.Mutex
	img    *image.RGBA
	paints int
}

// SetImage replaces the surface contents.
func (s *MemorySurface) SetImage(img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
	s.paints++
}

// Image returns the last painted frame, or nil if nothing has been painted.
func (s *MemorySurface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Paints returns how many frames have been painted.
func (s *MemorySurface) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}

// FileSurface writes each painted frame to a PNG file, replacing the
// previous one. The write goes through a temp file and rename so a reader
// never sees a torn image.
type FileSurface struct {
	mu   sync.Mutex
	path string
	err  error
}

// NewFileSurface creates a surface writing to the given path.
func NewFileSurface(path string) *FileSurface {
	return &FileSurface{path: path}
}

// SetImage encodes the frame as PNG and atomically replaces the target file.
func (s *FileSurface) SetImage(img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = writePNG(s.path, img)
}

// Err returns the error from the most recent write, if any.
func (s *FileSurface) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func writePNG(path string, img *image.RGBA) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".heatmap-*.png")
	if err != nil {
		return fmt.Errorf("create temp frame file: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace frame file: %w", err)
	}
	return nil
}
