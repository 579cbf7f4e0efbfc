// Package camera provides JPEG frame sources for the USB camera stream: a
// synthetic test pattern for dev mode and a directory playback source for
// fixture-driven testing.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/komorebi-dev/thermal.view/internal/timeutil"
)

// Source produces encoded JPEG frames.
type Source interface {
	// Frame returns the next JPEG-encoded frame.
	Frame(ctx context.Context) ([]byte, error)
}

// Resetter is implemented by sources whose device handle can be reopened
// after repeated read failures.
type Resetter interface {
	Reset() error
}

// SyntheticSource renders a moving test pattern. Frames depend only on the
// injected clock.
type SyntheticSource struct {
	width   int
	height  int
	quality int
	clock   timeutil.Clock
}

// NewSyntheticSource creates a 640x480 test pattern source.
func NewSyntheticSource(clock timeutil.Clock, quality int) *SyntheticSource {
	return &SyntheticSource{width: 640, height: 480, quality: quality, clock: clock}
}

// Frame renders and encodes the pattern for the current clock time.
func (s *SyntheticSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	tick := s.clock.Now().UnixMilli() / 100

	// Horizontal gradient background with a sweeping vertical bar.
	barX := int(tick) % s.width
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := color.RGBA{
				R: uint8(x * 255 / s.width),
				G: uint8(y * 255 / s.height),
				B: 64,
				A: 255,
			}
			if abs(x-barX) < 8 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("camera: encode synthetic frame: %w", err)
	}
	return buf.Bytes(), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DirSource loops over the JPEG files in a directory in name order. It
// stands in for a real camera during development, the way recorded fixtures
// replace live sensors elsewhere.
type DirSource struct {
	mu    sync.Mutex
	dir   string
	files []string
	next  int
}

// NewDirSource scans dir for .jpg/.jpeg files.
func NewDirSource(dir string) (*DirSource, error) {
	s := &DirSource{dir: dir}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rescans the directory and restarts playback.
func (s *DirSource) Reset() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("camera: scan frame dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg":
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("camera: no jpeg files in %s", s.dir)
	}
	sort.Strings(files)

	s.mu.Lock()
	s.files = files
	s.next = 0
	s.mu.Unlock()
	return nil
}

// Frame returns the next file's contents, wrapping at the end.
func (s *DirSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("camera: read frame file: %w", err)
	}
	return data, nil
}
