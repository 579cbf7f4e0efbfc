package heatmap

import (
	"image"

	"github.com/komorebi-dev/thermal.view/internal/thermal"
)

// Surface is a paint target for rendered frames. Implementations live in
// internal/display.
type Surface interface {
	// SetImage replaces the surface contents with the given frame.
	SetImage(img *image.RGBA)
}

// Compose builds the false-color image in the sensor's native orientation,
// one pixel per grid cell, row-major to match the snapshot layout.
func Compose(s *thermal.Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := Color(s.At(x, y), s.Min, s.Max)
			off := img.PixOffset(x, y)
			img.Pix[off+0] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
		}
	}
	return img
}

// Orient applies the mounting correction: mirror horizontally, then rotate a
// quarter turn clockwise. The result is sized height×width with the sensor's
// rows running down the display's columns:
//
//	dst(dx, dy) = src(w-1-dy, h-1-dx)
//
// The sensor is mounted sideways, so this exact composition (not just any
// rotation) is what puts the scene upright on screen.
func Orient(src *image.RGBA) *image.RGBA {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for dy := 0; dy < w; dy++ {
		for dx := 0; dx < h; dx++ {
			so := src.PixOffset(w-1-dy, h-1-dx)
			do := dst.PixOffset(dx, dy)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// Renderer paints thermal snapshots onto a display surface.
type Renderer struct {
	surface Surface
}

// NewRenderer creates a renderer for the given surface. A nil surface is
// allowed; Render then becomes a no-op.
func NewRenderer(surface Surface) *Renderer {
	return &Renderer{surface: surface}
}

// Render composes the snapshot, applies the orientation correction, and
// paints the result. Output is deterministic for identical input.
func (r *Renderer) Render(s *thermal.Snapshot) {
	if r == nil || r.surface == nil {
		return
	}
	r.surface.SetImage(Orient(Compose(s)))
}
