// Package heatmap converts temperature snapshots into false-color RGBA
// images oriented for the dashboard display.
package heatmap

import (
	"image/color"
	"math"
)

// Palette parameters. Cold values map near blue (hue 220°), hot values near
// red (hue 10°), with fixed saturation and lightness.
const (
	coldHue    = 220.0
	hotHue     = 10.0
	saturation = 0.85
	lightness  = 0.55

	// minRange floors the normalisation denominator so a thermally uniform
	// scene does not divide by zero.
	minRange = 0.1
)

// Normalize maps a temperature into [0,1] against the snapshot's min/max.
func Normalize(value, min, max float64) float64 {
	t := (value - min) / math.Max(max-min, minRange)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Hue returns the palette hue in degrees for a normalised value in [0,1].
func Hue(t float64) float64 {
	return (1-t)*coldHue + t*hotHue
}

// Color maps a temperature to its palette color.
func Color(value, min, max float64) color.RGBA {
	return hslToRGB(Hue(Normalize(value, min, max)), saturation, lightness)
}

// hslToRGB converts an HSL triple (hue in degrees, s and l in [0,1]) to RGBA
// with full alpha, using the standard piecewise conversion.
func hslToRGB(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
