package mandel

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
)

// ErrUnknownPalette is returned by PaletteByName.
var ErrUnknownPalette = errors.New("unknown palette")

// Palette maps an iteration result to a color. Palettes must be pure
// functions of their arguments.
type Palette func(r Result, maxIter int) color.RGBA

// Inside is the color of points that did not escape.
var Inside = color.RGBA{A: 255}

// Linear returns a palette that scales maxIter-Iteration by a separate
// factor per channel, wrapping around at 256.
func Linear(rScale, gScale, bScale int) Palette {
	return func(r Result, maxIter int) color.RGBA {
		if !r.Escaped {
			return Inside
		}
		n := maxIter - r.Iteration
		return color.RGBA{
			R: uint8((n * rScale) % 256),
			G: uint8((n * gScale) % 256),
			B: uint8((n * bScale) % 256),
			A: 255,
		}
	}
}

// HSV cycles the hue once every 50 iterations.
func HSV(r Result, maxIter int) color.RGBA {
	if !r.Escaped {
		return Inside
	}
	return hsv(math.Mod(float64(r.Iteration)*0.02, 1.0), 1, 1)
}

// Gray fades from black to white as the escape iteration grows.
func Gray(r Result, maxIter int) color.RGBA {
	if !r.Escaped || maxIter < 1 {
		return Inside
	}
	v := uint8(255 * (r.Iteration + 1) / maxIter)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// DefaultPalette is used when no palette is configured.
var DefaultPalette = Linear(1, 3, 7)

var palettes = map[string]Palette{
	"linear": DefaultPalette,
	"hsv":    HSV,
	"gray":   Gray,
}

// PaletteByName looks up one of the palettes listed by PaletteNames.
func PaletteByName(name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	return p, nil
}

// PaletteNames returns the sorted names of the known palettes.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Simple HSV → RGB
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
