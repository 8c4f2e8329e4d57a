package mandel

import (
	"errors"
	"image/color"
	"testing"
)

func TestPalettesArePure(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := PaletteByName(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, maxIter := range []int{1, 255, 1000} {
			for it := 0; it < maxIter; it += 7 {
				r := Result{Escaped: true, Iteration: it}
				if a, b := p(r, maxIter), p(r, maxIter); a != b {
					t.Fatalf("%s(%d, %d) not deterministic: %v != %v", name, it, maxIter, a, b)
				}
			}
		}
	}
}

func TestPalettesInsideIsBlack(t *testing.T) {
	for _, name := range PaletteNames() {
		p, _ := PaletteByName(name)
		if got := p(Result{}, 255); got != Inside {
			t.Errorf("%s(inside) = %v, want %v", name, got, Inside)
		}
	}
}

func TestLinearWrapsAround(t *testing.T) {
	p := Linear(1, 3, 7)
	tests := []struct {
		it, maxIter int
		want        color.RGBA
	}{
		{it: 254, maxIter: 255, want: color.RGBA{R: 1, G: 3, B: 7, A: 255}},
		{it: 0, maxIter: 255, want: color.RGBA{R: 255, G: (255 * 3) % 256, B: (255 * 7) % 256, A: 255}},
		{it: 0, maxIter: 1000, want: color.RGBA{R: 1000 % 256, G: 3000 % 256, B: 7000 % 256, A: 255}},
	}
	for _, tt := range tests {
		got := p(Result{Escaped: true, Iteration: tt.it}, tt.maxIter)
		if got != tt.want {
			t.Errorf("Linear(%d, %d) = %v, want %v", tt.it, tt.maxIter, got, tt.want)
		}
	}
}

func TestGrayIsOpaqueAndMonotonic(t *testing.T) {
	var prev uint8
	for it := 0; it < 100; it++ {
		c := Gray(Result{Escaped: true, Iteration: it}, 100)
		if c.A != 255 {
			t.Fatalf("Gray(%d) alpha = %d", it, c.A)
		}
		if c.R < prev {
			t.Fatalf("Gray(%d) = %d darker than previous %d", it, c.R, prev)
		}
		prev = c.R
	}
	if prev != 255 {
		t.Fatalf("Gray(last) = %d, want 255", prev)
	}
}

func TestHSVPrimaries(t *testing.T) {
	if got := hsv(0, 1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("hsv(0) = %v, want red", got)
	}
	if got := HSV(Result{Escaped: true, Iteration: 50}, 100); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("HSV(50) = %v, want red after a full cycle", got)
	}
}

func TestPaletteByNameUnknown(t *testing.T) {
	_, err := PaletteByName("plaid")
	if !errors.Is(err, ErrUnknownPalette) {
		t.Fatalf("err = %v, want ErrUnknownPalette", err)
	}
}
