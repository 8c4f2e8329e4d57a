package mandel

import (
	"errors"
	"fmt"
	"image"
	"math/big"
)

// Float64Precision is the largest precision evaluated on float64.
const Float64Precision = 53

// guardBits are kept beyond the bits needed to tell neighbouring pixels apart.
const guardBits = 16

// MaxPrecision bounds the precision of a viewport. Views deeper than it
// can resolve are refused.
const MaxPrecision = 4096

// MaxWidth is the widest view Zoom zooms out to.
const MaxWidth = 64

var maxWidth = big.NewFloat(MaxWidth)

var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is the region of the complex plane mapped onto the image: a
// center, the width of the image in plane units and the precision, in bits,
// the plane coordinates are computed with.
//
// A Viewport is immutable. Pan, Zoom and Select return new values.
type Viewport struct {
	re, im *big.Float
	width  *big.Float
	prec   uint
}

// NewViewport creates a float64 precision viewport.
func NewViewport(re, im, width float64) (Viewport, error) {
	return NewViewportBig(big.NewFloat(re), big.NewFloat(im), big.NewFloat(width), Float64Precision)
}

// NewViewportBig creates a viewport with prec bits of precision. The
// arguments are copied.
func NewViewportBig(re, im, width *big.Float, prec uint) (Viewport, error) {
	if width == nil || width.Sign() <= 0 || width.IsInf() {
		return Viewport{}, fmt.Errorf("%w: width must be positive and finite", ErrInvalidViewport)
	}
	if re == nil || im == nil || re.IsInf() || im.IsInf() {
		return Viewport{}, fmt.Errorf("%w: center must be finite", ErrInvalidViewport)
	}
	if prec < Float64Precision {
		prec = Float64Precision
	}
	return Viewport{
		re:    new(big.Float).SetPrec(prec).Set(re),
		im:    new(big.Float).SetPrec(prec).Set(im),
		width: new(big.Float).SetPrec(prec).Set(width),
		prec:  prec,
	}, nil
}

// Home is the view of the whole set.
func Home() Viewport {
	vp, _ := NewViewport(0, 0, 4)
	return vp
}

// Center returns copies of the center coordinates.
func (vp Viewport) Center() (re, im *big.Float) {
	return new(big.Float).Copy(vp.re), new(big.Float).Copy(vp.im)
}

// Width returns a copy of the width.
func (vp Viewport) Width() *big.Float {
	return new(big.Float).Copy(vp.width)
}

// Precision returns the precision in bits.
func (vp Viewport) Precision() uint {
	return vp.prec
}

// IsZero reports whether vp is the zero value, which is not a valid viewport.
func (vp Viewport) IsZero() bool {
	return vp.width == nil
}

// Equal reports whether both viewports describe the same view.
func (vp Viewport) Equal(o Viewport) bool {
	if vp.IsZero() || o.IsZero() {
		return vp.IsZero() == o.IsZero()
	}
	return vp.prec == o.prec &&
		vp.re.Cmp(o.re) == 0 &&
		vp.im.Cmp(o.im) == 0 &&
		vp.width.Cmp(o.width) == 0
}

func (vp Viewport) String() string {
	return fmt.Sprintf("center=(%s, %s) width=%s prec=%d",
		vp.re.Text('g', 17), vp.im.Text('g', 17), vp.width.Text('g', 6), vp.prec)
}

func (vp Viewport) newFloat() *big.Float {
	return new(big.Float).SetPrec(vp.prec)
}

// pointAt2 maps doubled pixel coordinates (u, v) = (2px, 2py), which lets
// selection centers fall between pixels.
//
//	re = cre + (u - X) * width / 2X
//	im = cim + (v - Y) * width / 2X
func (vp Viewport) pointAt2(u, v int64, size image.Point) (re, im *big.Float) {
	den := vp.newFloat().SetInt64(2 * int64(size.X))

	re = vp.newFloat().SetInt64(u - int64(size.X))
	re.Mul(re, vp.width).Quo(re, den).Add(re, vp.re)

	im = vp.newFloat().SetInt64(v - int64(size.Y))
	im.Mul(im, vp.width).Quo(im, den).Add(im, vp.im)
	return re, im
}

// PixelToPoint maps pixel (px, py) of an image of the given size to the
// plane. Pixel (0, 0) is the top-left corner; imaginary parts grow
// downwards. The mapping is pure.
func (vp Viewport) PixelToPoint(px, py int, size image.Point) Complex[BigFloat] {
	re, im := vp.pointAt2(2*int64(px), 2*int64(py), size)
	return Complex[BigFloat]{Re: BigFloat{f: re}, Im: BigFloat{f: im}}
}

// Pan moves the view by a pixel delta. Dragging the image by (dx, dy)
// moves the center the opposite way.
func (vp Viewport) Pan(dx, dy float64, size image.Point) Viewport {
	if size.X <= 0 || (dx == 0 && dy == 0) {
		return vp
	}
	scale := vp.newFloat().Quo(vp.width, vp.newFloat().SetInt64(int64(size.X)))

	re := vp.newFloat().SetFloat64(dx)
	re.Mul(re, scale).Sub(vp.re, re)
	im := vp.newFloat().SetFloat64(dy)
	im.Mul(im, scale).Sub(vp.im, im)

	return Viewport{re: re, im: im, width: vp.width, prec: vp.prec}
}

// Zoom scales the width by (1+factor) per positive tick and by (1-factor)
// per negative tick. factor must lie in (0, 1). The width is capped at
// MaxWidth, and zooms needing more than MaxPrecision bits are refused.
func (vp Viewport) Zoom(ticks int, factor float64, size image.Point) Viewport {
	if ticks == 0 || !(factor > 0 && factor < 1) {
		return vp
	}
	step := 1 + factor
	n := uint64(ticks)
	if ticks < 0 {
		step = 1 - factor
		n = uint64(-(ticks + 1)) + 1
	}
	width := powFloat(vp.newFloat().SetFloat64(step), n)
	width.Mul(width, vp.width)
	if ticks > 0 && width.Cmp(maxWidth) > 0 {
		if vp.width.Cmp(maxWidth) >= 0 {
			return vp
		}
		width.Set(maxWidth)
	}
	return vp.withWidth(vp.re, vp.im, width, size)
}

// powFloat returns x**n, rounded at x's precision.
func powFloat(x *big.Float, n uint64) *big.Float {
	z := new(big.Float).SetPrec(x.Prec()).SetInt64(1)
	b := new(big.Float).Copy(x)
	for n > 0 {
		if n&1 == 1 {
			z.Mul(z, b)
		}
		n >>= 1
		if n > 0 {
			b.Mul(b, b)
		}
	}
	return z
}

// Select replaces the view by the plane region under a pixel rectangle.
// The new width is the selection's width; the image aspect ratio is kept.
// Empty selections leave the view unchanged.
func (vp Viewport) Select(rect image.Rectangle, size image.Point) Viewport {
	rect = rect.Canon()
	if rect.Empty() || size.X <= 0 {
		return vp
	}
	width := vp.newFloat().SetInt64(int64(rect.Dx()))
	width.Mul(width, vp.width).Quo(width, vp.newFloat().SetInt64(int64(size.X)))
	need := PrecisionFor(width, size.X)
	if need > MaxPrecision {
		return vp
	}

	// map the center at the precision the new view needs
	hp := vp.withPrec(max(vp.prec, need))
	re, im := hp.pointAt2(
		int64(rect.Min.X+rect.Max.X),
		int64(rect.Min.Y+rect.Max.Y),
		size,
	)
	return vp.withWidth(re, im, width, size)
}

func (vp Viewport) withPrec(prec uint) Viewport {
	if prec == vp.prec {
		return vp
	}
	return Viewport{
		re:    new(big.Float).SetPrec(prec).Set(vp.re),
		im:    new(big.Float).SetPrec(prec).Set(vp.im),
		width: new(big.Float).SetPrec(prec).Set(vp.width),
		prec:  prec,
	}
}

// withWidth raises the precision when the new pixel step needs it. The
// precision never decreases. Widths that underflowed to zero or need more
// than MaxPrecision bits leave vp unchanged.
func (vp Viewport) withWidth(re, im, width *big.Float, size image.Point) Viewport {
	need := PrecisionFor(width, size.X)
	if width.Sign() <= 0 || width.IsInf() || need > MaxPrecision {
		return vp
	}
	prec := max(vp.prec, need)
	return Viewport{
		re:    new(big.Float).SetPrec(prec).Set(re),
		im:    new(big.Float).SetPrec(prec).Set(im),
		width: new(big.Float).SetPrec(prec).Set(width),
		prec:  prec,
	}
}

// PrecisionFor returns the bits needed to resolve pixels of a view of the
// given width spread over n pixels, with coordinates of magnitude up to 4.
func PrecisionFor(width *big.Float, n int) uint {
	if width.Sign() <= 0 || n <= 0 {
		return Float64Precision
	}
	step := new(big.Float).Quo(width, big.NewFloat(float64(n)))
	exp := step.MantExp(nil)
	bits := 2 - exp + guardBits
	if bits < Float64Precision {
		return Float64Precision
	}
	return uint(bits)
}
