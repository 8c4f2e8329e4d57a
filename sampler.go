package mandel

import "image"

// Sampler evaluates the pixels of one image of one viewport.
type Sampler interface {
	Sample(px, py int) Result
}

// Sampler returns the evaluator for pixels of an image of the given size.
// The number type is picked once here: float64 up to Float64Precision bits,
// math/big beyond.
func (vp Viewport) Sampler(size image.Point, maxIter int) Sampler {
	if vp.prec <= Float64Precision {
		re, _ := vp.re.Float64()
		im, _ := vp.im.Float64()
		w, _ := vp.width.Float64()
		return floatSampler{
			re:      re,
			im:      im,
			width:   w,
			den:     float64(2 * size.X),
			size:    size,
			maxIter: maxIter,
		}
	}
	return bigSampler{vp: vp, size: size, maxIter: maxIter}
}

type floatSampler struct {
	re, im  float64
	width   float64
	den     float64 // 2X
	size    image.Point
	maxIter int
}

func (s floatSampler) Sample(px, py int) Result {
	// same operation order as Viewport.pointAt2
	c := Complex[Float64]{
		Re: Float64(float64(float64(2*px-s.size.X)*s.width)/s.den + s.re),
		Im: Float64(float64(float64(2*py-s.size.Y)*s.width)/s.den + s.im),
	}
	return Evaluate(c, s.maxIter)
}

type bigSampler struct {
	vp      Viewport
	size    image.Point
	maxIter int
}

func (s bigSampler) Sample(px, py int) Result {
	return Evaluate(s.vp.PixelToPoint(px, py, s.size), s.maxIter)
}

// PointFloat64 is PixelToPoint rounded to float64, for display.
func (vp Viewport) PointFloat64(px, py int, size image.Point) complex128 {
	c := vp.PixelToPoint(px, py, size)
	re, _ := c.Re.f.Float64()
	im, _ := c.Im.f.Float64()
	return complex(re, im)
}
