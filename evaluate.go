package mandel

// EscapeRadius2 is the squared escape radius. A point whose orbit leaves
// the disk of radius 2 is outside the set.
const EscapeRadius2 = 4.0

// Result of an escape-time evaluation.
type Result struct {
	Escaped bool
	// Iteration is the zero based index of the iteration whose result first
	// left the escape radius. Only meaningful when Escaped is set.
	Iteration int
}

// Evaluate runs the escape-time iteration z = z*z + c from z = 0 for at most
// maxIter iterations.
//
// Iteration i produces z_{i+1}; the first i for which |z_{i+1}|² > 4 is
// returned. Since z_1 = c, every |c| > 2 escapes at iteration 0.
func Evaluate[T Scalar[T]](c Complex[T], maxIter int) Result {
	if maxIter < 1 {
		return Result{}
	}

	// z_1 = 0*0 + c, so the first iteration needs no arithmetic and the
	// scalar type never has to provide a zero.
	z := c
	for i := 0; i < maxIter; i++ {
		if i > 0 {
			z = z.Square().Add(c)
		}
		if z.Abs2().Greater(EscapeRadius2) {
			return Result{Escaped: true, Iteration: i}
		}
	}
	return Result{}
}

// EvaluateComplex128 is Evaluate on the builtin complex type.
func EvaluateComplex128(c complex128, maxIter int) Result {
	return Evaluate(Complex[Float64]{Re: Float64(real(c)), Im: Float64(imag(c))}, maxIter)
}
