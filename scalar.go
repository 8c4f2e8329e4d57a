package mandel

import "math/big"

// Scalar is a real number type the escape-time iteration can run on.
// Values are treated as immutable: every operation returns a new value.
type Scalar[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	// Greater reports whether the value is strictly greater than f.
	Greater(f float64) bool
}

// Float64 is the fast scalar, good down to widths of roughly 1e-13.
type Float64 float64

// The explicit conversions round every operation to float64 and keep the
// compiler from fusing multiply-adds, so results match a 53 bit BigFloat.
func (a Float64) Add(b Float64) Float64 { return Float64(float64(a) + float64(b)) }
func (a Float64) Sub(b Float64) Float64 { return Float64(float64(a) - float64(b)) }
func (a Float64) Mul(b Float64) Float64 { return Float64(float64(a) * float64(b)) }

func (a Float64) Greater(f float64) bool { return float64(a) > f }

var _ Scalar[Float64] = Float64(0)

// BigFloat is an arbitrary precision scalar backed by math/big.
// The zero value is not usable; create values with NewBigFloat.
type BigFloat struct {
	f *big.Float
}

// NewBigFloat returns x rounded to prec bits.
func NewBigFloat(x *big.Float, prec uint) BigFloat {
	return BigFloat{f: new(big.Float).SetPrec(prec).Set(x)}
}

// BigFloatFromFloat64 returns f with prec bits of mantissa.
func BigFloatFromFloat64(f float64, prec uint) BigFloat {
	return BigFloat{f: new(big.Float).SetPrec(prec).SetFloat64(f)}
}

// Results take the larger precision of the two operands.
func (a BigFloat) Add(b BigFloat) BigFloat { return BigFloat{f: new(big.Float).Add(a.f, b.f)} }
func (a BigFloat) Sub(b BigFloat) BigFloat { return BigFloat{f: new(big.Float).Sub(a.f, b.f)} }
func (a BigFloat) Mul(b BigFloat) BigFloat { return BigFloat{f: new(big.Float).Mul(a.f, b.f)} }

func (a BigFloat) Greater(f float64) bool {
	return a.f.Cmp(big.NewFloat(f)) > 0
}

// Float returns a copy of the underlying value.
func (a BigFloat) Float() *big.Float {
	return new(big.Float).Copy(a.f)
}

// Prec returns the mantissa precision in bits.
func (a BigFloat) Prec() uint {
	return a.f.Prec()
}

func (a BigFloat) String() string {
	return a.f.Text('g', 20)
}

var _ Scalar[BigFloat] = BigFloat{}

// Complex is a point of the complex plane over scalar T.
type Complex[T Scalar[T]] struct {
	Re, Im T
}

// Add returns z + w.
func (z Complex[T]) Add(w Complex[T]) Complex[T] {
	return Complex[T]{Re: z.Re.Add(w.Re), Im: z.Im.Add(w.Im)}
}

// Square returns z*z.
func (z Complex[T]) Square() Complex[T] {
	reim := z.Re.Mul(z.Im)
	return Complex[T]{
		Re: z.Re.Mul(z.Re).Sub(z.Im.Mul(z.Im)),
		Im: reim.Add(reim),
	}
}

// Abs2 returns the squared magnitude |z|².
func (z Complex[T]) Abs2() T {
	return z.Re.Mul(z.Re).Add(z.Im.Mul(z.Im))
}
