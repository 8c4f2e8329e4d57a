package mandel

import (
	"math/big"
	"testing"
)

func bigPoint(re, im float64, prec uint) Complex[BigFloat] {
	return Complex[BigFloat]{
		Re: BigFloatFromFloat64(re, prec),
		Im: BigFloatFromFloat64(im, prec),
	}
}

func TestEvaluateEscapeIndexing(t *testing.T) {
	// z_1 = c, so c = 3 leaves the radius on the very first iteration.
	got := EvaluateComplex128(3, 10)
	want := Result{Escaped: true, Iteration: 0}
	if got != want {
		t.Fatalf("Evaluate(3) = %+v, want %+v", got, want)
	}

	// c = 1: z = 1, 2, 5; |2|² = 4 is not beyond the bound, 25 is.
	got = EvaluateComplex128(1, 10)
	want = Result{Escaped: true, Iteration: 2}
	if got != want {
		t.Fatalf("Evaluate(1) = %+v, want %+v", got, want)
	}
}

func TestEvaluateOutsideRadiusEscapesImmediately(t *testing.T) {
	points := []complex128{3, -3, 3i, -2.5i, 2 + 2i, -1.5 - 1.5i, 2.0001, 100 - 100i}
	for _, c := range points {
		for _, maxIter := range []int{1, 2, 255, 1000} {
			got := EvaluateComplex128(c, maxIter)
			if !got.Escaped || got.Iteration != 0 {
				t.Errorf("Evaluate(%v, %d) = %+v, want escape at 0", c, maxIter, got)
			}
		}
	}
}

func TestEvaluateBounded(t *testing.T) {
	tests := []struct {
		name    string
		c       complex128
		maxIter int
	}{
		{"origin", 0, 1},
		{"origin long", 0, 1000},
		{"period two", -1, 50},
		{"period two long", -1, 1000},
		{"tip", -2, 500},
		{"cardioid", 0.25, 100},
		{"i", 1i, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateComplex128(tt.c, tt.maxIter); got.Escaped {
				t.Fatalf("Evaluate(%v, %d) = %+v, want bounded", tt.c, tt.maxIter, got)
			}
		})
	}
}

func TestEvaluateNoIterations(t *testing.T) {
	for _, maxIter := range []int{0, -1} {
		if got := EvaluateComplex128(10, maxIter); got != (Result{}) {
			t.Errorf("Evaluate(10, %d) = %+v, want zero result", maxIter, got)
		}
	}
}

func TestEvaluateIterationWithinBudget(t *testing.T) {
	for _, c := range []complex128{0.3 + 0.5i, -0.75 + 0.1i, 0.26, -1.8 + 0.01i} {
		const maxIter = 300
		got := EvaluateComplex128(c, maxIter)
		if got.Escaped && (got.Iteration < 0 || got.Iteration >= maxIter) {
			t.Errorf("Evaluate(%v) iteration %d outside [0, %d)", c, got.Iteration, maxIter)
		}
	}
}

func TestEvaluateBigMatchesFloat(t *testing.T) {
	// points far from the boundary, where rounding cannot change the outcome
	points := []complex128{
		3, 0, -1, 1, -2.1, 0.5 + 0.5i, -0.1 + 0.1i, -0.5 + 0.5i,
	}
	for _, c := range points {
		want := EvaluateComplex128(c, 200)
		for _, prec := range []uint{53, 64, 128, 256} {
			got := Evaluate(bigPoint(real(c), imag(c), prec), 200)
			if got != want {
				t.Errorf("big Evaluate(%v) at %d bits = %+v, float64 = %+v", c, prec, got, want)
			}
		}
	}
}

func TestEvaluateBigOutsideRadius(t *testing.T) {
	got := Evaluate(bigPoint(3, 0, 512), 1000)
	if !got.Escaped || got.Iteration != 0 {
		t.Fatalf("Evaluate(3) at 512 bits = %+v, want escape at 0", got)
	}
	if got := Evaluate(bigPoint(0, 0, 512), 100); got.Escaped {
		t.Fatalf("origin escaped at 512 bits: %+v", got)
	}
}

func TestBigFloatPrecisionPropagates(t *testing.T) {
	a := NewBigFloat(big.NewFloat(1), 200)
	b := BigFloatFromFloat64(2, 64)
	if p := a.Mul(b).Prec(); p != 200 {
		t.Errorf("Mul precision = %d, want 200", p)
	}
	if s := a.Add(b).String(); s != "3" {
		t.Errorf("1+2 = %s", s)
	}
	if !a.Sub(b).Mul(a.Sub(b)).Greater(0.5) {
		t.Errorf("(1-2)² should be greater than 0.5")
	}
}

func TestComplexSquare(t *testing.T) {
	z := Complex[Float64]{Re: 1, Im: 2}
	got := z.Square()
	// (1+2i)² = -3+4i
	if got.Re != -3 || got.Im != 4 {
		t.Fatalf("(1+2i)² = %v+%vi", got.Re, got.Im)
	}
	if a := z.Abs2(); a != 5 {
		t.Fatalf("|1+2i|² = %v", a)
	}
}

func BenchmarkEvaluateFloat64(b *testing.B) {
	for i := 0; i < b.N; i++ {
		EvaluateComplex128(-0.75+0.1i, 1000)
	}
}

func BenchmarkEvaluateBig128(b *testing.B) {
	c := bigPoint(-0.75, 0.1, 128)
	for i := 0; i < b.N; i++ {
		Evaluate(c, 1000)
	}
}
