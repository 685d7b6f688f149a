package filters

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// savgolVec smooths v with a Savitzky-Golay filter: a least-squares
// polynomial of the given order is fit over a sliding window and
// evaluated (or differentiated deriv times) at the sample position.
// Near the edges the first and last full windows are reused, so the
// output keeps the input length.  window must be odd and larger than
// polyorder; callers validate that, but short inputs degrade the
// window rather than fail.
func savgolVec(v []float64, window, polyorder, deriv int) []float64 {
	n := len(v)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if window > n {
		window = n
		if window%2 == 0 {
			window--
		}
		if window < 1 {
			window = 1
		}
	}
	if polyorder >= window {
		polyorder = window - 1
	}
	if deriv > polyorder {
		return out
	}

	// design matrix over in-window offsets, shared by every window
	a := mat.NewDense(window, polyorder+1, nil)
	for r := 0; r < window; r++ {
		p := 1.0
		for k := 0; k <= polyorder; k++ {
			a.Set(r, k, p)
			p *= float64(r)
		}
	}
	var qr mat.QR
	qr.Factorize(a)

	half := window / 2
	b := mat.NewDense(window, 1, nil)
	var c mat.Dense
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		if lo+window > n {
			lo = n - window
		}
		for r := 0; r < window; r++ {
			b.Set(r, 0, v[lo+r])
		}
		if err := qr.SolveTo(&c, false, b); err != nil {
			copy(out, v)
			return out
		}
		out[i] = evalPolyDeriv(&c, polyorder, deriv, float64(i-lo))
	}
	return out
}

// evalPolyDeriv evaluates the deriv-th derivative of the fitted
// polynomial at offset t.
func evalPolyDeriv(c *mat.Dense, polyorder, deriv int, t float64) float64 {
	sum := 0.0
	for k := deriv; k <= polyorder; k++ {
		// falling factorial k (k-1) ... (k-deriv+1)
		w := 1.0
		for d := 0; d < deriv; d++ {
			w *= float64(k - d)
		}
		sum += c.At(k, 0) * w * math.Pow(t, float64(k-deriv))
	}
	return sum
}
