package filters

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/inspectra/gadget/grid"
)

// gradient computes dy/dx with second-order central differences on the
// interior and one-sided differences at the ends, supporting non-uniform
// spacing.  len(x) must equal len(y).
func gradient(y, x []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		a := x[i] - x[i-1]
		b := x[i+1] - x[i]
		out[i] = (-b*y[i-1]/(a*(a+b)) +
			(b-a)*y[i]/(a*b) +
			a*y[i+1]/(b*(a+b)))
	}
	return out
}

// gradientUnit is gradient with implicit unit spacing.
func gradientUnit(y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = y[1] - y[0]
	out[n-1] = y[n-1] - y[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / 2
	}
	return out
}

func cumulativeSumVec(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	floats.CumSum(out, v)
	return out
}

// trapezoid integrates y over x cumulatively, starting at zero.
func trapezoid(x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + (x[i]-x[i-1])*(y[i]+y[i-1])/2
	}
	return out
}

// rectangle is a left-endpoint cumulative integral.
func rectangle(x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + (x[i]-x[i-1])*y[i-1]
	}
	return out
}

// simpson integrates cumulatively with composite Simpson segments,
// falling back to a trapezoid step for the odd leading interval.
func simpson(x, y []float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		if i >= 2 {
			h0 := x[i-1] - x[i-2]
			h1 := x[i] - x[i-1]
			if h0 != 0 && h1 != 0 {
				// quadratic through the last three points,
				// integrated over both intervals
				out[i] = out[i-2] + simpsonSegment(h0, h1, y[i-2], y[i-1], y[i])
				continue
			}
		}
		out[i] = out[i-1] + (x[i]-x[i-1])*(y[i]+y[i-1])/2
	}
	return out
}

// simpsonSegment integrates a quadratic through three points spanning
// consecutive interval widths h0 and h1.
func simpsonSegment(h0, h1, f0, f1, f2 float64) float64 {
	hsum := h0 + h1
	return hsum / 6 * (f0*(2-h1/h0) + f1*hsum*hsum/(h0*h1) + f2*(2-h0/h1))
}

// gaussianKernel builds a normalized Gaussian window truncated at four
// standard deviations.
func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(4*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	floats.Scale(1/sum, k)
	return k
}

// reflectIndex maps an out-of-range index into [0, n) by mirroring
// about the array edges (the d c b a | a b c d | d c b a extension).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// convolveReflect convolves v with kernel k using reflected boundaries.
func convolveReflect(v, k []float64) []float64 {
	n := len(v)
	radius := len(k) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for j, w := range k {
			acc += w * v[reflectIndex(i+j-radius, n)]
		}
		out[i] = acc
	}
	return out
}

// medianWindow returns the median of a scratch slice, sorting in place.
func medianWindow(w []float64) float64 {
	sort.Float64s(w)
	m := len(w) / 2
	if len(w)%2 == 1 {
		return w[m]
	}
	return (w[m-1] + w[m]) / 2
}

// medianFilter applies a running median of the given odd size with
// reflected boundaries.
func medianFilter(v []float64, size int) []float64 {
	n := len(v)
	radius := size / 2
	out := make([]float64, n)
	w := make([]float64, 0, size)
	for i := 0; i < n; i++ {
		w = w[:0]
		for j := -radius; j <= radius; j++ {
			w = append(w, v[reflectIndex(i+j, n)])
		}
		out[i] = medianWindow(w)
	}
	return out
}

// medianFilter2D applies a wr-by-wc running median over g with
// reflected boundaries.
func medianFilter2D(g *grid.Grid, wr, wc int) *grid.Grid {
	out := grid.New(g.Rows, g.Cols)
	rr, rc := wr/2, wc/2
	w := make([]float64, 0, wr*wc)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			w = w[:0]
			for di := -rr; di <= rr; di++ {
				for dj := -rc; dj <= rc; dj++ {
					w = append(w, g.At(reflectIndex(i+di, g.Rows), reflectIndex(j+dj, g.Cols)))
				}
			}
			out.Set(i, j, medianWindow(w))
		}
	}
	return out
}

// mapRows applies fn to each row of g, writing the result into a new
// grid of the same shape.  fn receives the row of g and the matching
// row of each extra grid.
func mapRows(g *grid.Grid, fn func(row []float64) []float64) *grid.Grid {
	out := grid.New(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		copy(out.Row(i), fn(append([]float64(nil), g.Row(i)...)))
	}
	return out
}

// mapCols applies fn to each column of g.
func mapCols(g *grid.Grid, fn func(col []float64) []float64) *grid.Grid {
	out := grid.New(g.Rows, g.Cols)
	for j := 0; j < g.Cols; j++ {
		out.SetCol(j, fn(g.Col(j)))
	}
	return out
}

// axisGradient differentiates a coordinate grid along one of its own
// axes with unit spacing, yielding the local step size per element.
func axisGradient(g *grid.Grid, axis int) *grid.Grid {
	if axis == 0 {
		return mapCols(g, gradientUnit)
	}
	return mapRows(g, gradientUnit)
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// sortPairs sorts x ascending and reorders y alongside it, stably.
func sortPairs(x, y []float64) ([]float64, []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	sx := make([]float64, len(x))
	sy := make([]float64, len(y))
	for i, j := range idx {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

// nearestIndex returns the index of the value in v closest to target.
func nearestIndex(v []float64, target float64) int {
	best, bestd := 0, math.Inf(1)
	for i, x := range v {
		if d := math.Abs(x - target); d < bestd {
			best, bestd = i, d
		}
	}
	return best
}
