package dataset

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pkg/errors"

	"github.com/inspectra/gadget/grid"
)

// Histogram rebins the processed values.  For a 1D trace the result is
// bin centers against counts; for a grid every sweep is binned
// independently, so the step axis survives and the sweep axis becomes
// the bin-center axis.
func (d *Dataset) Histogram(bins int) (grid.Tuple, error) {
	if bins < 1 {
		return nil, errors.Errorf("dataset: histogram needs at least one bin, got %d", bins)
	}
	t := d.Processed()
	if !t.Is2D() {
		centers, counts := histogram(t.Z().Row(0), bins)
		return grid.Tuple{grid.NewVector(centers), grid.NewVector(counts)}, nil
	}
	x, z := t[0], t[2]
	ox := grid.New(z.Rows, bins)
	oy := grid.New(z.Rows, bins)
	oz := grid.New(z.Rows, bins)
	for i := 0; i < z.Rows; i++ {
		centers, counts := histogram(z.Row(i), bins)
		for j := 0; j < bins; j++ {
			ox.Set(i, j, x.At(i, 0))
			oy.Set(i, j, centers[j])
			oz.Set(i, j, counts[j])
		}
	}
	return grid.Tuple{ox, oy, oz}, nil
}

// histogram bins v over its own range, returning bin centers and
// counts.  A constant input puts everything in one middle bin.
func histogram(v []float64, bins int) (centers, counts []float64) {
	lo := floats.Min(v)
	hi := floats.Max(v)
	if lo == hi {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// the top divider must catch the maximum itself
	dividers[bins] = math.Nextafter(dividers[bins], math.Inf(1))
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	counts = stat.Histogram(nil, dividers, sorted, nil)
	centers = make([]float64, bins)
	for i := range centers {
		centers[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return centers, counts
}

// FFT replaces the processed values with the magnitude of their
// discrete Fourier transform along the chosen axis ("X" or "Y"; a 1D
// trace always transforms along its only axis).  The transformed
// coordinate becomes frequency in cycles per coordinate unit, assuming
// uniform spacing.
func (d *Dataset) FFT(axis string) (grid.Tuple, error) {
	t := d.Processed()
	if !t.Is2D() {
		x := t[0].Row(0)
		mag, freqs := realFFT(t.Z().Row(0), spacing(x))
		return grid.Tuple{grid.NewVector(freqs), grid.NewVector(mag)}, nil
	}
	x, y, z := t[0], t[1], t[2]
	switch axis {
	case "Y":
		n := z.Cols
		nc := n/2 + 1
		ox := grid.New(z.Rows, nc)
		oy := grid.New(z.Rows, nc)
		oz := grid.New(z.Rows, nc)
		for i := 0; i < z.Rows; i++ {
			mag, freqs := realFFT(z.Row(i), spacing(y.Row(i)))
			for k := 0; k < nc; k++ {
				ox.Set(i, k, x.At(i, 0))
				oy.Set(i, k, freqs[k])
				oz.Set(i, k, mag[k])
			}
		}
		return grid.Tuple{ox, oy, oz}, nil
	case "X":
		n := z.Rows
		nc := n/2 + 1
		ox := grid.New(nc, z.Cols)
		oy := grid.New(nc, z.Cols)
		oz := grid.New(nc, z.Cols)
		for j := 0; j < z.Cols; j++ {
			mag, freqs := realFFT(z.Col(j), spacing(x.Col(j)))
			for k := 0; k < nc; k++ {
				ox.Set(k, j, freqs[k])
				oy.Set(k, j, y.At(0, j))
				oz.Set(k, j, mag[k])
			}
		}
		return grid.Tuple{ox, oy, oz}, nil
	}
	return nil, errors.Errorf("dataset: FFT axis must be X or Y, got %q", axis)
}

// spacing estimates the uniform step of a coordinate vector.
func spacing(v []float64) float64 {
	if len(v) < 2 {
		return 1
	}
	dx := (v[len(v)-1] - v[0]) / float64(len(v)-1)
	if dx == 0 {
		return 1
	}
	return dx
}

// realFFT returns coefficient magnitudes and the matching frequency
// axis for a real sequence with sample spacing dx.
func realFFT(v []float64, dx float64) (mag, freqs []float64) {
	n := len(v)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, v)
	mag = make([]float64, len(coeffs))
	freqs = make([]float64, len(coeffs))
	for k, c := range coeffs {
		mag[k] = cmplx.Abs(c)
		freqs[k] = float64(k) / (float64(n) * math.Abs(dx))
	}
	return mag, freqs
}
