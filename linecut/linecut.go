// Package linecut extracts 1D traces from processed 2D grids:
// axis-aligned cuts at a row or column index, diagonal cuts between two
// points in data coordinates, and circular cuts around a center.
package linecut

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/inspectra/gadget/grid"
)

// ErrNot2D is returned when a cut is requested on 1D data.
var ErrNot2D = errors.New("linecut: requires a two-dimensional dataset")

// IndexError reports an axis-aligned cut outside the grid.
type IndexError struct {
	Orientation string
	Index       int
	Limit       int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("linecut: %s index %d outside [0, %d)", e.Orientation, e.Index, e.Limit)
}

// Trace is one extracted linecut.  Cut holds the fixed coordinate for
// axis-aligned cuts and is zero otherwise.
type Trace struct {
	X   []float64
	Y   []float64
	Cut float64
}

// Horizontal extracts the trace at column index: x runs along the
// sweep coordinate, the cut value is the fixed Y coordinate.
func Horizontal(t grid.Tuple, index int) (Trace, error) {
	if !t.Is2D() {
		return Trace{}, ErrNot2D
	}
	z := t.Z()
	if index < 0 || index >= z.Cols {
		return Trace{}, &IndexError{Orientation: "horizontal", Index: index, Limit: z.Cols}
	}
	return Trace{
		X:   t[0].Col(index),
		Y:   z.Col(index),
		Cut: t[1].At(0, index),
	}, nil
}

// Vertical extracts the trace at row index: x runs along the step
// coordinate, the cut value is the fixed X coordinate.
func Vertical(t grid.Tuple, index int) (Trace, error) {
	if !t.Is2D() {
		return Trace{}, ErrNot2D
	}
	z := t.Z()
	if index < 0 || index >= z.Rows {
		return Trace{}, &IndexError{Orientation: "vertical", Index: index, Limit: z.Rows}
	}
	return Trace{
		X:   append([]float64(nil), t[1].Row(index)...),
		Y:   append([]float64(nil), z.Row(index)...),
		Cut: t[0].At(index, 0),
	}, nil
}

// XAxis selects the abscissa of a diagonal trace.
type XAxis int

const (
	XAxisX XAxis = iota
	XAxisY
	XAxisDistance
)

// fracIndex maps a data coordinate onto a fractional array index given
// the coordinate extent along that axis.
func fracIndex(v, lo, hi float64, n int) float64 {
	if hi == lo {
		return 0
	}
	return float64(n-1) * (v - lo) / (hi - lo)
}

// Diagonal samples the value grid along the straight line between
// (x0, y0) and (x1, y1) in data coordinates, one sample per unit of
// index distance, with bilinear blending between grid elements.
// Coincident endpoints yield a single sample.
func Diagonal(t grid.Tuple, x0, y0, x1, y1 float64, axis XAxis) (Trace, error) {
	if !t.Is2D() {
		return Trace{}, ErrNot2D
	}
	x, y, z := t[0], t[1], t[2]
	// true extrema, not corner samples: a flipped or sorted grid keeps
	// the mapping honest
	xlo, xhi := floats.Min(x.Data), floats.Max(x.Data)
	ylo, yhi := floats.Min(y.Data), floats.Max(y.Data)
	i0 := fracIndex(x0, xlo, xhi, z.Rows)
	j0 := fracIndex(y0, ylo, yhi, z.Cols)
	i1 := fracIndex(x1, xlo, xhi, z.Rows)
	j1 := fracIndex(y1, ylo, yhi, z.Cols)
	n := int(math.Hypot(i1-i0, j1-j0))
	if n < 1 {
		n = 1
	}
	tr := Trace{X: make([]float64, n), Y: make([]float64, n)}
	for k := 0; k < n; k++ {
		f := 0.0
		if n > 1 {
			f = float64(k) / float64(n-1)
		}
		fi := i0 + f*(i1-i0)
		fj := j0 + f*(j1-j0)
		tr.Y[k] = z.Bilinear(fi, fj)
		switch axis {
		case XAxisX:
			tr.X[k] = x.Bilinear(fi, fj)
		case XAxisY:
			tr.X[k] = y.Bilinear(fi, fj)
		case XAxisDistance:
			dx := x.Bilinear(fi, fj) - x0
			dy := y.Bilinear(fi, fj) - y0
			tr.X[k] = math.Hypot(dx, dy)
		}
	}
	return tr, nil
}

// Circular samples the value grid around the ellipse centered at
// (cx, cy) with data-coordinate radii (rx, ry).  The abscissa is the
// angle in radians, running a full turn counterclockwise from the
// positive x direction.
func Circular(t grid.Tuple, cx, cy, rx, ry float64) (Trace, error) {
	if !t.Is2D() {
		return Trace{}, ErrNot2D
	}
	x, y, z := t[0], t[1], t[2]
	xlo, xhi := floats.Min(x.Data), floats.Max(x.Data)
	ylo, yhi := floats.Min(y.Data), floats.Max(y.Data)
	ci := fracIndex(cx, xlo, xhi, z.Rows)
	cj := fracIndex(cy, ylo, yhi, z.Cols)
	ri := fracIndex(cx+rx, xlo, xhi, z.Rows) - ci
	rj := fracIndex(cy+ry, ylo, yhi, z.Cols) - cj
	n := int(8 * math.Hypot(ri, rj))
	if n < 8 {
		n = 8
	}
	tr := Trace{X: make([]float64, n), Y: make([]float64, n)}
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n-1)
		tr.X[k] = theta
		tr.Y[k] = z.Bilinear(ci+ri*math.Cos(theta), cj+rj*math.Sin(theta))
	}
	return tr, nil
}

// Request names one axis-aligned cut in a batch.
type Request struct {
	Vertical bool
	Index    int
}

// Batch extracts several axis-aligned cuts at once.  Out-of-range
// requests are skipped and reported; the remaining traces are still
// returned, index-aligned with the requests that succeeded.
func Batch(t grid.Tuple, reqs []Request) ([]Trace, []error) {
	var traces []Trace
	var errs []error
	for _, r := range reqs {
		var tr Trace
		var err error
		if r.Vertical {
			tr, err = Vertical(t, r.Index)
		} else {
			tr, err = Horizontal(t, r.Index)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		traces = append(traces, tr)
	}
	return traces, errs
}
