// Package grid provides the dense row-major arrays used for sweep data,
// and the logic that reshapes flat measurement columns into 2D grids
// with consistent, ascending axes.
package grid

import (
	"fmt"
	"math"
)

// Grid is a dense row-major 2D array.  A 1D trace is represented as a
// Grid with a single row.
type Grid struct {
	Rows, Cols int
	Data       []float64
}

// New allocates a zeroed Grid with the given shape.
func New(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// NewVector wraps a flat array as a single-row Grid.  The slice is not
// copied; the caller gives up ownership.
func NewVector(v []float64) *Grid {
	return &Grid{Rows: 1, Cols: len(v), Data: v}
}

// FromRows builds a Grid from row slices, which must share one length.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid: no rows")
	}
	c := len(rows[0])
	g := New(len(rows), c)
	for i, r := range rows {
		if len(r) != c {
			return nil, fmt.Errorf("grid: ragged rows, %d != %d", len(r), c)
		}
		copy(g.Data[i*c:], r)
	}
	return g, nil
}

// IsVector reports whether g holds 1D data.
func (g *Grid) IsVector() bool { return g.Rows == 1 }

// NumElems returns the number of stored values.
func (g *Grid) NumElems() int { return g.Rows * g.Cols }

// At returns the value at row i, column j.
func (g *Grid) At(i, j int) float64 { return g.Data[i*g.Cols+j] }

// Set stores v at row i, column j.
func (g *Grid) Set(i, j int, v float64) { g.Data[i*g.Cols+j] = v }

// Row returns row i without copying.  Mutating the result mutates g.
func (g *Grid) Row(i int) []float64 { return g.Data[i*g.Cols : (i+1)*g.Cols] }

// Col returns a copy of column j.
func (g *Grid) Col(j int) []float64 {
	out := make([]float64, g.Rows)
	for i := 0; i < g.Rows; i++ {
		out[i] = g.Data[i*g.Cols+j]
	}
	return out
}

// SetCol overwrites column j.
func (g *Grid) SetCol(j int, v []float64) {
	for i := 0; i < g.Rows; i++ {
		g.Data[i*g.Cols+j] = v[i]
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	out := New(g.Rows, g.Cols)
	copy(out.Data, g.Data)
	return out
}

// Map returns a new Grid with f applied elementwise.
func (g *Grid) Map(f func(float64) float64) *Grid {
	out := New(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = f(v)
	}
	return out
}

// Zip returns a new Grid combining g and other elementwise.  The shapes
// must match.
func (g *Grid) Zip(other *Grid, f func(a, b float64) float64) (*Grid, error) {
	if g.Rows != other.Rows || g.Cols != other.Cols {
		return nil, fmt.Errorf("grid: shape mismatch (%d,%d) vs (%d,%d)",
			g.Rows, g.Cols, other.Rows, other.Cols)
	}
	out := New(g.Rows, g.Cols)
	for i := range g.Data {
		out.Data[i] = f(g.Data[i], other.Data[i])
	}
	return out, nil
}

// FlipRows returns a new Grid with the row order reversed (axis 0).
func (g *Grid) FlipRows() *Grid {
	out := New(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		copy(out.Row(i), g.Row(g.Rows-1-i))
	}
	return out
}

// FlipCols returns a new Grid with each row reversed (axis 1).
func (g *Grid) FlipCols() *Grid {
	out := New(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		src := g.Row(i)
		dst := out.Row(i)
		for j := 0; j < g.Cols; j++ {
			dst[j] = src[g.Cols-1-j]
		}
	}
	return out
}

// Transpose returns a new Grid with axes swapped.
func (g *Grid) Transpose() *Grid {
	out := New(g.Cols, g.Rows)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			out.Set(j, i, g.At(i, j))
		}
	}
	return out
}

// Min returns the smallest stored value, NaN for an empty grid.
func (g *Grid) Min() float64 {
	if len(g.Data) == 0 {
		return math.NaN()
	}
	m := g.Data[0]
	for _, v := range g.Data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest stored value, NaN for an empty grid.
func (g *Grid) Max() float64 {
	if len(g.Data) == 0 {
		return math.NaN()
	}
	m := g.Data[0]
	for _, v := range g.Data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean returns the average of the stored values.
func (g *Grid) Mean() float64 {
	if len(g.Data) == 0 {
		return math.NaN()
	}
	var s float64
	for _, v := range g.Data {
		s += v
	}
	return s / float64(len(g.Data))
}

// Bilinear samples the grid at fractional indices (fi, fj), blending
// the four surrounding elements.  Indices are clamped to the grid.
func (g *Grid) Bilinear(fi, fj float64) float64 {
	fi = clampFloat(fi, 0, float64(g.Rows-1))
	fj = clampFloat(fj, 0, float64(g.Cols-1))
	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	i1, j1 := i0, j0
	if i0 < g.Rows-1 {
		i1 = i0 + 1
	}
	if j0 < g.Cols-1 {
		j1 = j0 + 1
	}
	di := fi - float64(i0)
	dj := fj - float64(j0)
	top := g.At(i0, j0)*(1-dj) + g.At(i0, j1)*dj
	bot := g.At(i1, j0)*(1-dj) + g.At(i1, j1)*dj
	return top*(1-di) + bot*di
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Tuple is an ordered set of co-registered arrays: (X, Y) for a 1D
// trace, (X, Y, Z) for a 2D grid.  All members of a 3-tuple share one
// shape.
type Tuple []*Grid

// Is2D reports whether the tuple carries a value grid (three arrays).
func (t Tuple) Is2D() bool { return len(t) == 3 }

// Z returns the last array, which holds the dependent values.
func (t Tuple) Z() *Grid { return t[len(t)-1] }

// Clone deep-copies every member.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	for i, g := range t {
		out[i] = g.Clone()
	}
	return out
}
