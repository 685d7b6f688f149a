package grid

import (
	"sort"
)

// Kind discriminates structured data errors.
type Kind int

// The error kinds surfaced by shape inference.
const (
	EmptyOrMalformed Kind = iota
	InsufficientColumns
)

func (k Kind) String() string {
	switch k {
	case EmptyOrMalformed:
		return "empty or malformed"
	case InsufficientColumns:
		return "insufficient columns"
	}
	return "unknown"
}

// DataError is a structured error from shape inference.
type DataError struct {
	Kind   Kind
	Detail string
}

func (e *DataError) Error() string {
	return "grid: " + e.Kind.String() + ": " + e.Detail
}

// Inference is the outcome of sweep-shape inference on a column set.
type Inference struct {
	// Rows and Cols are the inferred grid shape.
	Rows, Cols int

	// Sel holds the (possibly shifted) column selection.
	Sel []int

	// OneD is set when the data is a 1D trace rather than a swept grid.
	OneD bool

	// Degenerate is set when fewer than two sweeps completed and the
	// duplicate-row policy applies.
	Degenerate bool

	// Boundary is set when not even the first sweep step completed, so
	// the duplicated rows take value-1/value+1 boundary placeholders.
	Boundary bool

	// placeholders for the sweep column in the degenerate case
	lo, hi float64
}

// uniqueFirstSeen returns the sorted unique values of v and, aligned
// with them, the index at which each first occurs.
func uniqueFirstSeen(v []float64) (vals []float64, first []int) {
	seen := make(map[float64]int)
	for i, x := range v {
		if _, ok := seen[x]; !ok {
			seen[x] = i
		}
	}
	vals = make([]float64, 0, len(seen))
	for x := range seen {
		vals = append(vals, x)
	}
	sort.Float64s(vals)
	first = make([]int, len(vals))
	for i, x := range vals {
		first[i] = seen[x]
	}
	return vals, first
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reversed(a []int) []int {
	out := make([]int, len(a))
	for i, v := range a {
		out[len(a)-1-i] = v
	}
	return out
}

// Infer determines whether the selected columns of a flat table hold a
// 1D trace or a 2D swept grid, and for grids computes the shape.
//
// cols holds every source column in table order; sel indexes the chosen
// sweep (X), dependent (Y) and, for 2D, value (Z) columns.  sel[0] is
// the candidate outer sweep variable.  When the second selected column
// turns out to be swept in lockstep with the first, the selection is
// shifted right one column so an independent column becomes the value
// axis.
func Infer(cols [][]float64, sel []int) (Inference, error) {
	inf := Inference{Sel: append([]int(nil), sel...)}
	if len(cols) == 0 || len(cols[0]) == 0 {
		return inf, &DataError{Kind: EmptyOrMalformed, Detail: "no data"}
	}
	if len(sel) < 2 || len(cols) < 2 {
		return inf, &DataError{Kind: InsufficientColumns, Detail: "need at least 2 columns"}
	}
	for _, s := range sel {
		if s < 0 || s >= len(cols) {
			return inf, &DataError{Kind: InsufficientColumns, Detail: "selection out of range"}
		}
	}
	n := len(cols[0])
	for _, c := range cols {
		if len(c) != n {
			return inf, &DataError{Kind: EmptyOrMalformed, Detail: "column lengths differ"}
		}
	}
	if n < 2 {
		// a single measured row cannot be shaped
		return inf, &DataError{Kind: EmptyOrMalformed, Detail: "single row"}
	}

	sweep := cols[sel[0]]
	uvals, ufirst := uniqueFirstSeen(sweep)
	seenOrder := append([]int(nil), ufirst...)
	sort.Ints(seenOrder)

	if len(uvals) == 1 {
		// the first sweep step never completed; duplicate it with
		// boundary placeholder values so a 2-row grid still renders
		inf.Rows, inf.Cols = 1, n
		inf.Degenerate = true
		inf.Boundary = true
		inf.lo, inf.hi = uvals[0]-1, uvals[0]+1
		return inf, nil
	}

	stride := seenOrder[1]
	rows := len(uvals)
	// an in-progress sweep leaves a final, short row: drop it
	if n-seenOrder[len(seenOrder)-1] < stride {
		rows--
	}

	if rows <= 1 {
		// exactly one completed sweep: duplicate it, stepping the sweep
		// column to the first two values actually observed
		inf.Rows, inf.Cols = 1, stride
		inf.Degenerate = true
		inf.lo, inf.hi = uvals[0], uvals[1]
		return inf, nil
	}

	// lockstep detection: a second column swept simultaneously with the
	// first must not be mistaken for the value axis
	_, nfirst := uniqueFirstSeen(cols[sel[1]])
	second := cols[sel[1]]
	if (intsEqual(ufirst, nfirst) || intsEqual(ufirst, reversed(nfirst))) &&
		second[1] == second[0] {
		inf.Sel[1]++
		if len(inf.Sel) > 2 && inf.Sel[1] == inf.Sel[2] {
			inf.Sel[2]++
		}
		for _, s := range inf.Sel {
			if s >= len(cols) {
				return inf, &DataError{Kind: InsufficientColumns, Detail: "lockstep sweep exhausted columns"}
			}
		}
	}

	// a sweep column whose first two values differ is a 1D trace; so is
	// a two-column selection.  The full selection survives so callers
	// can still pick the dependent column out of it.
	if sweep[1] != sweep[0] || len(inf.Sel) == 2 {
		inf.OneD = true
		return inf, nil
	}

	inf.Rows, inf.Cols = rows, stride
	return inf, nil
}

// Set is the product of reshaping: one Grid per source column, all
// sharing a shape and a canonical ascending orientation.
type Set struct {
	Arrays []*Grid
	Sel    []int

	// FlippedRows / FlippedCols record the canonicalization applied, so
	// later-added channels can be co-registered via ShapeSingle.
	FlippedRows, FlippedCols bool
}

// Reshape reinterprets every source column row-major into the inferred
// shape, truncating a trailing partial sweep, then flips rows and/or
// columns so both axes ascend.
//
// Reshaping an already-ascending grid performs no flip and returns the
// data bit-identical.
func Reshape(cols [][]float64, inf Inference) (*Set, error) {
	set := &Set{Sel: inf.Sel}

	if inf.Degenerate {
		// duplicate the first row so a partial sweep still renders
		for ci := range cols {
			g := New(2, inf.Cols)
			copy(g.Row(0), cols[ci][:inf.Cols])
			copy(g.Row(1), cols[ci][:inf.Cols])
			set.Arrays = append(set.Arrays, g)
		}
		x := set.Arrays[inf.Sel[0]]
		for j := 0; j < x.Cols; j++ {
			x.Set(0, j, inf.lo)
			x.Set(1, j, inf.hi)
		}
		return set, nil
	}

	if inf.OneD {
		for ci := range cols {
			set.Arrays = append(set.Arrays, NewVector(append([]float64(nil), cols[ci]...)))
		}
		return set, nil
	}

	want := inf.Rows * inf.Cols
	for ci := range cols {
		if len(cols[ci]) < want {
			return nil, &DataError{Kind: EmptyOrMalformed, Detail: "column shorter than inferred shape"}
		}
		g := &Grid{Rows: inf.Rows, Cols: inf.Cols, Data: append([]float64(nil), cols[ci][:want]...)}
		set.Arrays = append(set.Arrays, g)
	}

	x := set.Arrays[inf.Sel[0]]
	if x.Rows > 1 && x.At(1, 0) < x.At(0, 0) {
		for i, g := range set.Arrays {
			set.Arrays[i] = g.FlipRows()
		}
		set.FlippedRows = true
	}
	y := set.Arrays[inf.Sel[1]]
	if y.Cols > 1 && y.At(0, 0) > y.At(0, 1) {
		for i, g := range set.Arrays {
			set.Arrays[i] = g.FlipCols()
		}
		set.FlippedCols = true
	}
	return set, nil
}

// ShapeSingle reshapes a flat array to match a previously reshaped set,
// reapplying the same flips so the new array stays co-registered.
func (s *Set) ShapeSingle(v []float64) (*Grid, error) {
	if len(s.Arrays) == 0 {
		return nil, &DataError{Kind: EmptyOrMalformed, Detail: "no reference shape"}
	}
	ref := s.Arrays[0]
	if ref.IsVector() {
		return NewVector(append([]float64(nil), v...)), nil
	}
	want := ref.Rows * ref.Cols
	if len(v) < want {
		return nil, &DataError{Kind: EmptyOrMalformed, Detail: "array shorter than grid shape"}
	}
	g := &Grid{Rows: ref.Rows, Cols: ref.Cols, Data: append([]float64(nil), v[:want]...)}
	if s.FlippedRows {
		g = g.FlipRows()
	}
	if s.FlippedCols {
		g = g.FlipCols()
	}
	return g, nil
}

// Stack1D pairs two equal-length channels into a 1D tuple.  A length
// mismatch is a legitimate transient state while a caller reconfigures
// column selections, so it yields an all-zero 2x2 placeholder rather
// than an error; callers treat that as "not yet plottable".
func Stack1D(x, y []float64) Tuple {
	if len(x) != len(y) || len(x) == 0 {
		return Tuple{NewVector([]float64{0, 0}), NewVector([]float64{0, 0})}
	}
	return Tuple{
		NewVector(append([]float64(nil), x...)),
		NewVector(append([]float64(nil), y...)),
	}
}
