// Package dataset ties the parsing, reshaping, filtering and linecut
// layers together behind one handle per measurement file.
package dataset

import (
	"math"

	"github.com/pkg/errors"

	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/grid"
	"github.com/inspectra/gadget/linecut"
	"github.com/inspectra/gadget/table"
)

// Dataset owns one parsed measurement table together with a channel
// selection, the reshaped raw arrays and a filter pipeline.  Raw data
// is loaded once and never mutated; every Refresh reruns the pipeline
// from the pristine arrays.
type Dataset struct {
	Label   string
	Filters filters.Pipeline

	tbl *table.Table
	sel [3]string // x, y, z channel names; z == "" means a 1D trace

	set       *grid.Set // nil for 1D data
	raw       grid.Tuple
	processed grid.Tuple

	cuts []Cut
}

// New wraps a parsed table with the default channel selection: the
// first two columns for a 1D trace, plus the last column as the value
// channel when three or more are present.
func New(tbl *table.Table, label string) (*Dataset, error) {
	d := &Dataset{Label: label, tbl: tbl}
	names := tbl.Names()
	if len(names) < 2 {
		return nil, &table.DataError{Kind: table.InsufficientColumns,
			Detail: "a dataset needs at least two channels"}
	}
	z := ""
	if len(names) > 2 {
		z = names[len(names)-1]
	}
	if err := d.SelectChannels(names[0], names[1], z); err != nil {
		return nil, err
	}
	return d, nil
}

// Load parses a delimited measurement file and wraps it.  delimiter ""
// means any whitespace.
func Load(path, delimiter string) (*Dataset, error) {
	tbl, err := table.ParseFile(path, delimiter)
	if err != nil {
		return nil, err
	}
	return New(tbl, path)
}

// Table exposes the underlying channel table.
func (d *Dataset) Table() *table.Table { return d.tbl }

// Channels returns the current x, y, z selection; z is empty for 1D.
func (d *Dataset) Channels() (x, y, z string) { return d.sel[0], d.sel[1], d.sel[2] }

// Is2D reports whether the current selection forms a swept grid.
func (d *Dataset) Is2D() bool { return d.sel[2] != "" }

// SelectChannels repoints the dataset at a new channel triple and
// re-infers the grid shape from scratch.  An empty z selects a 1D
// trace of y against x.
func (d *Dataset) SelectChannels(x, y, z string) error {
	idx := func(name string) (int, error) {
		for i, n := range d.tbl.Names() {
			if n == name {
				return i, nil
			}
		}
		return 0, errors.Errorf("dataset: no channel named %q", name)
	}
	xi, err := idx(x)
	if err != nil {
		return err
	}
	yi, err := idx(y)
	if err != nil {
		return err
	}
	if z == "" {
		xs, _ := d.tbl.Channel(x)
		ys, _ := d.tbl.Channel(y)
		d.sel = [3]string{x, y, ""}
		d.set = nil
		d.raw = grid.Stack1D(xs, ys)
		d.processed = nil
		return nil
	}
	zi, err := idx(z)
	if err != nil {
		return err
	}
	cols := d.tbl.Columns()
	inf, err := grid.Infer(cols, []int{xi, yi, zi})
	if err != nil {
		return err
	}
	set, err := grid.Reshape(cols, inf)
	if err != nil {
		return err
	}
	d.sel = [3]string{x, y, z}
	if inf.OneD {
		// the z channel carries the dependent data when the second
		// column never sweeps
		d.sel = [3]string{x, z, ""}
		d.set = nil
		xs := set.Arrays[inf.Sel[0]].Row(0)
		zs := set.Arrays[inf.Sel[2]].Row(0)
		d.raw = grid.Stack1D(xs, zs)
		d.processed = nil
		return nil
	}
	d.set = set
	d.raw = grid.Tuple{
		set.Arrays[set.Sel[0]],
		set.Arrays[set.Sel[1]],
		set.Arrays[set.Sel[2]],
	}
	d.processed = nil
	return nil
}

// Raw returns the reshaped, unfiltered arrays.  Callers must not
// modify them; filters always copy.
func (d *Dataset) Raw() grid.Tuple { return d.raw }

// Processed returns the output of the last Refresh, or the raw arrays
// when the pipeline has not run yet.
func (d *Dataset) Processed() grid.Tuple {
	if d.processed == nil {
		return d.raw
	}
	return d.processed
}

// Refresh reruns the whole pipeline over the raw arrays.  On a filter
// setting error the previous processed data is kept.
func (d *Dataset) Refresh() error {
	out, err := d.Filters.Apply(d.raw, d)
	if err != nil {
		return err
	}
	d.processed = out
	return nil
}

// OperandGrid resolves a channel name to an array co-registered with
// the current shape, for filters that combine with a named channel.
func (d *Dataset) OperandGrid(name string) (*grid.Grid, bool) {
	values, ok := d.tbl.Channel(name)
	if !ok {
		return nil, false
	}
	if d.set != nil {
		g, err := d.set.ShapeSingle(values)
		if err != nil {
			return nil, false
		}
		return g, true
	}
	if len(d.raw) == 0 || len(values) != d.raw[0].Cols {
		return nil, false
	}
	return grid.NewVector(append([]float64(nil), values...)), true
}

// FilterToColumn applies a single filter to the processed data and
// stores the resulting value array as a new derived channel, flattened
// back into file order.  The filter must preserve the grid shape.
func (d *Dataset) FilterToColumn(f filters.Filter, name string) error {
	f.Enabled = true
	out, err := filters.Pipeline{f}.Apply(d.Processed(), d)
	if err != nil {
		return err
	}
	z := out.Z()
	ref := d.raw.Z()
	if z.Rows != ref.Rows || z.Cols != ref.Cols {
		return errors.Errorf("dataset: filter %s changed the grid shape, cannot store as channel", f.Name)
	}
	flat := d.unshape(z)
	// pad to the table's row count; a truncated partial sweep leaves
	// trailing rows without a value
	for len(flat) < d.tbl.Rows() {
		flat = append(flat, math.NaN())
	}
	return d.tbl.AppendDerived(name, flat)
}

// unshape undoes the canonicalization flips and flattens row-major,
// restoring the original file order of the samples.
func (d *Dataset) unshape(g *grid.Grid) []float64 {
	if d.set != nil {
		if d.set.FlippedRows {
			g = g.FlipRows()
		}
		if d.set.FlippedCols {
			g = g.FlipCols()
		}
	}
	return append([]float64(nil), g.Data...)
}

// Horizontal extracts a linecut at a fixed step-axis index from the
// processed data.
func (d *Dataset) Horizontal(index int) (linecut.Trace, error) {
	return linecut.Horizontal(d.Processed(), index)
}

// Vertical extracts a linecut at a fixed sweep-axis index.
func (d *Dataset) Vertical(index int) (linecut.Trace, error) {
	return linecut.Vertical(d.Processed(), index)
}

// Diagonal extracts a trace between two points in data coordinates.
func (d *Dataset) Diagonal(x0, y0, x1, y1 float64, axis linecut.XAxis) (linecut.Trace, error) {
	return linecut.Diagonal(d.Processed(), x0, y0, x1, y1, axis)
}

// Circular extracts a trace around an ellipse in data coordinates.
func (d *Dataset) Circular(cx, cy, rx, ry float64) (linecut.Trace, error) {
	return linecut.Circular(d.Processed(), cx, cy, rx, ry)
}

// Linecuts extracts a batch of axis-aligned cuts, skipping and
// reporting the out-of-range ones.
func (d *Dataset) Linecuts(reqs []linecut.Request) ([]linecut.Trace, []error) {
	return linecut.Batch(d.Processed(), reqs)
}
