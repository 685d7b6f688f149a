package dataset

import (
	"github.com/pkg/errors"

	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/grid"
	"github.com/inspectra/gadget/linecut"
)

// Cut orientations.
const (
	CutHorizontal = "horizontal"
	CutVertical   = "vertical"
	CutDiagonal   = "diagonal"
	CutCircular   = "circular"
)

// Cut is a stored linecut owned by a Dataset.  Axis-aligned cuts keep a
// row or column index; diagonal and circular cuts keep two points in
// data coordinates (endpoints, or center plus radii).  A cut may carry
// its own filter pipeline, applied to the extracted trace, and a
// vertical offset for waterfall displays.  Color is display metadata
// passed through untouched.
type Cut struct {
	Orientation string
	Index       int
	Points      [4]float64
	XAxis       linecut.XAxis
	Offset      float64
	Enabled     bool
	Color       string
	Filters     filters.Pipeline
}

// AddCut stores a cut on the dataset and returns its slot.
func (d *Dataset) AddCut(c Cut) int {
	d.cuts = append(d.cuts, c)
	return len(d.cuts) - 1
}

// RemoveCut drops the cut in the given slot.
func (d *Dataset) RemoveCut(i int) error {
	if i < 0 || i >= len(d.cuts) {
		return errors.Errorf("dataset: no cut in slot %d", i)
	}
	d.cuts = append(d.cuts[:i], d.cuts[i+1:]...)
	return nil
}

// Cuts returns a copy of the stored cut list.
func (d *Dataset) Cuts() []Cut {
	return append([]Cut(nil), d.cuts...)
}

// ExtractCut runs one cut against the current processed data: extract
// the trace, run the cut's own pipeline over it, then apply the offset.
// The stored record is bounds-checked against the processed shape on
// every call, so a reloaded dataset with a smaller grid reports the
// stale index instead of panicking.
func (d *Dataset) ExtractCut(c Cut) (linecut.Trace, error) {
	var tr linecut.Trace
	var err error
	switch c.Orientation {
	case CutHorizontal:
		tr, err = linecut.Horizontal(d.Processed(), c.Index)
	case CutVertical:
		tr, err = linecut.Vertical(d.Processed(), c.Index)
	case CutDiagonal:
		tr, err = linecut.Diagonal(d.Processed(), c.Points[0], c.Points[1], c.Points[2], c.Points[3], c.XAxis)
	case CutCircular:
		tr, err = linecut.Circular(d.Processed(), c.Points[0], c.Points[1], c.Points[2], c.Points[3])
	default:
		return linecut.Trace{}, errors.Errorf("dataset: unknown cut orientation %q", c.Orientation)
	}
	if err != nil {
		return linecut.Trace{}, err
	}
	if len(c.Filters) > 0 {
		t := grid.Tuple{
			grid.NewVector(append([]float64(nil), tr.X...)),
			grid.NewVector(append([]float64(nil), tr.Y...)),
		}
		out, err := c.Filters.Apply(t, d)
		if err != nil {
			return linecut.Trace{}, err
		}
		tr.X = out[0].Row(0)
		tr.Y = out[1].Row(0)
	}
	if c.Offset != 0 {
		y := append([]float64(nil), tr.Y...)
		for i := range y {
			y[i] += c.Offset
		}
		tr.Y = y
	}
	return tr, nil
}

// CutTraces extracts every enabled stored cut.  A cut that no longer
// fits the current shape is skipped and its error collected; the rest
// of the batch still runs.
func (d *Dataset) CutTraces() ([]linecut.Trace, []error) {
	var traces []linecut.Trace
	var errs []error
	for _, c := range d.cuts {
		if !c.Enabled {
			continue
		}
		tr, err := d.ExtractCut(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		traces = append(traces, tr)
	}
	return traces, errs
}
