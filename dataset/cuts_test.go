package dataset_test

import (
	"errors"
	"math"
	"testing"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/linecut"
)

func TestStoredCutWithOffset(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tr, err := d.ExtractCut(dataset.Cut{
		Orientation: dataset.CutVertical,
		Index:       1,
		Offset:      100,
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("ExtractCut: %v", err)
	}
	// row 1 of I is 10..14, shifted by the offset
	if tr.Y[0] != 110 || tr.Y[4] != 114 {
		t.Errorf("offset trace = %v", tr.Y)
	}
	if tr.Cut != 1 {
		t.Errorf("cut coordinate = %v, want Vg = 1", tr.Cut)
	}
}

func TestStoredCutNestedPipeline(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	mul, _ := filters.New("Multiply")
	mul.Method = "Y"
	mul.Settings[0] = "2"
	mul.Enabled = true
	tr, err := d.ExtractCut(dataset.Cut{
		Orientation: dataset.CutVertical,
		Index:       1,
		Enabled:     true,
		Filters:     filters.Pipeline{mul},
	})
	if err != nil {
		t.Fatalf("ExtractCut: %v", err)
	}
	if math.Abs(tr.Y[2]-24) > 1e-9 {
		t.Errorf("nested pipeline not applied: %v", tr.Y)
	}
	// the dataset's processed data is untouched
	if d.Processed().Z().At(1, 2) != 12 {
		t.Error("nested cut pipeline leaked into the dataset")
	}
}

func TestCutTracesSkipsStaleAndDisabled(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.AddCut(dataset.Cut{Orientation: dataset.CutVertical, Index: 0, Enabled: true})
	d.AddCut(dataset.Cut{Orientation: dataset.CutVertical, Index: 9, Enabled: true})
	d.AddCut(dataset.Cut{Orientation: dataset.CutHorizontal, Index: 2, Enabled: false})
	traces, errs := d.CutTraces()
	if len(traces) != 1 || len(errs) != 1 {
		t.Fatalf("got %d traces, %d errors; want 1 and 1", len(traces), len(errs))
	}
	var ie *linecut.IndexError
	if !errors.As(errs[0], &ie) || ie.Index != 9 {
		t.Errorf("stale cut not reported by index: %v", errs[0])
	}
}

func TestCutListManagement(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.AddCut(dataset.Cut{Orientation: dataset.CutHorizontal, Index: 0, Enabled: true, Color: "#ff0000"})
	d.AddCut(dataset.Cut{Orientation: dataset.CutHorizontal, Index: 1, Enabled: true})
	if err := d.RemoveCut(0); err != nil {
		t.Fatalf("RemoveCut: %v", err)
	}
	cuts := d.Cuts()
	if len(cuts) != 1 || cuts[0].Index != 1 {
		t.Errorf("cut list after removal: %+v", cuts)
	}
	if err := d.RemoveCut(5); err == nil {
		t.Error("removing a missing slot should fail")
	}
	if _, err := d.ExtractCut(dataset.Cut{Orientation: "spiral"}); err == nil {
		t.Error("unknown orientation should fail")
	}
}

func TestStoredDiagonalCut(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tr, err := d.ExtractCut(dataset.Cut{
		Orientation: dataset.CutDiagonal,
		Points:      [4]float64{0, 0, 2, 4},
		XAxis:       linecut.XAxisDistance,
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("ExtractCut: %v", err)
	}
	if tr.Y[0] != 0 {
		t.Errorf("diagonal start = %v, want 0", tr.Y[0])
	}
	if last := tr.Y[len(tr.Y)-1]; math.Abs(last-24) > 1e-9 {
		t.Errorf("diagonal end = %v, want 24", last)
	}
}
