package dataset_test

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/linecut"
)

// sweepFile writes a 3x5 measurement: Vg steps 0..2, Vb sweeps 0..4
// per step, I = 10*Vg + Vb.
func sweepFile(t *testing.T) string {
	t.Helper()
	out := "# Vg (V)\tVb (mV)\tI (nA)\n"
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			out += fmt.Sprintf("%g\t%g\t%g\n", float64(i), float64(j), 10*float64(i)+float64(j))
		}
	}
	path := filepath.Join(t.TempDir(), "sweep.dat")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadInfersGridShape(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !d.Is2D() {
		t.Fatal("expected a 2D dataset")
	}
	raw := d.Raw()
	if raw[0].Rows != 3 || raw[0].Cols != 5 {
		t.Fatalf("shape = %dx%d, want 3x5", raw[0].Rows, raw[0].Cols)
	}
	x, y, z := d.Channels()
	if x != "Vg (V)" || y != "Vb (mV)" || z != "I (nA)" {
		t.Errorf("channel selection %q %q %q", x, y, z)
	}
}

func TestRefreshRunsPipeline(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	deriv, _ := filters.New("Derivative")
	deriv.Settings = [2]string{"0", "1"} // d/dVb
	d.Filters = filters.Pipeline{deriv}
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// I = 10 Vg + Vb, so dI/dVb = 1 everywhere
	for _, v := range d.Processed().Z().Data {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("dI/dVb = %v, want 1", v)
		}
	}
	// raw stays pristine
	if d.Raw().Z().At(2, 4) != 24 {
		t.Error("raw data was mutated by the pipeline")
	}
}

func TestRefreshKeepsOldDataOnSettingError(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := d.Processed().Z().At(1, 1)
	bad, _ := filters.New("Multiply")
	bad.Settings[0] = "banana"
	d.Filters = filters.Pipeline{bad}
	if err := d.Refresh(); err == nil {
		t.Fatal("expected a setting error")
	}
	if d.Processed().Z().At(1, 1) != before {
		t.Error("failed refresh must leave the previous processed data in place")
	}
}

func TestOperandGridCoRegistration(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g, ok := d.OperandGrid("Vb (mV)")
	if !ok {
		t.Fatal("known channel not resolved")
	}
	if g.Rows != 3 || g.Cols != 5 {
		t.Errorf("operand shape %dx%d, want 3x5", g.Rows, g.Cols)
	}
	if _, ok := d.OperandGrid("missing"); ok {
		t.Error("unknown channel should not resolve")
	}
}

func TestDivideByNamedChannel(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	div, _ := filters.New("Divide")
	div.Method = "Z"
	div.Settings[0] = "I (nA)"
	div.Enabled = true
	d.Filters = filters.Pipeline{div}
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// I/I = 1 except at the single zero sample
	if v := d.Processed().Z().At(1, 2); math.Abs(v-1) > 1e-9 {
		t.Errorf("I/I = %v, want 1", v)
	}
}

func TestFilterToColumn(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, _ := filters.New("Multiply")
	f.Method = "Z"
	f.Settings[0] = "2"
	if err := d.FilterToColumn(f, "I doubled"); err != nil {
		t.Fatalf("FilterToColumn: %v", err)
	}
	vals, ok := d.Table().Channel("I doubled")
	if !ok {
		t.Fatal("derived channel missing from table")
	}
	if len(vals) != 15 {
		t.Fatalf("derived channel has %d samples, want 15", len(vals))
	}
	// file order: first sample was I=0
	if vals[0] != 0 || vals[6] != 22 {
		t.Errorf("derived values out of file order: %v", vals[:7])
	}
	// the new channel works as an operand
	if _, ok := d.OperandGrid("I doubled"); !ok {
		t.Error("derived channel should resolve as an operand")
	}
}

func TestFilterToColumnRejectsShapeChange(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, _ := filters.New("Crop X")
	f.Method = "Abs"
	f.Settings = [2]string{"1", "2"}
	if err := d.FilterToColumn(f, "cropped"); err == nil {
		t.Error("a shape-changing filter must not become a channel")
	}
}

func TestSelectChannels1D(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.SelectChannels("Vb (mV)", "I (nA)", ""); err != nil {
		t.Fatalf("SelectChannels: %v", err)
	}
	if d.Is2D() {
		t.Fatal("expected a 1D trace")
	}
	if d.Raw()[0].Cols != 15 {
		t.Errorf("1D trace has %d samples, want 15", d.Raw()[0].Cols)
	}
	if err := d.SelectChannels("nope", "I (nA)", ""); err == nil {
		t.Error("unknown channel name should fail")
	}
}

func TestEndToEndScenario(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	deriv, _ := filters.New("Derivative")
	deriv.Settings = [2]string{"0", "1"}
	crop, _ := filters.New("Crop Y")
	crop.Method = "Abs"
	crop.Settings = [2]string{"1", "3"}
	crop.Enabled = true
	d.Filters = filters.Pipeline{deriv, crop}
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	z := d.Processed().Z()
	if z.Rows != 3 || z.Cols != 3 {
		t.Fatalf("processed shape %dx%d, want 3x3", z.Rows, z.Cols)
	}
	tr, err := d.Vertical(1)
	if err != nil {
		t.Fatalf("Vertical: %v", err)
	}
	if len(tr.Y) != 3 || math.Abs(tr.Y[0]-1) > 1e-9 {
		t.Errorf("linecut of the derivative wrong: %v", tr.Y)
	}
	if tr.Cut != 1 {
		t.Errorf("cut coordinate = %v, want Vg = 1", tr.Cut)
	}
}

func TestBatchLinecutsOnDataset(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	traces, errs := d.Linecuts([]linecut.Request{
		{Vertical: true, Index: 0},
		{Vertical: true, Index: 7},
	})
	if len(traces) != 1 || len(errs) != 1 {
		t.Fatalf("got %d traces, %d errors; want 1 and 1", len(traces), len(errs))
	}
}

func TestHistogram1D(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.SelectChannels("Vb (mV)", "I (nA)", ""); err != nil {
		t.Fatalf("SelectChannels: %v", err)
	}
	h, err := d.Histogram(5)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	var total float64
	for _, c := range h.Z().Row(0) {
		total += c
	}
	if total != 15 {
		t.Errorf("histogram counts sum to %v, want 15", total)
	}
}

func TestFFTShapes(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := d.FFT("Y")
	if err != nil {
		t.Fatalf("FFT: %v", err)
	}
	if out.Z().Rows != 3 || out.Z().Cols != 3 {
		t.Errorf("FFT along Y gave %dx%d, want 3x3", out.Z().Rows, out.Z().Cols)
	}
	if out[1].At(0, 0) != 0 {
		t.Errorf("frequency axis should start at zero")
	}
	if _, err := d.FFT("Q"); err == nil {
		t.Error("bad axis should fail")
	}
}

func TestValueStats(t *testing.T) {
	d, err := dataset.Load(sweepFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := d.ValueStats()
	if s.N != 15 || s.Min != 0 || s.Max != 24 || s.PeakToPeak != 24 {
		t.Errorf("stats = %+v", s)
	}
	if math.Abs(s.Mean-12) > 1e-9 {
		t.Errorf("mean = %v, want 12", s.Mean)
	}
}

func TestLoadThreeColumnTrace(t *testing.T) {
	// first column changes every row: a plain 1D trace with an extra
	// measured channel
	out := "# Vg (V)\tI (nA)\tG (uS)\n"
	for i := 0; i < 10; i++ {
		out += fmt.Sprintf("%g\t%g\t%g\n", float64(i), 2*float64(i), 3*float64(i))
	}
	path := filepath.Join(t.TempDir(), "trace.dat")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	d, err := dataset.Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Is2D() {
		t.Fatal("expected a 1D trace")
	}
	x, y, _ := d.Channels()
	if x != "Vg (V)" || y != "G (uS)" {
		t.Errorf("channel selection %q %q", x, y)
	}
	raw := d.Raw()
	if raw[0].Cols != 10 || raw[1].At(0, 4) != 12 {
		t.Errorf("trace shape %d, y[4] = %v", raw[0].Cols, raw[1].At(0, 4))
	}
}
