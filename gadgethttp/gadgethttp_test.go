package gadgethttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/gadgethttp"
)

func newTestServer(t *testing.T) (*gadgethttp.Server, *httptest.Server) {
	t.Helper()
	out := "# Vg (V)\tVb (mV)\tI (nA)\n"
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			out += fmt.Sprintf("%d\t%d\t%d\n", i, j, 10*i+j)
		}
	}
	path := filepath.Join(t.TempDir(), "sweep.dat")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := dataset.Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := gadgethttp.NewServer()
	s.Add("sweep", d)
	r := chi.NewRouter()
	s.RT().Bind(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListDatasetsAndShape(t *testing.T) {
	_, ts := newTestServer(t)
	var labels []string
	getJSON(t, ts.URL+"/datasets", &labels)
	if len(labels) != 1 || labels[0] != "sweep" {
		t.Fatalf("labels = %v", labels)
	}
	var shape struct {
		Rows, Cols int
		Is2D       bool
	}
	getJSON(t, ts.URL+"/datasets/sweep/shape", &shape)
	if shape.Rows != 3 || shape.Cols != 4 || !shape.Is2D {
		t.Errorf("shape = %+v", shape)
	}
}

func TestUnknownDatasetIs404(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/datasets/nope/shape")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSetFiltersAndProcessed(t *testing.T) {
	_, ts := newTestServer(t)
	mul, _ := filters.New("Multiply")
	mul.Method = "Z"
	mul.Settings[0] = "2"
	resp := postJSON(t, ts.URL+"/datasets/sweep/filters", filters.Pipeline{mul}.Descriptors())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set filters: status %d", resp.StatusCode)
	}
	var payload struct {
		Rows, Cols int
		Arrays     [][]float64
	}
	getJSON(t, ts.URL+"/datasets/sweep/processed", &payload)
	if len(payload.Arrays) != 3 {
		t.Fatalf("expected 3 arrays, got %d", len(payload.Arrays))
	}
	// last sample was I = 23, doubled
	z := payload.Arrays[2]
	if z[len(z)-1] != 46 {
		t.Errorf("processed value %v, want 46", z[len(z)-1])
	}
}

func TestSetFiltersRejectsBadPipeline(t *testing.T) {
	_, ts := newTestServer(t)
	bad := []filters.Descriptor{{Name: "Sharpenate", Checkstate: 2}}
	resp := postJSON(t, ts.URL+"/datasets/sweep/filters", bad)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	// settings that fail at apply time also roll back
	mul, _ := filters.New("Multiply")
	mul.Settings[0] = "banana"
	resp = postJSON(t, ts.URL+"/datasets/sweep/filters", filters.Pipeline{mul}.Descriptors())
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	var ds []filters.Descriptor
	getJSON(t, ts.URL+"/datasets/sweep/filters", &ds)
	if len(ds) != 0 {
		t.Errorf("failed pipeline should not stick, got %d filters", len(ds))
	}
}

func TestLinecutsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	reqs := []map[string]interface{}{
		{"Vertical": true, "Index": 1},
		{"Vertical": true, "Index": 42},
	}
	resp := postJSON(t, ts.URL+"/datasets/sweep/linecuts", reqs)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		Traces []struct{ X, Y []float64 }
		Errors []string
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Traces) != 1 || len(out.Errors) != 1 {
		t.Fatalf("traces %d errors %d, want 1 and 1", len(out.Traces), len(out.Errors))
	}
	if out.Traces[0].Y[0] != 10 {
		t.Errorf("trace starts at %v, want 10", out.Traces[0].Y[0])
	}
}

func TestChannelsRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)
	var ch struct {
		X, Y, Z   string
		Available []string
	}
	getJSON(t, ts.URL+"/datasets/sweep/channels", &ch)
	if ch.Z != "I (nA)" || len(ch.Available) != 3 {
		t.Fatalf("channels = %+v", ch)
	}
	resp := postJSON(t, ts.URL+"/datasets/sweep/channels",
		map[string]string{"x": "Vb (mV)", "y": "I (nA)"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set channels: status %d", resp.StatusCode)
	}
	var shape struct{ Is2D bool }
	getJSON(t, ts.URL+"/datasets/sweep/shape", &shape)
	if shape.Is2D {
		t.Error("dropping z should yield a 1D trace")
	}
}

func TestTransformsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	var out struct {
		OneD []struct{ Name string } `json:"1d"`
		TwoD []struct{ Name string } `json:"2d"`
	}
	getJSON(t, ts.URL+"/transforms", &out)
	if len(out.TwoD) <= len(out.OneD) {
		t.Errorf("2D offering (%d) should be larger than 1D (%d)", len(out.TwoD), len(out.OneD))
	}
}

func TestDropDataset(t *testing.T) {
	_, ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/datasets/sweep", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var labels []string
	getJSON(t, ts.URL+"/datasets", &labels)
	if len(labels) != 0 {
		t.Errorf("dataset not dropped: %v", labels)
	}
}

func TestFitsDownload(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/datasets/sweep/fits")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SIMPLE")) {
		t.Errorf("body does not look like FITS: %q", buf.Bytes()[:16])
	}
}
