// Package gadgethttp wraps a collection of datasets in an HTTP
// interface, so acquisition machines can expose their measurement
// files to analysis clients over the network.
package gadgethttp

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/export"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/grid"
	"github.com/inspectra/gadget/linecut"
)

// MethodPath is a route table key.
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method/path pairs to handlers.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route to a chi router.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// ListEndpoints lists the bound paths, sorted.
func (rt RouteTable) ListEndpoints() []string {
	out := make([]string, 0, len(rt))
	for mp := range rt {
		out = append(out, mp.Method+" "+mp.Path)
	}
	sort.Strings(out)
	return out
}

// HTTPer is anything that can report its route table.
type HTTPer interface {
	RT() RouteTable
}

// Server owns a labelled set of datasets behind one route table.
type Server struct {
	RouteTable RouteTable

	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
}

// NewServer returns a Server with all dataset routes populated.
func NewServer() *Server {
	s := &Server{datasets: make(map[string]*dataset.Dataset)}
	rt := RouteTable{
		{http.MethodGet, "/transforms"}:                    s.ListTransforms,
		{http.MethodGet, "/datasets"}:                      s.ListDatasets,
		{http.MethodPost, "/datasets"}:                     s.LoadDataset,
		{http.MethodDelete, "/datasets/{label}"}:           s.DropDataset,
		{http.MethodGet, "/datasets/{label}/shape"}:        s.Shape,
		{http.MethodGet, "/datasets/{label}/channels"}:     s.GetChannels,
		{http.MethodPost, "/datasets/{label}/channels"}:    s.SetChannels,
		{http.MethodGet, "/datasets/{label}/filters"}:      s.GetFilters,
		{http.MethodPost, "/datasets/{label}/filters"}:     s.SetFilters,
		{http.MethodGet, "/datasets/{label}/processed"}:    s.Processed,
		{http.MethodGet, "/datasets/{label}/stats"}:        s.Stats,
		{http.MethodPost, "/datasets/{label}/linecuts"}:    s.Linecuts,
		{http.MethodPost, "/datasets/{label}/tocolumn"}:    s.FilterToColumn,
		{http.MethodGet, "/datasets/{label}/fits"}:         s.Fits,
	}
	s.RouteTable = rt
	return s
}

// RT satisfies the HTTPer interface.
func (s *Server) RT() RouteTable { return s.RouteTable }

// Add registers an already-loaded dataset under a label.
func (s *Server) Add(label string, d *dataset.Dataset) {
	s.mu.Lock()
	s.datasets[label] = d
	s.mu.Unlock()
}

func (s *Server) get(label string) (*dataset.Dataset, bool) {
	s.mu.RLock()
	d, ok := s.datasets[label]
	s.mu.RUnlock()
	return d, ok
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	label := chi.URLParam(r, "label")
	d, ok := s.get(label)
	if !ok {
		http.Error(w, "no dataset named "+label, http.StatusNotFound)
		return nil, false
	}
	return d, true
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListTransforms reports the transform registry: every name with its
// method list, split by data arity.
func (s *Server) ListTransforms(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name    string   `json:"name"`
		Methods []string `json:"methods"`
	}
	out := struct {
		OneD []entry `json:"1d"`
		TwoD []entry `json:"2d"`
	}{}
	for _, name := range filters.Offered(false) {
		m, _ := filters.Methods(name)
		out.OneD = append(out.OneD, entry{Name: name, Methods: m})
	}
	for _, name := range filters.Offered(true) {
		m, _ := filters.Methods(name)
		out.TwoD = append(out.TwoD, entry{Name: name, Methods: m})
	}
	respondJSON(w, out)
}

// ListDatasets reports the loaded labels, sorted.
func (s *Server) ListDatasets(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	labels := make([]string, 0, len(s.datasets))
	for l := range s.datasets {
		labels = append(labels, l)
	}
	s.mu.RUnlock()
	sort.Strings(labels)
	respondJSON(w, labels)
}

// LoadDataset parses {"label": ..., "path": ..., "delimiter": ...} and
// loads the file from the server's filesystem.
func (s *Server) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label     string `json:"label"`
		Path      string `json:"path"`
		Delimiter string `json:"delimiter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Label == "" {
		req.Label = req.Path
	}
	d, err := dataset.Load(req.Path, req.Delimiter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.Add(req.Label, d)
	w.WriteHeader(http.StatusCreated)
}

// DropDataset forgets a label.
func (s *Server) DropDataset(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	s.mu.Lock()
	_, ok := s.datasets[label]
	delete(s.datasets, label)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "no dataset named "+label, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Shape reports the processed array shape and arity.
func (s *Server) Shape(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	ref := d.Processed()[0]
	respondJSON(w, struct {
		Rows int  `json:"rows"`
		Cols int  `json:"cols"`
		Is2D bool `json:"is2d"`
	}{ref.Rows, ref.Cols, d.Is2D()})
}

type channelsPayload struct {
	X         string   `json:"x"`
	Y         string   `json:"y"`
	Z         string   `json:"z,omitempty"`
	Available []string `json:"available,omitempty"`
}

// GetChannels reports the current selection and every channel name.
func (s *Server) GetChannels(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	x, y, z := d.Channels()
	respondJSON(w, channelsPayload{X: x, Y: y, Z: z, Available: d.Table().Names()})
}

// SetChannels repoints the dataset and re-infers the shape.
func (s *Server) SetChannels(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var req channelsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if err := d.SelectChannels(req.X, req.Y, req.Z); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := d.Refresh(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetFilters reports the pipeline as descriptors.
func (s *Server) GetFilters(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	respondJSON(w, d.Filters.Descriptors())
}

// SetFilters replaces the pipeline and reruns it.  An invalid filter
// or a setting error leaves the previous pipeline and processed data
// in place.
func (s *Server) SetFilters(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var ds []filters.Descriptor
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	p, err := filters.FromDescriptors(ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	old := d.Filters
	d.Filters = p
	if err := d.Refresh(); err != nil {
		d.Filters = old
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type arraysPayload struct {
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Arrays [][]float64 `json:"arrays"`
}

func tupleToPayload(t grid.Tuple) arraysPayload {
	p := arraysPayload{Rows: t[0].Rows, Cols: t[0].Cols}
	for _, g := range t {
		p.Arrays = append(p.Arrays, g.Data)
	}
	return p
}

// Processed returns the processed arrays flattened row-major.
func (s *Server) Processed(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	respondJSON(w, tupleToPayload(d.Processed()))
}

// Stats summarizes the processed values.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	respondJSON(w, d.ValueStats())
}

// Linecuts extracts a batch of axis-aligned cuts; out-of-range items
// come back as error strings alongside the good traces.
func (s *Server) Linecuts(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var reqs []linecut.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	traces, errs := d.Linecuts(reqs)
	out := struct {
		Traces []linecut.Trace `json:"traces"`
		Errors []string        `json:"errors,omitempty"`
	}{Traces: traces}
	for _, e := range errs {
		out.Errors = append(out.Errors, e.Error())
	}
	respondJSON(w, out)
}

// FilterToColumn applies one filter and stores the result as a derived
// channel: {"name": ..., "filter": {descriptor}}.
func (s *Server) FilterToColumn(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	var req struct {
		Name   string             `json:"name"`
		Filter filters.Descriptor `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	f, err := filters.FromDescriptor(req.Filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := d.FilterToColumn(f, req.Name); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Fits streams the processed arrays as a FITS file, one image HDU per
// array.
func (s *Server) Fits(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/fits")
	if err := export.WriteFits(w, d); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
