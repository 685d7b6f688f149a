// Package filters implements the ordered, user-configurable transform
// pipeline applied to reshaped sweep data.  The transform set is closed:
// every filter name is a registry entry with a declared method list,
// default settings and a default enable state, and dispatch is an
// explicit switch rather than a lookup table of functions.
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inspectra/gadget/grid"
)

// SettingError reports a filter whose settings cannot be parsed or
// validated for its declared method.  The pipeline aborts at the
// offending filter; results from prior stages remain usable.
type SettingError struct {
	Filter string
	Value  string
	Reason string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("filters: %s: bad setting %q: %s", e.Filter, e.Value, e.Reason)
}

func settingErr(filter, value, reason string) error {
	return &SettingError{Filter: filter, Value: value, Reason: reason}
}

// Filter is one step of a pipeline: a named transform, a method
// variant, two free-form settings and an enabled flag.
type Filter struct {
	Name     string
	Method   string
	Settings [2]string
	Enabled  bool
}

// Descriptor is the external round-trip surface for a filter, shared
// with saved-filter files and the HTTP layer.
type Descriptor struct {
	Name       string    `yaml:"name" json:"name"`
	Method     string    `yaml:"method" json:"method"`
	Settings   [2]string `yaml:"settings" json:"settings"`
	Checkstate int       `yaml:"checkstate" json:"checkstate"`
}

// Descriptor converts f to its external form (checkstate 2 = enabled,
// 0 = disabled).
func (f Filter) Descriptor() Descriptor {
	cs := 0
	if f.Enabled {
		cs = 2
	}
	return Descriptor{Name: f.Name, Method: f.Method, Settings: f.Settings, Checkstate: cs}
}

// FromDescriptor validates d against the registry and converts it.
func FromDescriptor(d Descriptor) (Filter, error) {
	f := Filter{Name: d.Name, Method: d.Method, Settings: d.Settings, Enabled: d.Checkstate != 0}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// entry describes one transform in the closed registry.
type entry struct {
	methods  []string
	defaults [2]string
	enabled  bool
	// twoDOnly transforms are left out of the 1D offer list and no-op
	// on 1D data if invoked anyway
	twoDOnly bool
	// operand transforms may source their value from a named channel
	operand bool
}

// names lists every transform in menu order.
var names = []string{
	"Derivative",
	"Integrate",
	"Cumulative sum",
	"Smoothen",
	"Savitzky-Golay",
	"Add/Subtract",
	"Multiply",
	"Divide",
	"Add Slope",
	"Invert",
	"Normalize",
	"Subtract average",
	"Offset line by line",
	"Subtract average line by line",
	"Subtract trace",
	"Logarithm",
	"Power",
	"Root",
	"Absolute",
	"Flip",
	"Interpolate",
	"Sort",
	"Roll X",
	"Roll Y",
	"Crop X",
	"Crop Y",
	"Cut X",
	"Cut Y",
	"Swap X/Y",
}

var registry = map[string]entry{
	"Derivative":     {methods: []string{""}, defaults: [2]string{"0", "1"}, enabled: true},
	"Integrate":      {methods: []string{"Trapezoid", "Simpson", "Rectangle"}, defaults: [2]string{"0", "1"}, enabled: true},
	"Cumulative sum": {methods: []string{"Z", "Y", "X"}, defaults: [2]string{"0", "1"}, enabled: true},
	"Smoothen":       {methods: []string{"Gauss", "Median"}, defaults: [2]string{"0", "2"}, enabled: true},
	"Savitzky-Golay": {methods: []string{"Y", "X", "dY", "dX", "ddY", "ddX"}, defaults: [2]string{"7", "2"}, enabled: true},
	"Add/Subtract":   {methods: []string{"X", "Y", "Z"}, defaults: [2]string{"0", ""}, enabled: true, operand: true},
	"Multiply":       {methods: []string{"X", "Y", "Z"}, defaults: [2]string{"1", ""}, enabled: true, operand: true},
	"Divide":         {methods: []string{"X", "Y", "Z"}, defaults: [2]string{"1", ""}, operand: true},
	"Add Slope":      {methods: []string{""}, defaults: [2]string{"0", "-1"}, enabled: true},
	"Invert":         {methods: []string{"X", "Y", "Z"}},
	"Normalize":      {methods: []string{"Max", "Min", "Min to Max", "Point"}, enabled: true},
	"Subtract average":              {methods: []string{"Z", "Y", "X"}, enabled: true},
	"Offset line by line":           {methods: []string{"Z", "Y"}, defaults: [2]string{"0", ""}, enabled: true, twoDOnly: true},
	"Subtract average line by line": {methods: []string{"Z", "Y"}, enabled: true, twoDOnly: true},
	"Subtract trace":                {methods: []string{"Ver", "Hor"}, defaults: [2]string{"0", ""}, twoDOnly: true},
	"Logarithm":                     {methods: []string{"Mask", "Shift", "Abs"}, defaults: [2]string{"10", ""}, enabled: true},
	"Power":                         {methods: []string{"X", "Y", "Z"}, defaults: [2]string{"2", ""}, enabled: true},
	"Root":                          {methods: []string{"X", "Y", "Z"}, defaults: [2]string{"2", ""}, enabled: true},
	"Absolute":                      {methods: []string{""}, enabled: true},
	"Flip":                          {methods: []string{"L-R", "U-D"}, enabled: true},
	"Interpolate":                   {methods: []string{"linear", "cubic"}, defaults: [2]string{"800", "600"}},
	"Sort":                          {methods: []string{"X", "Y"}, enabled: true},
	"Roll X":                        {methods: []string{"Index"}, defaults: [2]string{"0", "0"}, twoDOnly: true},
	"Roll Y":                        {methods: []string{"Index"}, defaults: [2]string{"0", "0"}, twoDOnly: true},
	"Crop X":                        {methods: []string{"Abs", "Rel", "Lim"}, defaults: [2]string{"-1", "1"}},
	"Crop Y":                        {methods: []string{"Abs", "Rel", "Lim"}, defaults: [2]string{"-1", "1"}, twoDOnly: true},
	"Cut X":                         {methods: []string{"Index"}, defaults: [2]string{"0", "0"}, twoDOnly: true},
	"Cut Y":                         {methods: []string{"Index"}, defaults: [2]string{"0", "0"}, twoDOnly: true},
	"Swap X/Y":                      {methods: []string{""}, enabled: true},
}

// Names returns every transform name in menu order.
func Names() []string { return append([]string(nil), names...) }

// Methods returns the declared method list for a transform.
func Methods(name string) ([]string, bool) {
	e, ok := registry[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), e.methods...), true
}

// Offered returns the transforms applicable to data of the given
// arity; 2D-only transforms are left out of the 1D list.
func Offered(is2D bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !is2D && registry[n].twoDOnly {
			continue
		}
		out = append(out, n)
	}
	return out
}

// New returns a Filter with the registry defaults for name.
func New(name string) (Filter, error) {
	e, ok := registry[name]
	if !ok {
		return Filter{}, settingErr(name, name, "unknown transform")
	}
	return Filter{Name: name, Method: e.methods[0], Settings: e.defaults, Enabled: e.enabled}, nil
}

// Validate checks that the filter names a known transform and that its
// method is in the transform's declared method list.
func (f Filter) Validate() error {
	e, ok := registry[f.Name]
	if !ok {
		return settingErr(f.Name, f.Name, "unknown transform")
	}
	for _, m := range e.methods {
		if m == f.Method {
			return nil
		}
	}
	return settingErr(f.Name, f.Method, "method not in "+strings.Join(e.methods, "/"))
}

// ChannelSource resolves named operand channels for the value-combining
// transforms, already shaped and co-registered to the current tuple.
type ChannelSource interface {
	OperandGrid(name string) (*grid.Grid, bool)
}

// Pipeline is an ordered filter list.  Order is semantically
// meaningful; disabled entries are skipped in place.
type Pipeline []Filter

// Descriptors converts the pipeline to its external form.
func (p Pipeline) Descriptors() []Descriptor {
	out := make([]Descriptor, len(p))
	for i, f := range p {
		out[i] = f.Descriptor()
	}
	return out
}

// FromDescriptors validates and converts an external filter list.
func FromDescriptors(ds []Descriptor) (Pipeline, error) {
	out := make(Pipeline, 0, len(ds))
	for _, d := range ds {
		f, err := FromDescriptor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Apply runs every enabled filter in order over the tuple, returning a
// new tuple.  The input arrays are never mutated, so the caller's raw
// copy stays pristine for reload-from-scratch semantics.  src may be
// nil when no filter uses a named operand.
//
// On a SettingError the pipeline stops at that filter and returns the
// error; the caller keeps its pre-pipeline data.
func (p Pipeline) Apply(t grid.Tuple, src ChannelSource) (grid.Tuple, error) {
	cur := t
	for i := range p {
		if !p[i].Enabled {
			continue
		}
		next, err := p[i].apply(cur, src)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if len(cur) == len(t) {
		return cur, nil
	}
	return nil, settingErr("pipeline", "", "filter changed tuple arity")
}

// apply dispatches one filter over the closed transform set.
func (f Filter) apply(t grid.Tuple, src ChannelSource) (grid.Tuple, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s1, s2 := f.Settings[0], f.Settings[1]
	switch f.Name {
	case "Derivative":
		return derivative(t, s1, s2)
	case "Integrate":
		return integrate(t, f.Method, s1, s2)
	case "Cumulative sum":
		return cumulativeSum(t, f.Method, s1, s2)
	case "Smoothen":
		return smoothen(t, f.Method, s1, s2)
	case "Savitzky-Golay":
		return savGol(t, f.Method, s1, s2)
	case "Add/Subtract", "Multiply", "Divide":
		op, value, err := f.resolveOperand(t, src)
		if err != nil {
			return nil, err
		}
		return combine(t, f.Name, f.Method, op, value)
	case "Add Slope":
		return addSlope(t, s1, s2)
	case "Invert":
		return invert(t, f.Method)
	case "Normalize":
		return normalize(t, f.Method, s1, s2)
	case "Subtract average":
		return subtractAverage(t, f.Method)
	case "Offset line by line":
		return offsetLineByLine(t, f.Method, s1)
	case "Subtract average line by line":
		return subtractAverageLineByLine(t, f.Method)
	case "Subtract trace":
		return subtractTrace(t, f.Method, s1)
	case "Logarithm":
		return logarithm(t, f.Method, s1)
	case "Power":
		return power(t, f.Method, s1)
	case "Root":
		return root(t, f.Method, s1)
	case "Absolute":
		return absolute(t)
	case "Flip":
		return flip(t, f.Method)
	case "Interpolate":
		return interpolate(t, f.Method, s1, s2)
	case "Sort":
		return sortData(t, f.Method)
	case "Roll X":
		return rollX(t, s1, s2)
	case "Roll Y":
		return rollY(t, s1, s2)
	case "Crop X":
		return cropX(t, f.Method, s1, s2)
	case "Crop Y":
		return cropY(t, f.Method, s1, s2)
	case "Cut X":
		return cutX(t, s1, s2)
	case "Cut Y":
		return cutY(t, s1, s2)
	case "Swap X/Y":
		return swapXY(t)
	}
	return nil, settingErr(f.Name, f.Name, "unknown transform")
}

// resolveOperand interprets setting 1 of a value-combining filter:
// either a literal numeric value, or the name of a channel in the
// owning dataset, with a leading "-" meaning negate before combining.
// Multiply additionally accepts the conductance-quantum shorthand
// "e^2/h".
func (f Filter) resolveOperand(t grid.Tuple, src ChannelSource) (*grid.Grid, float64, error) {
	raw := f.Settings[0]
	neg := false
	name := raw
	if strings.HasPrefix(raw, "-") {
		neg = true
		name = raw[1:]
	}
	if src != nil {
		if g, ok := src.OperandGrid(name); ok {
			if neg {
				g = g.Map(func(v float64) float64 { return -v })
			}
			return g, 0, nil
		}
	}
	if f.Name == "Multiply" && raw == "e^2/h" {
		return nil, 0.025974, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, 0, settingErr(f.Name, raw, "not a number or known channel")
	}
	return nil, v, nil
}
