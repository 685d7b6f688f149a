package filters

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/interp"

	"github.com/inspectra/gadget/grid"
)

// replace shallow-copies the tuple and swaps one member, so earlier
// pipeline stages and the raw data never see mutation.
func replace(t grid.Tuple, idx int, g *grid.Grid) grid.Tuple {
	out := append(grid.Tuple(nil), t...)
	out[idx] = g
	return out
}

// axisIndex maps a method letter to a tuple index.  On 1D data both Y
// and Z address the dependent array.
func axisIndex(t grid.Tuple, method string) int {
	switch method {
	case "X":
		return 0
	case "Y":
		return 1
	}
	return len(t) - 1
}

func parseFloatSetting(filter, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, settingErr(filter, s, "not a number")
	}
	return v, nil
}

func parseIntSetting(filter, s string) (int, error) {
	v, err := parseFloatSetting(filter, s)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// parseCount parses a repetition count; negative values mean zero.
func parseCount(filter, s string) (int, error) {
	n, err := parseIntSetting(filter, s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// zipRows applies fn to matching rows of a and b, producing a new grid
// shaped like a.
func zipRows(a, b *grid.Grid, fn func(av, bv []float64) []float64) *grid.Grid {
	out := grid.New(a.Rows, a.Cols)
	for i := 0; i < a.Rows; i++ {
		copy(out.Row(i), fn(a.Row(i), b.Row(i)))
	}
	return out
}

// zipCols applies fn to matching columns of a and b.
func zipCols(a, b *grid.Grid, fn func(av, bv []float64) []float64) *grid.Grid {
	out := grid.New(a.Rows, a.Cols)
	for j := 0; j < a.Cols; j++ {
		out.SetCol(j, fn(a.Col(j), b.Col(j)))
	}
	return out
}

func derivative(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	timesX, err := parseCount("Derivative", s1)
	if err != nil {
		return nil, err
	}
	timesY, err := parseCount("Derivative", s2)
	if err != nil {
		return nil, err
	}
	z := t.Z()
	if t.Is2D() {
		for k := 0; k < timesY; k++ {
			z = zipRows(z, t[1], func(zr, yr []float64) []float64 { return gradient(zr, yr) })
		}
		for k := 0; k < timesX; k++ {
			z = zipCols(z, t[0], func(zc, xc []float64) []float64 { return gradient(zc, xc) })
		}
	} else {
		for k := 0; k < timesY; k++ {
			z = zipRows(z, t[0], func(yr, xr []float64) []float64 { return gradient(yr, xr) })
		}
	}
	return replace(t, len(t)-1, z), nil
}

func integrate(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	timesX, err := parseCount("Integrate", s1)
	if err != nil {
		return nil, err
	}
	timesY, err := parseCount("Integrate", s2)
	if err != nil {
		return nil, err
	}
	var integ func(x, y []float64) []float64
	switch method {
	case "Trapezoid":
		integ = trapezoid
	case "Simpson":
		integ = simpson
	case "Rectangle":
		integ = rectangle
	}
	z := t.Z()
	if t.Is2D() {
		for k := 0; k < timesX; k++ {
			z = zipCols(z, t[0], func(zc, xc []float64) []float64 { return integ(xc, zc) })
		}
		for k := 0; k < timesY; k++ {
			z = zipRows(z, t[1], func(zr, yr []float64) []float64 { return integ(yr, zr) })
		}
	} else {
		for k := 0; k < timesY; k++ {
			z = zipRows(z, t[0], func(yr, xr []float64) []float64 { return integ(xr, yr) })
		}
	}
	return replace(t, len(t)-1, z), nil
}

func cumulativeSum(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	timesX, err := parseCount("Cumulative sum", s1)
	if err != nil {
		return nil, err
	}
	timesY, err := parseCount("Cumulative sum", s2)
	if err != nil {
		return nil, err
	}
	cum := func(v []float64) []float64 { return cumulativeSumVec(v) }
	if !t.Is2D() {
		if method == "X" {
			x := t[0]
			for k := 0; k < timesX; k++ {
				x = mapRows(x, cum)
			}
			return replace(t, 0, x), nil
		}
		y := t.Z()
		for k := 0; k < timesY; k++ {
			y = mapRows(y, cum)
		}
		return replace(t, len(t)-1, y), nil
	}
	switch method {
	case "Z":
		z := t.Z()
		for k := 0; k < timesX; k++ {
			z = mapCols(z, cum)
		}
		for k := 0; k < timesY; k++ {
			z = mapRows(z, cum)
		}
		return replace(t, len(t)-1, z), nil
	case "Y":
		y := t[1]
		for k := 0; k < timesY; k++ {
			y = mapRows(y, cum)
		}
		return replace(t, 1, y), nil
	default: // X
		x := t[0]
		for k := 0; k < timesX; k++ {
			x = mapCols(x, cum)
		}
		return replace(t, 0, x), nil
	}
}

func smoothen(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	wx, err := parseFloatSetting("Smoothen", s1)
	if err != nil {
		return nil, err
	}
	wy, err := parseFloatSetting("Smoothen", s2)
	if err != nil {
		return nil, err
	}
	if wx < 0 || wy < 0 {
		return nil, settingErr("Smoothen", s1+","+s2, "window must be non-negative")
	}
	z := t.Z()
	switch method {
	case "Gauss":
		if t.Is2D() && wx > 0 {
			k := gaussianKernel(wx)
			z = mapCols(z, func(c []float64) []float64 { return convolveReflect(c, k) })
		}
		if wy > 0 {
			k := gaussianKernel(wy)
			z = mapRows(z, func(r []float64) []float64 { return convolveReflect(r, k) })
		}
	case "Median":
		// fractional widths round up before the +1
		mx := int(math.Ceil(wx)) + 1
		my := int(math.Ceil(wy)) + 1
		if t.Is2D() {
			z = medianFilter2D(z, mx, my)
		} else {
			z = mapRows(z, func(r []float64) []float64 { return medianFilter(r, my) })
		}
	}
	return replace(t, len(t)-1, z), nil
}

func savGol(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	window, err := parseIntSetting("Savitzky-Golay", s1)
	if err != nil {
		return nil, err
	}
	polyorder, err := parseIntSetting("Savitzky-Golay", s2)
	if err != nil {
		return nil, err
	}
	if polyorder < 0 {
		return nil, settingErr("Savitzky-Golay", s2, "polynomial order must not be negative")
	}
	// short or even windows are widened rather than rejected
	if window <= polyorder {
		window = polyorder + 1
	}
	if window%2 == 0 {
		window++
	}
	deriv := 0
	axis := method
	for len(axis) > 1 && axis[0] == 'd' {
		deriv++
		axis = axis[1:]
	}
	z := t.Z()
	if !t.Is2D() {
		z = mapRows(z, func(r []float64) []float64 { return savgolVec(r, window, polyorder, deriv) })
		if deriv > 0 {
			step := grid.NewVector(gradientUnit(t[0].Row(0)))
			for k := 0; k < deriv; k++ {
				zz, zerr := z.Zip(step, func(a, b float64) float64 { return a / b })
				if zerr != nil {
					return nil, zerr
				}
				z = zz
			}
		}
		return replace(t, len(t)-1, z), nil
	}
	if axis == "Y" {
		z = mapRows(z, func(r []float64) []float64 { return savgolVec(r, window, polyorder, deriv) })
	} else {
		z = mapCols(z, func(c []float64) []float64 { return savgolVec(c, window, polyorder, deriv) })
	}
	if deriv > 0 {
		var step *grid.Grid
		if axis == "Y" {
			step = axisGradient(t[1], 1)
		} else {
			step = axisGradient(t[0], 0)
		}
		for k := 0; k < deriv; k++ {
			zz, zerr := z.Zip(step, func(a, b float64) float64 { return a / b })
			if zerr != nil {
				return nil, zerr
			}
			z = zz
		}
	}
	return replace(t, len(t)-1, z), nil
}

// combine applies Add/Subtract, Multiply or Divide to one axis array,
// with either a scalar value or a co-registered operand grid.
func combine(t grid.Tuple, name, method string, op *grid.Grid, value float64) (grid.Tuple, error) {
	idx := axisIndex(t, method)
	arr := t[idx]
	var fn func(a, b float64) float64
	switch name {
	case "Add/Subtract":
		fn = func(a, b float64) float64 { return a + b }
	case "Multiply":
		fn = func(a, b float64) float64 { return a * b }
	case "Divide":
		fn = func(a, b float64) float64 { return a / b }
	}
	if op == nil {
		return replace(t, idx, arr.Map(func(v float64) float64 { return fn(v, value) })), nil
	}
	out, err := arr.Zip(op, fn)
	if err != nil {
		return nil, settingErr(name, "", "operand channel shape does not match the data")
	}
	return replace(t, idx, out), nil
}

func addSlope(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	ay, err := parseFloatSetting("Add Slope", s2)
	if err != nil {
		return nil, err
	}
	if !t.Is2D() {
		x := t[0]
		out := grid.New(t[1].Rows, t[1].Cols)
		for i := range out.Data {
			out.Data[i] = t[1].Data[i] + ay*x.Data[i]
		}
		return replace(t, 1, out), nil
	}
	ax, err := parseFloatSetting("Add Slope", s1)
	if err != nil {
		return nil, err
	}
	z := t.Z()
	out := grid.New(z.Rows, z.Cols)
	for i := range out.Data {
		out.Data[i] = z.Data[i] + ax*t[0].Data[i] + ay*t[1].Data[i]
	}
	return replace(t, len(t)-1, out), nil
}

func invert(t grid.Tuple, method string) (grid.Tuple, error) {
	idx := axisIndex(t, method)
	return replace(t, idx, t[idx].Map(func(v float64) float64 { return 1 / v })), nil
}

func normalize(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	z := t.Z()
	switch method {
	case "Max":
		m := z.Max()
		return replace(t, len(t)-1, z.Map(func(v float64) float64 { return v / m })), nil
	case "Min":
		m := z.Min()
		return replace(t, len(t)-1, z.Map(func(v float64) float64 { return v / m })), nil
	case "Min to Max":
		lo, hi := z.Min(), z.Max()
		return replace(t, len(t)-1, z.Map(func(v float64) float64 { return (v - lo) / (hi - lo) })), nil
	case "Point":
		px, err := parseFloatSetting("Normalize", s1)
		if err != nil {
			return nil, err
		}
		var norm float64
		if t.Is2D() {
			py, perr := parseFloatSetting("Normalize", s2)
			if perr != nil {
				return nil, perr
			}
			i := nearestIndex(t[0].Col(0), px)
			j := nearestIndex(t[1].Row(0), py)
			norm = z.At(i, j)
		} else {
			i := nearestIndex(t[0].Row(0), px)
			norm = z.Row(0)[i]
		}
		return replace(t, len(t)-1, z.Map(func(v float64) float64 { return v / norm })), nil
	}
	return t, nil
}

func subtractAverage(t grid.Tuple, method string) (grid.Tuple, error) {
	idx := axisIndex(t, method)
	m := t[idx].Mean()
	return replace(t, idx, t[idx].Map(func(v float64) float64 { return v - m })), nil
}

func offsetLineByLine(t grid.Tuple, method, s1 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	index, err := parseIntSetting("Offset line by line", s1)
	if err != nil {
		return nil, err
	}
	idx := axisIndex(t, method)
	g := t[idx]
	if index < 0 || index >= g.Cols {
		return nil, settingErr("Offset line by line", s1, "index outside the sweep")
	}
	out := grid.New(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		ref := g.At(i, index)
		for j := 0; j < g.Cols; j++ {
			out.Set(i, j, g.At(i, j)-ref)
		}
	}
	return replace(t, idx, out), nil
}

func subtractAverageLineByLine(t grid.Tuple, method string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	idx := axisIndex(t, method)
	g := t[idx]
	out := grid.New(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		row := g.Row(i)
		var m float64
		for _, v := range row {
			m += v
		}
		m /= float64(len(row))
		orow := out.Row(i)
		for j, v := range row {
			orow[j] = v - m
		}
	}
	return replace(t, idx, out), nil
}

func subtractTrace(t grid.Tuple, method, s1 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	index, err := parseIntSetting("Subtract trace", s1)
	if err != nil {
		return nil, err
	}
	z := t.Z()
	out := grid.New(z.Rows, z.Cols)
	switch method {
	case "Ver":
		if index < 0 || index >= z.Rows {
			return nil, settingErr("Subtract trace", s1, "index outside the sweep")
		}
		ref := append([]float64(nil), z.Row(index)...)
		for i := 0; i < z.Rows; i++ {
			for j := 0; j < z.Cols; j++ {
				out.Set(i, j, z.At(i, j)-ref[j])
			}
		}
	case "Hor":
		if index < 0 || index >= z.Cols {
			return nil, settingErr("Subtract trace", s1, "index outside the sweep")
		}
		for i := 0; i < z.Rows; i++ {
			ref := z.At(i, index)
			for j := 0; j < z.Cols; j++ {
				out.Set(i, j, z.At(i, j)-ref)
			}
		}
	}
	return replace(t, len(t)-1, out), nil
}

func logarithm(t grid.Tuple, method, s1 string) (grid.Tuple, error) {
	var logb func(float64) float64
	switch s1 {
	case "10":
		logb = math.Log10
	case "2":
		logb = math.Log2
	case "e":
		logb = math.Log
	default:
		b, err := parseFloatSetting("Logarithm", s1)
		if err != nil || b <= 0 || b == 1 {
			return nil, settingErr("Logarithm", s1, "base must be a positive number other than 1")
		}
		lb := math.Log(b)
		logb = func(v float64) float64 { return math.Log(v) / lb }
	}
	z := t.Z()
	var out *grid.Grid
	switch method {
	case "Mask":
		out = z.Map(func(v float64) float64 {
			if v <= 0 {
				return math.NaN()
			}
			return logb(v)
		})
	case "Shift":
		shift := 0.0
		if m := z.Min(); m <= 0 {
			shift = -m
		}
		out = z.Map(func(v float64) float64 {
			if v+shift <= 0 {
				return math.NaN()
			}
			return logb(v + shift)
		})
	case "Abs":
		out = z.Map(func(v float64) float64 {
			if v == 0 {
				return math.NaN()
			}
			return logb(math.Abs(v))
		})
	}
	return replace(t, len(t)-1, out), nil
}

func power(t grid.Tuple, method, s1 string) (grid.Tuple, error) {
	p, err := parseFloatSetting("Power", s1)
	if err != nil {
		return nil, err
	}
	idx := axisIndex(t, method)
	return replace(t, idx, t[idx].Map(func(v float64) float64 { return math.Pow(v, p) })), nil
}

func root(t grid.Tuple, method, s1 string) (grid.Tuple, error) {
	r, err := parseFloatSetting("Root", s1)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return t, nil
	}
	idx := axisIndex(t, method)
	return replace(t, idx, t[idx].Map(func(v float64) float64 { return math.Pow(math.Abs(v), 1/r) })), nil
}

func absolute(t grid.Tuple) (grid.Tuple, error) {
	return replace(t, len(t)-1, t.Z().Map(math.Abs)), nil
}

// flip mirrors the value grid against its axes; the coordinate arrays
// stay put, so the plot mirrors.
func flip(t grid.Tuple, method string) (grid.Tuple, error) {
	z := t.Z()
	if !t.Is2D() {
		rev := grid.New(1, z.Cols)
		for j := 0; j < z.Cols; j++ {
			rev.Set(0, j, z.At(0, z.Cols-1-j))
		}
		return replace(t, len(t)-1, rev), nil
	}
	if method == "L-R" {
		return replace(t, len(t)-1, z.FlipRows()), nil
	}
	return replace(t, len(t)-1, z.FlipCols()), nil
}

func interpolate(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	nx, err := parseIntSetting("Interpolate", s1)
	if err != nil {
		return nil, err
	}
	ny, err := parseIntSetting("Interpolate", s2)
	if err != nil {
		return nil, err
	}
	if nx < 2 || ny < 2 {
		return nil, settingErr("Interpolate", s1+","+s2, "target resolution must be at least 2")
	}
	newFitter := func() interp.FittablePredictor {
		if method == "cubic" {
			return &interp.NaturalCubic{}
		}
		return &interp.PiecewiseLinear{}
	}
	if !t.Is2D() {
		xs, ys := sortPairs(t[0].Row(0), t[1].Row(0))
		p := newFitter()
		if ferr := p.Fit(xs, ys); ferr != nil {
			return nil, settingErr("Interpolate", s1, "data is not interpolable along x")
		}
		ox := linspace(xs[0], xs[len(xs)-1], nx)
		oy := make([]float64, nx)
		for i, v := range ox {
			oy[i] = p.Predict(v)
		}
		return grid.Tuple{grid.NewVector(ox), grid.NewVector(oy)}, nil
	}
	x, y, z := t[0], t[1], t[2]
	ys := linspace(y.Min(), y.Max(), ny)
	mid := grid.New(x.Rows, ny)
	for i := 0; i < x.Rows; i++ {
		ry, rz := sortPairs(y.Row(i), z.Row(i))
		p := newFitter()
		if ferr := p.Fit(ry, rz); ferr != nil {
			return nil, settingErr("Interpolate", s2, "data is not interpolable along y")
		}
		row := mid.Row(i)
		for j, v := range ys {
			row[j] = p.Predict(v)
		}
	}
	xs := linspace(x.Min(), x.Max(), nx)
	xcoord := x.Col(0)
	oz := grid.New(nx, ny)
	for j := 0; j < ny; j++ {
		cx, cz := sortPairs(xcoord, mid.Col(j))
		p := newFitter()
		if ferr := p.Fit(cx, cz); ferr != nil {
			return nil, settingErr("Interpolate", s1, "data is not interpolable along x")
		}
		for i, v := range xs {
			oz.Set(i, j, p.Predict(v))
		}
	}
	ox := grid.New(nx, ny)
	oyg := grid.New(nx, ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			ox.Set(i, j, xs[i])
			oyg.Set(i, j, ys[j])
		}
	}
	return grid.Tuple{ox, oyg, oz}, nil
}

// takeRows builds a new grid from the listed rows, in order.
func takeRows(g *grid.Grid, idx []int) *grid.Grid {
	out := grid.New(len(idx), g.Cols)
	for i, r := range idx {
		copy(out.Row(i), g.Row(r))
	}
	return out
}

// takeCols builds a new grid from the listed columns, in order.
func takeCols(g *grid.Grid, idx []int) *grid.Grid {
	out := grid.New(g.Rows, len(idx))
	for j, c := range idx {
		out.SetCol(j, g.Col(c))
	}
	return out
}

func takeAll(t grid.Tuple, idx []int, rows bool) grid.Tuple {
	out := make(grid.Tuple, len(t))
	for i, g := range t {
		if rows {
			out[i] = takeRows(g, idx)
		} else {
			out[i] = takeCols(g, idx)
		}
	}
	return out
}

func sortData(t grid.Tuple, method string) (grid.Tuple, error) {
	if !t.Is2D() {
		x, y := sortPairs(t[0].Row(0), t[1].Row(0))
		return grid.Tuple{grid.NewVector(x), grid.NewVector(y)}, nil
	}
	if method == "X" {
		key := t[0].Col(0)
		idx := argsort(key)
		return takeAll(t, idx, true), nil
	}
	key := append([]float64(nil), t[1].Row(0)...)
	idx := argsort(key)
	return takeAll(t, idx, false), nil
}

func argsort(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	return idx
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rollX rotates the tail columns of the value grid along the sweep
// axis, leaving coordinates in place.
func rollX(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	pos, err := parseIntSetting("Roll X", s1)
	if err != nil {
		return nil, err
	}
	amt, err := parseIntSetting("Roll X", s2)
	if err != nil {
		return nil, err
	}
	z := t.Z().Clone()
	pos = clampInt(pos, 0, z.Cols)
	n := z.Rows
	if n > 0 {
		for j := pos; j < z.Cols; j++ {
			col := z.Col(j)
			rolled := make([]float64, n)
			for i := 0; i < n; i++ {
				rolled[((i+amt)%n+n)%n] = col[i]
			}
			z.SetCol(j, rolled)
		}
	}
	return replace(t, len(t)-1, z), nil
}

func rollY(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	pos, err := parseIntSetting("Roll Y", s1)
	if err != nil {
		return nil, err
	}
	amt, err := parseIntSetting("Roll Y", s2)
	if err != nil {
		return nil, err
	}
	z := t.Z().Clone()
	pos = clampInt(pos, 0, z.Rows)
	n := z.Cols
	if n > 0 {
		for i := pos; i < z.Rows; i++ {
			row := append([]float64(nil), z.Row(i)...)
			dst := z.Row(i)
			for j := 0; j < n; j++ {
				dst[((j+amt)%n+n)%n] = row[j]
			}
		}
	}
	return replace(t, len(t)-1, z), nil
}

func cropX(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	if method == "Lim" {
		return t, nil
	}
	left, err := parseFloatSetting("Crop X", s1)
	if err != nil {
		return nil, err
	}
	right, err := parseFloatSetting("Crop X", s2)
	if err != nil {
		return nil, err
	}
	x := t[0]
	lo, hi := x.Min(), x.Max()
	if !(left < right && hi > left && lo < right) {
		return t, nil
	}
	keep := func(v float64) bool {
		if method == "Rel" {
			return v > lo+math.Abs(left) && v < hi-math.Abs(right)
		}
		return v >= left && v <= right
	}
	if !t.Is2D() {
		var idx []int
		for j, v := range x.Row(0) {
			if keep(v) {
				idx = append(idx, j)
			}
		}
		if len(idx) == 0 {
			return t, nil
		}
		return takeAll(t, idx, false), nil
	}
	var idx []int
	for i := 0; i < x.Rows; i++ {
		all := true
		for _, v := range x.Row(i) {
			if !keep(v) {
				all = false
				break
			}
		}
		if all {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return t, nil
	}
	return takeAll(t, idx, true), nil
}

func cropY(t grid.Tuple, method, s1, s2 string) (grid.Tuple, error) {
	if !t.Is2D() || method == "Lim" {
		return t, nil
	}
	bottom, err := parseFloatSetting("Crop Y", s1)
	if err != nil {
		return nil, err
	}
	top, err := parseFloatSetting("Crop Y", s2)
	if err != nil {
		return nil, err
	}
	y := t[1]
	lo, hi := y.Min(), y.Max()
	if !(bottom < top && hi > bottom && lo < top) {
		return t, nil
	}
	keep := func(v float64) bool {
		if method == "Rel" {
			return v > lo+math.Abs(bottom) && v < hi-math.Abs(top)
		}
		return v >= bottom && v <= top
	}
	var idx []int
	for j := 0; j < y.Cols; j++ {
		all := true
		for _, v := range y.Col(j) {
			if !keep(v) {
				all = false
				break
			}
		}
		if all {
			idx = append(idx, j)
		}
	}
	if len(idx) == 0 {
		return t, nil
	}
	return takeAll(t, idx, false), nil
}

// cutX moves a band of sweep rows to the end of the value array,
// leaving the coordinates in place, which is how a bad region gets
// pushed out of the plotted window without losing it.
func cutX(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	left, err := parseIntSetting("Cut X", s1)
	if err != nil {
		return nil, err
	}
	width, err := parseIntSetting("Cut X", s2)
	if err != nil {
		return nil, err
	}
	n := t[0].Rows
	left = clampInt(left, 0, n)
	right := clampInt(left+clampInt(width, 0, n), 0, n)
	idx := make([]int, 0, n)
	for i := 0; i < left; i++ {
		idx = append(idx, i)
	}
	for i := right; i < n; i++ {
		idx = append(idx, i)
	}
	for i := left; i < right; i++ {
		idx = append(idx, i)
	}
	return replace(t, len(t)-1, takeRows(t.Z(), idx)), nil
}

func cutY(t grid.Tuple, s1, s2 string) (grid.Tuple, error) {
	if !t.Is2D() {
		return t, nil
	}
	bottom, err := parseIntSetting("Cut Y", s1)
	if err != nil {
		return nil, err
	}
	width, err := parseIntSetting("Cut Y", s2)
	if err != nil {
		return nil, err
	}
	n := t[0].Cols
	bottom = clampInt(bottom, 0, n)
	top := clampInt(bottom+clampInt(width, 0, n), 0, n)
	idx := make([]int, 0, n)
	for j := 0; j < bottom; j++ {
		idx = append(idx, j)
	}
	for j := top; j < n; j++ {
		idx = append(idx, j)
	}
	for j := bottom; j < top; j++ {
		idx = append(idx, j)
	}
	return replace(t, len(t)-1, takeCols(t.Z(), idx)), nil
}

func swapXY(t grid.Tuple) (grid.Tuple, error) {
	if !t.Is2D() {
		return grid.Tuple{t[1], t[0]}, nil
	}
	return grid.Tuple{t[1].Transpose(), t[0].Transpose(), t[2].Transpose()}, nil
}
