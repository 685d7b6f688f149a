// Package table holds named measurement channels: an insertion-ordered
// mapping from column name to a flat array, as parsed from a delimited
// text file or built in memory.
package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind discriminates structured parse errors.
type Kind int

// The error kinds surfaced by parsing.
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

// DataError is a structured error from table parsing.
type DataError struct {
	Kind   Kind
	Detail string
}

func (e *DataError) Error() string {
	return "table: " + e.Kind.String() + ": " + e.Detail
}

// Channel is one named flat array of measured or derived values.
type Channel struct {
	Name string
	// Unit is extracted from a trailing parenthesized header token,
	// e.g. "Vg (V)" => name "Vg", unit "V".  Empty if absent.
	Unit string
	// Role marks derived channels ("filtered") vs measured ones ("").
	Role   string
	Values []float64
}

// Table is an ordered collection of channels with unique names.
// Channels are only ever appended, never removed; lengths may disagree
// transiently, before shape inference resolves a selection.
type Table struct {
	channels []*Channel
	index    map[string]int
}

// New returns an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// FromArrays builds a table from parallel name and array slices, used
// for combined or otherwise in-memory datasets.
func FromArrays(names []string, arrays [][]float64) (*Table, error) {
	if len(names) != len(arrays) {
		return nil, &DataError{Kind: EmptyOrMalformed,
			Detail: fmt.Sprintf("%d names for %d arrays", len(names), len(arrays))}
	}
	t := New()
	for i, n := range names {
		if err := t.Append(n, arrays[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Append adds a channel.  Names must be unique.
func (t *Table) Append(name string, values []float64) error {
	if _, ok := t.index[name]; ok {
		return &DataError{Kind: EmptyOrMalformed, Detail: "duplicate channel " + name}
	}
	_, unit := splitUnit(name)
	t.index[name] = len(t.channels)
	t.channels = append(t.channels, &Channel{Name: name, Unit: unit, Values: values})
	return nil
}

// AppendDerived adds a channel marked as derived from the filter
// pipeline (filter-to-column promotion).
func (t *Table) AppendDerived(name string, values []float64) error {
	if err := t.Append(name, values); err != nil {
		return err
	}
	t.channels[len(t.channels)-1].Role = "filtered"
	return nil
}

// Len returns the number of channels.
func (t *Table) Len() int { return len(t.channels) }

// Rows returns the length of the first channel, 0 for an empty table.
func (t *Table) Rows() int {
	if len(t.channels) == 0 {
		return 0
	}
	return len(t.channels[0].Values)
}

// Names returns the channel names in column order.
func (t *Table) Names() []string {
	out := make([]string, len(t.channels))
	for i, c := range t.channels {
		out[i] = c.Name
	}
	return out
}

// Channel returns the values of a named channel.
func (t *Table) Channel(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.channels[i].Values, true
}

// At returns channel i in column order.
func (t *Table) At(i int) *Channel { return t.channels[i] }

// Columns returns every channel's values in column order.  The inner
// slices alias the table's storage.
func (t *Table) Columns() [][]float64 {
	out := make([][]float64, len(t.channels))
	for i, c := range t.channels {
		out[i] = c.Values
	}
	return out
}

// OperandNames returns every channel name plus its negated form
// ("-name"), the legal operand set for value-combining filters.
func (t *Table) OperandNames() []string {
	out := make([]string, 0, 2*len(t.channels))
	for _, c := range t.channels {
		out = append(out, c.Name)
	}
	for _, c := range t.channels {
		out = append(out, "-"+c.Name)
	}
	return out
}

func splitUnit(name string) (base, unit string) {
	if strings.HasSuffix(name, ")") {
		if i := strings.LastIndex(name, "("); i > 0 {
			return strings.TrimSpace(name[:i]), name[i+1 : len(name)-1]
		}
	}
	return name, ""
}

// mergeUnitTokens repairs a whitespace-split header: a standalone
// parenthesized token is the unit of the name before it, so
// "Vg (V) I (nA)" yields ["Vg (V)", "I (nA)"] rather than four names.
func mergeUnitTokens(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if len(out) > 0 && strings.HasPrefix(n, "(") && strings.HasSuffix(n, ")") {
			out[len(out)-1] += " " + n
			continue
		}
		out = append(out, n)
	}
	return out
}

func splitFields(line, delimiter string) []string {
	if delimiter == "" {
		return strings.Fields(line)
	}
	parts := strings.Split(line, delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseReader reads a delimited text table.  An optional single
// "#"-prefixed header line names the columns; an empty delimiter means
// whitespace-separated fields.  Columns without names become
// column_0, column_1, ...
func ParseReader(r io.Reader, delimiter string) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	var names []string
	var cols [][]float64
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if first {
				names = splitFields(strings.TrimSpace(line[1:]), delimiter)
				if delimiter == "" {
					names = mergeUnitTokens(names)
				}
			}
			first = false
			continue
		}
		first = false
		fields := splitFields(line, delimiter)
		if cols == nil {
			cols = make([][]float64, len(fields))
		}
		if len(fields) != len(cols) {
			return nil, &DataError{Kind: EmptyOrMalformed,
				Detail: fmt.Sprintf("row has %d columns, expected %d", len(fields), len(cols))}
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &DataError{Kind: EmptyOrMalformed,
					Detail: "unparseable value " + f}
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "table: reading input")
	}
	if len(cols) == 0 {
		return nil, &DataError{Kind: EmptyOrMalformed, Detail: "no data rows"}
	}
	if len(cols) < 2 {
		return nil, &DataError{Kind: InsufficientColumns,
			Detail: fmt.Sprintf("%d usable column(s)", len(cols))}
	}
	// a short or absent header falls back to positional names
	if len(names) != len(cols) {
		names = make([]string, len(cols))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i)
		}
	}
	return FromArrays(names, cols)
}

// ParseFile reads a delimited text table from disk.
func ParseFile(path, delimiter string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "table: opening file")
	}
	defer f.Close()
	return ParseReader(f, delimiter)
}
