package table_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/inspectra/gadget/table"
)

func ExampleParseReader() {
	src := "# Vg\tI\tG\n0\t1\t2\n0\t3\t4\n"
	t, _ := table.ParseReader(strings.NewReader(src), "")
	fmt.Println(t.Names())
	// Output: [Vg I G]
}

func TestParseHeaderAndValues(t *testing.T) {
	src := "# Vg (V)\tI (A)\n0.0\t1.5\n0.5\t2.5\n1.0\t3.5\n"
	tab, err := table.ParseReader(strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if tab.Len() != 2 || tab.Rows() != 3 {
		t.Fatalf("expected 2 channels of 3 rows, got %d x %d", tab.Len(), tab.Rows())
	}
	v, ok := tab.Channel("I (A)")
	if !ok {
		t.Fatalf("channel I (A) missing")
	}
	if v[2] != 3.5 {
		t.Errorf("expected 3.5 got %v", v[2])
	}
	if tab.At(0).Unit != "V" {
		t.Errorf("expected unit V, got %q", tab.At(0).Unit)
	}
}

func TestParseNoHeaderPositionalNames(t *testing.T) {
	src := "1 2 3\n4 5 6\n"
	tab, err := table.ParseReader(strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []string{"column_0", "column_1", "column_2"}
	for i, n := range tab.Names() {
		if n != want[i] {
			t.Errorf("expected %s got %s", want[i], n)
		}
	}
}

func TestParseDelimiter(t *testing.T) {
	src := "#a,b\n1,2\n3,4\n"
	tab, err := table.ParseReader(strings.NewReader(src), ",")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	v, _ := tab.Channel("b")
	if v[1] != 4 {
		t.Errorf("expected 4 got %v", v[1])
	}
}

func TestParseRaggedRows(t *testing.T) {
	src := "1 2 3\n4 5\n"
	_, err := table.ParseReader(strings.NewReader(src), "")
	de, ok := err.(*table.DataError)
	if !ok || de.Kind != table.EmptyOrMalformed {
		t.Errorf("expected EmptyOrMalformed, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := table.ParseReader(strings.NewReader("\n\n"), "")
	de, ok := err.(*table.DataError)
	if !ok || de.Kind != table.EmptyOrMalformed {
		t.Errorf("expected EmptyOrMalformed, got %v", err)
	}
}

func TestParseSingleColumn(t *testing.T) {
	_, err := table.ParseReader(strings.NewReader("1\n2\n"), "")
	de, ok := err.(*table.DataError)
	if !ok || de.Kind != table.InsufficientColumns {
		t.Errorf("expected InsufficientColumns, got %v", err)
	}
}

func TestAppendDerivedAndOperands(t *testing.T) {
	tab, err := table.FromArrays([]string{"x", "y"}, [][]float64{{1}, {2}})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := tab.AppendDerived("Filtered: y", []float64{3}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if tab.At(2).Role != "filtered" {
		t.Errorf("expected derived role")
	}
	ops := tab.OperandNames()
	if len(ops) != 6 || ops[3] != "-x" {
		t.Errorf("unexpected operand set %v", ops)
	}
	if err := tab.Append("x", nil); err == nil {
		t.Errorf("expected duplicate name rejection")
	}
}

func TestParseHeaderMergesUnitTokens(t *testing.T) {
	src := "# Vg (V)\tVb (mV)\tI (nA)\n0\t0\t0\n0\t1\t1\n"
	tab, err := table.ParseReader(strings.NewReader(src), "")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []string{"Vg (V)", "Vb (mV)", "I (nA)"}
	for i, n := range tab.Names() {
		if n != want[i] {
			t.Errorf("expected %q got %q", want[i], n)
		}
	}
	if tab.At(1).Unit != "mV" {
		t.Errorf("expected unit mV, got %q", tab.At(1).Unit)
	}
}
