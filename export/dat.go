package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/inspectra/gadget/dataset"
)

// WriteDat writes the processed arrays back out as a delimited text
// file in the same column layout a measurement file has, one sample
// per line with a # header naming the channels.
func WriteDat(w io.Writer, d *dataset.Dataset, comma rune) error {
	t := d.Processed()
	x, y, z := d.Channels()
	names := []string{x, y, z}
	if !d.Is2D() {
		names = []string{x, y}
	}
	if _, err := io.WriteString(w, "# "+join(names, comma)+"\n"); err != nil {
		return errors.Wrap(err, "export: write header")
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma
	rec := make([]string, len(t))
	ref := t[0]
	for i := 0; i < ref.Rows; i++ {
		for j := 0; j < ref.Cols; j++ {
			for k, g := range t {
				rec[k] = strconv.FormatFloat(g.At(i, j), 'g', -1, 64)
			}
			if err := cw.Write(rec); err != nil {
				return errors.Wrap(err, "export: write row")
			}
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "export: flush")
}

func join(names []string, comma rune) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += string(comma)
		}
		out += n
	}
	return out
}

// SaveDat writes the processed dataset to a tab-separated file.
func SaveDat(path string, d *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	return WriteDat(f, d, '\t')
}
