// Package export writes processed datasets to interchange formats.
package export

import (
	"io"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"

	"github.com/inspectra/gadget/dataset"
)

// WriteFits streams the processed arrays of d to w as a FITS file, one
// 64-bit float image HDU per array.  Axis names and the current shape
// go into the header so the file is self-describing.
func WriteFits(w io.Writer, d *dataset.Dataset) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return errors.Wrap(err, "export: create fits")
	}
	defer fits.Close()

	x, y, z := d.Channels()
	axes := []string{x, y, z}
	if !d.Is2D() {
		axes = []string{x, y}
	}
	t := d.Processed()
	for i, g := range t {
		im := fitsio.NewImage(-64, []int{g.Cols, g.Rows})
		cards := []fitsio.Card{
			{Name: "LABEL", Value: d.Label, Comment: "source measurement"},
			{Name: "CHANNEL", Value: axes[i], Comment: "channel held by this HDU"},
			{Name: "NFILTERS", Value: len(d.Filters), Comment: "pipeline length at export"},
		}
		if err := im.Header().Append(cards...); err != nil {
			im.Close()
			return errors.Wrap(err, "export: fits header")
		}
		if err := im.Write(&g.Data); err != nil {
			im.Close()
			return errors.Wrap(err, "export: fits data")
		}
		if err := fits.Write(im); err != nil {
			im.Close()
			return errors.Wrap(err, "export: fits hdu")
		}
		im.Close()
	}
	return nil
}

// SaveFits writes the processed dataset to a file.
func SaveFits(path string, d *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	return WriteFits(f, d)
}
