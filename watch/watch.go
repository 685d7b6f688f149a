// Package watch polls a measurement file that an acquisition loop is
// still appending to and reloads its dataset whenever it grows, so the
// processed view tracks the running sweep.
package watch

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
)

// Watcher reloads one measurement file as it grows.  The filter
// pipeline and channel selection survive reloads; only the raw arrays
// are replaced.
type Watcher struct {
	Path      string
	Delimiter string

	// Interval is the slowest useful poll cadence; reloads are also
	// capped by it so a fast-growing file cannot starve the caller.
	Interval time.Duration

	// Pipeline is applied to every load.
	Pipeline filters.Pipeline

	// Channels overrides the default channel selection when the x
	// name is non-empty; an empty z selects a 1D trace.
	Channels [3]string

	// OnUpdate runs after every successful reload with the refreshed
	// dataset.  It is called from Run's goroutine.
	OnUpdate func(*dataset.Dataset)

	lastSize int64
	cur      *dataset.Dataset
}

// Dataset returns the most recently loaded dataset, nil before the
// first successful poll.
func (w *Watcher) Dataset() *dataset.Dataset { return w.cur }

// Run polls until ctx is cancelled.  The first load happens
// immediately; a file that does not exist yet is waited for rather
// than treated as fatal.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Second
	}
	limiter := rate.NewLimiter(rate.Every(w.Interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := w.poll(); err != nil {
			log.Printf("watch: %s: %v", w.Path, err)
		}
	}
}

// poll checks the file size and reloads on growth.
func (w *Watcher) poll() error {
	fi, err := os.Stat(w.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "stat")
	}
	if fi.Size() == w.lastSize {
		return nil
	}
	d, err := w.reload()
	if err != nil {
		return err
	}
	w.lastSize = fi.Size()
	w.cur = d
	if w.OnUpdate != nil {
		w.OnUpdate(d)
	}
	return nil
}

// reload parses the file again, retrying briefly because the writer
// may be mid-line, then applies the configured channel selection and
// pipeline.
func (w *Watcher) reload() (*dataset.Dataset, error) {
	var d *dataset.Dataset
	op := func() error {
		var err error
		d, err = dataset.Load(w.Path, w.Delimiter)
		return err
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         500 * time.Millisecond,
		MaxElapsedTime:      2 * time.Second,
		Clock:               backoff.SystemClock})
	if err != nil {
		return nil, errors.Wrap(err, "reload")
	}
	if w.Channels[0] != "" {
		if serr := d.SelectChannels(w.Channels[0], w.Channels[1], w.Channels[2]); serr != nil {
			// channel set changed underneath us, fall back to defaults
			log.Printf("watch: %s: %v", w.Path, serr)
		}
	}
	d.Filters = append(filters.Pipeline(nil), w.Pipeline...)
	if err := d.Refresh(); err != nil {
		return nil, err
	}
	return d, nil
}
