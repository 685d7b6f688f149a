package main

import (
	"context"
	"log"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/gadgethttp"
	"github.com/inspectra/gadget/session"
	"github.com/inspectra/gadget/watch"
)

// DatasetSpec configures one served measurement file.
type DatasetSpec struct {
	// Label names the dataset in URLs; defaults to the path.
	Label string `yaml:"label"`

	// Path is the measurement file on the server's disk.
	Path string `yaml:"path"`

	// Delimiter separates columns; empty means any whitespace.
	Delimiter string `yaml:"delimiter"`

	// Filters optionally names a saved filter file to apply on load.
	Filters string `yaml:"filters"`

	// Live enables polling for file growth, for sweeps still running.
	Live bool `yaml:"live"`
}

// Config is the top-level YAML configuration.
type Config struct {
	Addr     string        `yaml:"addr"`
	Datasets []DatasetSpec `yaml:"datasets"`
}

// BuildServer loads every configured dataset into a fresh HTTP server
// and starts a watcher per live entry.  Watchers stop when ctx is
// cancelled.
func BuildServer(ctx context.Context, c Config) (chi.Router, error) {
	srv := gadgethttp.NewServer()
	for _, spec := range c.Datasets {
		label := spec.Label
		if label == "" {
			label = spec.Path
		}
		pipeline, err := loadPipeline(spec.Filters)
		if err != nil {
			return nil, err
		}
		if spec.Live {
			w := &watch.Watcher{
				Path:      spec.Path,
				Delimiter: spec.Delimiter,
				Pipeline:  pipeline,
				OnUpdate: func(d *dataset.Dataset) {
					srv.Add(label, d)
				},
			}
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					log.Printf("watcher for %s stopped: %v", label, err)
				}
			}()
			continue
		}
		d, err := dataset.Load(spec.Path, spec.Delimiter)
		if err != nil {
			return nil, err
		}
		d.Filters = pipeline
		if err := d.Refresh(); err != nil {
			return nil, err
		}
		srv.Add(label, d)
	}

	root := chi.NewRouter()
	root.Use(middleware.Logger)
	srv.RT().Bind(root)
	return root, nil
}

func loadPipeline(path string) (filters.Pipeline, error) {
	if path == "" {
		return nil, nil
	}
	return session.Load(path)
}
