package watch_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/watch"
)

func writeSweeps(t *testing.T, path string, sweeps int) {
	t.Helper()
	out := "# Vg (V)\tVb (mV)\tI (nA)\n"
	for i := 0; i < sweeps; i++ {
		for j := 0; j < 4; j++ {
			out += fmt.Sprintf("%d\t%d\t%d\n", i, j, i*j)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWatcherReloadsOnGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.dat")
	writeSweeps(t, path, 3)

	mul, _ := filters.New("Multiply")
	mul.Method = "Z"
	mul.Settings[0] = "2"

	updates := make(chan *dataset.Dataset, 4)
	w := &watch.Watcher{
		Path:     path,
		Interval: 10 * time.Millisecond,
		Pipeline: filters.Pipeline{mul},
		OnUpdate: func(d *dataset.Dataset) { updates <- d },
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	var first *dataset.Dataset
	select {
	case first = <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial load")
	}
	if rows := first.Raw()[0].Rows; rows != 3 {
		t.Fatalf("initial load has %d sweeps, want 3", rows)
	}

	writeSweeps(t, path, 5)
	var second *dataset.Dataset
	select {
	case second = <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after growth")
	}
	if rows := second.Raw()[0].Rows; rows != 5 {
		t.Fatalf("reload has %d sweeps, want 5", rows)
	}
	if len(second.Filters) != 1 {
		t.Errorf("pipeline did not survive the reload")
	}
	if got := second.Processed().Z().At(2, 3); got != 12 {
		t.Errorf("processed value %v, want 12 (doubled)", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
