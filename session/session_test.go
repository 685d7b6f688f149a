package session_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inspectra/gadget/filters"
	"github.com/inspectra/gadget/session"
)

func samplePipeline(t *testing.T) filters.Pipeline {
	t.Helper()
	deriv, err := filters.New("Derivative")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	crop, err := filters.New("Crop Y")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	crop.Method = "Abs"
	crop.Settings = [2]string{"-0.5", "0.5"}
	crop.Enabled = false
	return filters.Pipeline{deriv, crop}
}

func TestRoundTrip(t *testing.T) {
	p := samplePipeline(t)
	path := filepath.Join(t.TempDir(), "filters.yaml")
	if err := session.Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := session.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(back) != len(p) {
		t.Fatalf("got %d filters, want %d", len(back), len(p))
	}
	for i := range p {
		if back[i] != p[i] {
			t.Errorf("filter %d changed in round trip: %+v != %+v", i, back[i], p[i])
		}
	}
}

func TestChecksumDetectsTampering(t *testing.T) {
	b, err := session.Marshal(samplePipeline(t))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	tampered := bytes.Replace(b, []byte("Derivative"), []byte("Derivativa"), 1)
	if _, err := session.Unmarshal(tampered); !errors.Is(err, session.ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestMissingFooter(t *testing.T) {
	if _, err := session.Unmarshal([]byte("version: 1\nfilters: []\n")); err == nil {
		t.Error("document without a footer should fail")
	}
}

func TestUnknownFilterRejected(t *testing.T) {
	doc, err := session.Marshal(filters.Pipeline{{Name: "Sharpenate"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := session.Unmarshal(doc); err == nil {
		t.Error("unknown transform should fail validation on load")
	}
}
