//go:build cgo

package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ecoscan/internal/labelling"
)

func TestLabel(t *testing.T) {
	cfg := testDatasetConfig(t, "http://unused")
	cfg.Workers = 3
	if err := os.MkdirAll(cfg.RawDir, 0755); err != nil {
		t.Fatal(err)
	}

	samples := map[string]string{
		"b.py":   "def f():\n    return None\n",
		"a.py":   "for i in x:\n    for j in y:\n        pass\n",
		"bad.py": "def (:\n",
		"c.py":   "def g():\n    pass\n\ndef g():\n    pass\n",
	}
	for name, src := range samples {
		if err := os.WriteFile(filepath.Join(cfg.RawDir, name), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(cfg.RawDir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	records, err := NewPipeline(cfg, nil, nil).Label(context.Background())
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	order := []string{"a.py", "b.py", "bad.py", "c.py"}
	for i, name := range order {
		if records[i].Filename != name {
			t.Errorf("records[%d] = %s, want %s", i, records[i].Filename, name)
		}
	}
	if records[0].NestedLoops != 1 {
		t.Errorf("a.py nested loops = %d, want 1", records[0].NestedLoops)
	}
	if records[1].RedundantComputations != 1 {
		t.Errorf("b.py redundant computations = %d, want 1", records[1].RedundantComputations)
	}
	if records[2].Smells != (labelling.Smells{}) {
		t.Errorf("bad.py should have zero counts, got %+v", records[2].Smells)
	}
	if records[3].RepetitiveCode != 1 {
		t.Errorf("c.py repetitive code = %d, want 1", records[3].RepetitiveCode)
	}

	read, err := ReadCSV(cfg.CSVPath)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(read) != 4 || read[0].Filename != "a.py" {
		t.Errorf("CSV round trip = %+v", read)
	}
}
