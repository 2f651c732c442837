package main

import (
	"os"
	"path/filepath"
	"testing"

	ecoerrors "ecoscan/internal/errors"
)

func TestReadPythonFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "app.py")
	if err := os.WriteFile(good, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("reads a python file", func(t *testing.T) {
		got, err := readPythonFile(good)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "x = 1\n" {
			t.Errorf("got %q", got)
		}
	})

	tests := []struct {
		name string
		path string
		code ecoerrors.ErrorCode
	}{
		{"wrong extension", filepath.Join(dir, "notes.txt"), ecoerrors.UnsupportedFile},
		{"missing file", filepath.Join(dir, "missing.py"), ecoerrors.FileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPythonFile(tt.path)
			if !ecoerrors.HasCode(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}
