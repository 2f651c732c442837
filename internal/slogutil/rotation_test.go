package slogutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"", 0},
		{"invalid", 0},
		{"100", 100},
		{"100B", 100},
		{"1KB", 1000},
		{"1KiB", 1024},
		{"10 MB", 10 * 1000 * 1000},
		{"1MiB", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 4; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	// 4 writes of 30 bytes at a 50 byte limit: three rotations, two kept.
	for _, p := range []string{path, path + ".1", path + ".2"} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
		if len(data) != 30 {
			t.Errorf("%s has %d bytes, want 30", p, len(data))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two generations should be kept")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.log")

	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = rf.Write([]byte("first line\n"))
	_, _ = rf.Write([]byte("second\n"))
	_ = rf.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("file = %q, want only the newest record", data)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no generations should be kept")
	}
}

func TestNewRotatingFileLogger(t *testing.T) {
	dir := t.TempDir()

	t.Run("rotating", func(t *testing.T) {
		path := filepath.Join(dir, "rotating.log")
		logger, closer, err := NewRotatingFileLogger(path, slog.LevelInfo, "1MB", 3)
		if err != nil {
			t.Fatalf("NewRotatingFileLogger failed: %v", err)
		}
		logger.Info("hello", "k", "v")
		_ = closer.Close()

		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "hello | k=v") {
			t.Errorf("log = %q", data)
		}
		if _, ok := closer.(*RotatingFile); !ok {
			t.Errorf("closer = %T, want *RotatingFile", closer)
		}
	})

	t.Run("plain without a size", func(t *testing.T) {
		path := filepath.Join(dir, "plain.log")
		_, closer, err := NewRotatingFileLogger(path, slog.LevelInfo, "", 3)
		if err != nil {
			t.Fatal(err)
		}
		defer closer.Close()
		if _, ok := closer.(*os.File); !ok {
			t.Errorf("closer = %T, want *os.File", closer)
		}
	})
}
