package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDataDir(t *testing.T) {
	root := t.TempDir()
	dir, err := EnsureDataDir(root)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	if dir != filepath.Join(root, ".ecoscan") {
		t.Errorf("unexpected dir %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory to exist: %v", err)
	}
	if _, err := EnsureDataDir(root); err != nil {
		t.Errorf("second EnsureDataDir failed: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	if got := ConfigPath("/repo"); got != filepath.Join("/repo", ".ecoscan", "config.toml") {
		t.Errorf("ConfigPath = %s", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		root, p, want string
	}{
		{"/repo", "uploads", filepath.Join("/repo", "uploads")},
		{"/repo", "/abs/out", "/abs/out"},
		{"/repo", "", ""},
	}
	for _, tt := range tests {
		if got := Resolve(tt.root, tt.p); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.root, tt.p, got, tt.want)
		}
	}
}

func TestIsWithin(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "optimized_a.py")
	if err := os.WriteFile(inside, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if !IsWithin(inside, dir) {
		t.Errorf("%s should be within %s", inside, dir)
	}
	if IsWithin(filepath.Join(dir, "..", "other.py"), dir) {
		t.Error("parent path should not be within dir")
	}
	if !IsWithin(filepath.Join(dir, "..foo"), dir) {
		t.Error("a name starting with dots is still inside")
	}
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]bool{
		"optimized_a.py": true,
		"..":             false,
		".":              false,
		"":               false,
		"../etc/passwd":  false,
		"a/b.py":         false,
		`a\b.py`:         false,
	}
	for name, want := range tests {
		if got := SafeFileName(name); got != want {
			t.Errorf("SafeFileName(%q) = %v, want %v", name, got, want)
		}
	}
}
