// Package paths resolves ecoscan's on-disk locations relative to a project
// root.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDirName is the per-project directory holding config and history.
const DataDirName = ".ecoscan"

// DataDir returns the data directory for root.
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir(root string) (string, error) {
	dir := DataDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// ConfigPath returns the TOML config file path for root.
func ConfigPath(root string) string {
	return filepath.Join(DataDir(root), "config.toml")
}

// Resolve makes p absolute against root unless it already is.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// RelativeTo converts path to a slash-separated path relative to dir,
// resolving symlinks where the targets exist.
func RelativeTo(path, dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = path
	}
	base, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		base = dir
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithin reports whether path lies inside dir.
func IsWithin(path, dir string) bool {
	rel, err := RelativeTo(path, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

// SafeFileName reports whether name is a plain file name with no
// directory components.
func SafeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
