// Package vault maps fragment names and keyfiles onto an on-disk
// directory. It is the only place the fragment directory structure is
// spelled out; the engine itself never sees a path.
package vault

import (
	"os"
	"path/filepath"
)

const (
	// FragmentExt is appended to generated fragment names on disk.
	FragmentExt = ".jig"
	// KeyfileExt is appended to the original file name for the keyfile.
	KeyfileExt = ".jgk"
)

// Layout defines the on-disk layout of one fragment directory.
type Layout struct {
	Root string
}

// NewLayout builds a layout rooted at the given directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// EnsureRoot creates the fragment directory if needed.
func (l Layout) EnsureRoot() error {
	return os.MkdirAll(l.Root, 0o755)
}

// FragmentPath returns the path of a fragment file by its opaque name.
func (l Layout) FragmentPath(name string) string {
	return filepath.Join(l.Root, name+FragmentExt)
}

// KeyfilePath returns the keyfile path for an original file name.
func (l Layout) KeyfilePath(originalName string) string {
	return filepath.Join(l.Root, originalName+KeyfileExt)
}

// WriteFragment persists one fragment under its opaque name.
func (l Layout) WriteFragment(name string, data []byte) error {
	return os.WriteFile(l.FragmentPath(name), data, 0o644)
}

// Lookup returns a fragment resolver reading from this layout, suitable
// for the engine's decode path.
func (l Layout) Lookup() func(name string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return os.ReadFile(l.FragmentPath(name))
	}
}
