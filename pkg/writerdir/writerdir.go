// Package writerdir encapsulates all path knowledge for the per-user
// localwriter data directory. It provides a Dir value object with accessors
// for the preferences file and the diagnostic log.
package writerdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Name is the directory name used under the user config directory.
const Name = "localwriter"

// Dir is a value object that resolves paths within the data directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create it.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Default returns the Dir under the user's config directory
// (e.g. ~/.config/localwriter).
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("writerdir: resolve user config dir: %w", err)
	}

	return New(filepath.Join(base, Name)), nil
}

// Root returns the absolute path to the data directory.
func (d Dir) Root() string { return d.root }

// PreferencesPath returns the path to the persisted preferences file.
func (d Dir) PreferencesPath() string { return filepath.Join(d.root, "preferences.yaml") }

// LogPath returns the path to the diagnostic log file.
func (d Dir) LogPath() string { return filepath.Join(d.root, "localwriter.log") }

// Exists reports whether the root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}

// EnsureStructure creates the root directory if it is missing. It is safe to
// call multiple times.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("writerdir: create dir: %w", err)
	}

	return nil
}
