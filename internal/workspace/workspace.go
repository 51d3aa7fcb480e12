// Package workspace gives each job a private scratch directory. Everything a
// job downloads or transcodes lives there and is removed by Cleanup.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

type Manager struct {
	fs   afero.Fs
	root string
}

func NewManager(fs afero.Fs, root string) *Manager {
	return &Manager{fs: fs, root: root}
}

// Open creates a fresh workspace named by a random UUID under the root.
func (m *Manager) Open() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.root, id)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return &Workspace{ID: id, fs: m.fs, dir: dir}, nil
}

type Workspace struct {
	ID  string
	fs  afero.Fs
	dir string
}

func (w *Workspace) Dir() string { return w.dir }

func (w *Workspace) Fs() afero.Fs { return w.fs }

func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Save streams r into the named file and returns its path and size.
func (w *Workspace) Save(name string, r io.Reader) (string, int64, error) {
	path := w.Path(name)
	f, err := w.fs.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	return path, n, nil
}

// Cleanup removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Cleanup() {
	if err := w.fs.RemoveAll(w.dir); err != nil {
		slog.Warn("workspace cleanup failed", "workspace", w.ID, "error", err)
	}
}
