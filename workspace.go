package mkresume

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-mkresume/internal/fileutil"
)

// workspace is the scratch directory of one render. The compiler runs
// there and every intermediate file stays inside it.
type workspace struct {
	dir string
}

// newWorkspace creates a fresh directory under parent, or under the system
// temp directory when parent is empty.
func newWorkspace(parent string) (*workspace, error) {
	dir, err := os.MkdirTemp(parent, "mkresume-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	return &workspace{dir: dir}, nil
}

// Path returns the absolute path of name inside the workspace.
func (w *workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.FromSlash(name))
}

// local rejects names that would land outside the workspace.
func (w *workspace) local(name string) (string, error) {
	name = filepath.FromSlash(name)
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q is not a local path", ErrWorkspace, name)
	}
	return filepath.Join(w.dir, name), nil
}

// Write stores data under name, creating parent directories.
func (w *workspace) Write(name string, data []byte) error {
	dst, err := w.local(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	return nil
}

// CopyIn copies the file at src to name.
func (w *workspace) CopyIn(src, name string) error {
	dst, err := w.local(name)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCopy, src, err)
	}
	return nil
}

// Remove deletes the workspace and everything in it.
func (w *workspace) Remove() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	return nil
}
