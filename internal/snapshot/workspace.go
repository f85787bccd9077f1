package snapshot

import (
	"os"
	"sync"

	"github.com/quantmind-br/reposnap/internal/domain"
)

const workspacePattern = "reposnap-*"

// Workspace is a temporary directory owned by exactly one fetch
type Workspace struct {
	dir  string
	once sync.Once
	err  error
}

// NewWorkspace creates a uniquely named directory under parent.
// An empty parent means os.TempDir.
func NewWorkspace(parent string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, workspacePattern)
	if err != nil {
		return nil, domain.NewIOError("failed to create workspace", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace directory
func (w *Workspace) Path() string {
	return w.dir
}

// Release removes the workspace and everything in it. Safe to call repeatedly.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}
