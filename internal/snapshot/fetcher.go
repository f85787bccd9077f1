package snapshot

import (
	"context"
	"time"

	"github.com/quantmind-br/reposnap/internal/git"
	"github.com/quantmind-br/reposnap/internal/utils"
)

// Fetcher shallow-clones one branch into a fresh Workspace
type Fetcher struct {
	client  git.Client
	tempDir string
	logger  *utils.Logger
}

// FetcherOptions contains options for creating a Fetcher
type FetcherOptions struct {
	Client git.Client
	// TempDir is the parent of every workspace; empty means os.TempDir
	TempDir string
	Logger  *utils.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(opts FetcherOptions) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Fetcher{
		client:  opts.Client,
		tempDir: opts.TempDir,
		logger:  logger,
	}
}

// Fetch clones branch of cloneURL at depth 1 into a new Workspace.
// The caller owns the returned Workspace and must Release it. On failure
// the workspace is already gone.
func (f *Fetcher) Fetch(ctx context.Context, cloneURL, branch string, timeout time.Duration) (*Workspace, error) {
	ws, err := NewWorkspace(f.tempDir)
	if err != nil {
		return nil, err
	}

	cloned := false
	defer func() {
		if cloned {
			return
		}
		if rerr := ws.Release(); rerr != nil {
			f.logger.Warn().Err(rerr).Str("workspace", ws.Path()).Msg("Failed to remove workspace")
		}
	}()

	f.logger.Info().
		Str("clone_url", cloneURL).
		Str("branch", branch).
		Dur("timeout", timeout).
		Msg("Cloning repository")

	if err := f.client.ShallowClone(ctx, cloneURL, branch, ws.Path(), timeout); err != nil {
		return nil, gitError("git clone", err, timeout)
	}

	cloned = true
	return ws, nil
}
