package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// plainCloneFunc matches git.PlainCloneContext
type plainCloneFunc func(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error)

// NativeClient implements Client in-process with go-git
type NativeClient struct {
	plainClone plainCloneFunc
}

var _ Client = (*NativeClient)(nil)

// NewNativeClient creates a NativeClient
func NewNativeClient() *NativeClient {
	return &NativeClient{plainClone: git.PlainCloneContext}
}

// ListHeads lists the remote's branches and formats them like ls-remote --heads
func (c *NativeClient) ListHeads(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, wrapContextError(ctx, timeout, err)
	}

	var out bytes.Buffer
	for _, ref := range refs {
		if !ref.Name().IsBranch() {
			continue
		}
		fmt.Fprintf(&out, "%s\t%s\n", ref.Hash(), ref.Name())
	}
	return out.Bytes(), nil
}

// ShallowClone clones a single branch at depth 1 into dest
func (c *NativeClient) ShallowClone(ctx context.Context, url, branch, dest string, timeout time.Duration) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	_, err := c.plainClone(ctx, dest, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
		Tags:          git.NoTags,
	})
	if err != nil {
		return wrapContextError(ctx, timeout, err)
	}
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func wrapContextError(ctx context.Context, timeout time.Duration, err error) error {
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return fmt.Errorf("%w: killed after %s: %v", ErrTimeout, timeout, err)
	case ctxErr != nil:
		return fmt.Errorf("%w: %w", ErrRemote, ctxErr)
	}
	return fmt.Errorf("%w: %v", ErrRemote, err)
}
