package git

import (
	"context"
	"time"
)

// Result is the outcome of a process that ran to completion
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes an external command bounded by a timeout.
// A non-zero exit is reported through Result.ExitCode, not as an error.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error)
}

// Client defines the remote operations a snapshot needs
type Client interface {
	// ListHeads returns ls-remote --heads formatted output: "<sha>\trefs/heads/<name>" per line
	ListHeads(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	// ShallowClone checks out branch at depth 1 into dest
	ShallowClone(ctx context.Context, url, branch, dest string, timeout time.Duration) error
}
