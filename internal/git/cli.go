package git

import (
	"context"
	"strings"
	"time"
)

// DefaultBinary is the git executable looked up on PATH
const DefaultBinary = "git"

// CLIClient implements Client by running the git binary through a Runner
type CLIClient struct {
	runner Runner
	binary string
}

var _ Client = (*CLIClient)(nil)

// NewCLIClient creates a CLIClient; an empty binary means DefaultBinary
func NewCLIClient(runner Runner, binary string) *CLIClient {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIClient{runner: runner, binary: binary}
}

// ListHeads runs git ls-remote --heads
func (c *CLIClient) ListHeads(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	res, err := c.run(ctx, timeout, "ls-remote", "--heads", url)
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// ShallowClone runs git clone --depth 1 --single-branch --branch
func (c *CLIClient) ShallowClone(ctx context.Context, url, branch, dest string, timeout time.Duration) error {
	_, err := c.run(ctx, timeout,
		"clone",
		"--depth", "1",
		"--single-branch",
		"--branch", branch,
		"--quiet",
		url,
		dest,
	)
	return err
}

func (c *CLIClient) run(ctx context.Context, timeout time.Duration, args ...string) (*Result, error) {
	res, err := c.runner.Run(ctx, timeout, c.binary, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ExitError{
			Command: c.binary + " " + args[0],
			Code:    res.ExitCode,
			Stderr:  string(res.Stderr),
		}
	}
	return res, nil
}

// Available reports whether the git binary can be run
func (c *CLIClient) Available(ctx context.Context) (string, bool) {
	res, err := c.runner.Run(ctx, 5*time.Second, c.binary, "--version")
	if err != nil || res.ExitCode != 0 {
		return "", false
	}
	return strings.TrimSpace(string(res.Stdout)), true
}
