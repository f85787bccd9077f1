package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on pipes held open by killed children
const waitDelay = 2 * time.Second

// ExecRunner implements Runner with os/exec
type ExecRunner struct {
	// Env is appended to the current process environment
	Env []string
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates an ExecRunner with extra environment entries
func NewExecRunner(env ...string) *ExecRunner {
	return &ExecRunner{Env: env}
}

// Run starts name with args and waits for it, killing it when timeout expires.
// A zero timeout leaves the command bounded only by ctx.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunch, name, err)
	}

	err := cmd.Wait()
	result := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	return result, waitError(ctx, err, name, timeout)
}

// waitError classifies the error returned by Wait. A non-zero exit is carried
// by Result, and the context is only consulted when Wait failed.
func waitError(ctx context.Context, err error, name string, timeout time.Duration) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s killed after %s", ErrTimeout, name, timeout)
		}
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
