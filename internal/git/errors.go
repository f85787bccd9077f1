package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLaunch indicates the process could not be started
	ErrLaunch = errors.New("failed to launch process")

	// ErrTimeout indicates the operation was killed when its timeout expired
	ErrTimeout = errors.New("operation timed out")

	// ErrRemote indicates an in-process remote operation failed
	ErrRemote = errors.New("remote operation failed")

	// ErrUnknownBackend indicates an unsupported client backend name
	ErrUnknownBackend = errors.New("unknown git backend")
)

// ExitError is returned when a git command exits non-zero
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.Code, stderr)
}
