package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/git"
)

// gitError maps a git client failure onto the fetch error taxonomy
func gitError(op string, err error, timeout time.Duration) *domain.FetchError {
	switch {
	case errors.Is(err, git.ErrLaunch):
		return domain.NewIOError("failed to launch git", err)
	case errors.Is(err, git.ErrTimeout):
		return domain.NewGitCloneError(fmt.Sprintf("%s timed out after %s", op, formatTimeout(timeout)), nil)
	default:
		return domain.NewGitCloneError(op+" failed", err)
	}
}

func formatTimeout(d time.Duration) string {
	if d > 0 && d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int64(d/time.Second))
	}
	return d.String()
}
