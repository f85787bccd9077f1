package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/git"
	"github.com/quantmind-br/reposnap/internal/utils"
)

const headsPrefix = "refs/heads/"

// BranchResolver chooses the branch to clone from the remote's heads
type BranchResolver struct {
	client git.Client
	logger *utils.Logger
}

// BranchResolverOptions contains options for creating a BranchResolver
type BranchResolverOptions struct {
	Client git.Client
	Logger *utils.Logger
}

// NewBranchResolver creates a new BranchResolver
func NewBranchResolver(opts BranchResolverOptions) *BranchResolver {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &BranchResolver{client: opts.Client, logger: logger}
}

// Resolve lists the remote heads of cloneURL and returns main or master
func (r *BranchResolver) Resolve(ctx context.Context, cloneURL string, timeout time.Duration) (string, error) {
	out, err := r.client.ListHeads(ctx, cloneURL, timeout)
	if err != nil {
		return "", gitError("failed to fetch remote branches: git ls-remote", err, timeout)
	}

	branches := ParseHeads(out)
	r.logger.Debug().
		Str("clone_url", cloneURL).
		Int("heads", len(branches)).
		Msg("Listed remote branches")

	return SelectBranch(branches)
}

// ParseHeads extracts branch names from ls-remote --heads output.
// Lines whose second field is not a refs/heads/ reference are ignored.
func ParseHeads(out []byte) []string {
	var branches []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		name, ok := strings.CutPrefix(fields[1], headsPrefix)
		if !ok || name == "" {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}

// SelectBranch returns the first default branch candidate present in branches
func SelectBranch(branches []string) (string, error) {
	for _, candidate := range domain.DefaultBranchCandidates {
		if slices.Contains(branches, candidate) {
			return candidate, nil
		}
	}
	return "", domain.NewGitCloneError("no candidate branch found: neither 'main' nor 'master' exists", nil)
}
