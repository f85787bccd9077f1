package snapshot

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/reposnap/internal/domain"
)

const (
	cloneURLFormat = "https://github.com/%s/%s.git"
	treeMarker     = "tree"
)

// ResolveURL parses a GitHub web URL into a clone target.
//
// Segments 0 and 1 are the owner and repository. A "tree/<ref>" pair right
// after them is skipped and recorded as TreeRef; every remaining segment
// forms the subpath, in input order.
func ResolveURL(rawURL string) (*domain.ResolvedTarget, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, domain.NewURLParseError("", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, domain.NewURLParseError(fmt.Sprintf("%q is not an absolute URL", rawURL), nil)
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return nil, domain.NewInvalidURLError(fmt.Sprintf("%q does not name an owner and a repository", rawURL))
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return nil, domain.NewInvalidURLError(fmt.Sprintf("%q has an empty repository name", rawURL))
	}

	target := &domain.ResolvedTarget{
		CloneURL: fmt.Sprintf(cloneURLFormat, owner, repo),
		Owner:    owner,
		Repo:     repo,
	}

	rest := segments[2:]
	if len(rest) >= 2 && rest[0] == treeMarker {
		target.TreeRef = rest[1]
		rest = rest[2:]
	}

	target.SubPath = strings.Join(rest, "/")
	if target.SubPath != "" && !filepath.IsLocal(filepath.FromSlash(target.SubPath)) {
		return nil, domain.NewInvalidURLError(fmt.Sprintf("subpath %q escapes the repository", target.SubPath))
	}

	return target, nil
}

// splitPath splits a URL path into its non-empty segments
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
