package snapshot_test

import (
	"testing"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		cloneURL string
		repo     string
		subPath  string
		treeRef  string
	}{
		{
			name:     "owner and repo only",
			url:      "https://github.com/octo/hello",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
		},
		{
			name:     "trailing slash",
			url:      "https://github.com/octo/hello/",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
		},
		{
			name:     "git suffix trimmed",
			url:      "https://github.com/octo/hello.git",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
		},
		{
			name:     "trailing segments form the subpath",
			url:      "https://github.com/octo/hello/docs/guide/intro",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "docs/guide/intro",
		},
		{
			name:     "tree marker skipped",
			url:      "https://github.com/octo/hello/tree/main/docs/guide",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "docs/guide",
			treeRef:  "main",
		},
		{
			name:     "tree marker without folder",
			url:      "https://github.com/octo/hello/tree/main",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			treeRef:  "main",
		},
		{
			name:     "lone tree segment is a folder",
			url:      "https://github.com/octo/hello/tree",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "tree",
		},
		{
			name:     "tree deeper in the path is a folder",
			url:      "https://github.com/octo/hello/docs/tree/x",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "docs/tree/x",
		},
		{
			name:     "empty segments dropped",
			url:      "https://github.com//octo//hello///docs//api",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "docs/api",
		},
		{
			name:     "percent-encoded segment decoded",
			url:      "https://github.com/octo/hello/my%20docs",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "my docs",
		},
		{
			name:     "query and fragment ignored",
			url:      "https://github.com/octo/hello/docs?tab=readme#top",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "docs",
		},
		{
			name:     "other host still maps to github",
			url:      "http://example.com/octo/hello/src",
			cloneURL: "https://github.com/octo/hello.git",
			repo:     "hello",
			subPath:  "src",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := snapshot.ResolveURL(tt.url)

			require.NoError(t, err)
			assert.Equal(t, tt.cloneURL, target.CloneURL)
			assert.Equal(t, "octo", target.Owner)
			assert.Equal(t, tt.repo, target.Repo)
			assert.Equal(t, tt.subPath, target.SubPath)
			assert.Equal(t, tt.treeRef, target.TreeRef)
		})
	}
}

// TestResolveURL_SubPathOffset pins the offset convention: without a tree
// marker the subpath starts at segment 2, with one it starts at segment 4.
func TestResolveURL_SubPathOffset(t *testing.T) {
	plain, err := snapshot.ResolveURL("https://github.com/o/r/s2/s3/s4")
	require.NoError(t, err)
	assert.Equal(t, "s2/s3/s4", plain.SubPath)

	marked, err := snapshot.ResolveURL("https://github.com/o/r/tree/s3/s4")
	require.NoError(t, err)
	assert.Equal(t, "s4", marked.SubPath)
	assert.Equal(t, "s3", marked.TreeRef)
}

func TestResolveURL_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
		kind error
	}{
		{name: "unparseable", url: "://github.com/octo/hello", kind: domain.ErrURLParse},
		{name: "no scheme", url: "github.com/octo/hello", kind: domain.ErrURLParse},
		{name: "no host", url: "file:///octo/hello", kind: domain.ErrURLParse},
		{name: "empty", url: "", kind: domain.ErrURLParse},
		{name: "no segments", url: "https://github.com/", kind: domain.ErrInvalidURL},
		{name: "owner only", url: "https://github.com/octo", kind: domain.ErrInvalidURL},
		{name: "empty repo name", url: "https://github.com/octo/.git", kind: domain.ErrInvalidURL},
		{name: "subpath escapes", url: "https://github.com/octo/hello/../../etc", kind: domain.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := snapshot.ResolveURL(tt.url)

			assert.Nil(t, target)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestResolveURL_Deterministic(t *testing.T) {
	const url = "https://github.com/octo/hello/tree/dev/a/b"

	first, err := snapshot.ResolveURL(url)
	require.NoError(t, err)
	second, err := snapshot.ResolveURL(url)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
