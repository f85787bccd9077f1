package snapshot_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sortedLister pins the listing order to lexical order
var sortedLister snapshot.DirLister = fs.ReadDir

// reversedLister pins the listing order to reverse lexical order
func reversedLister(fsys fs.FS, dir string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	slices.Reverse(entries)
	return entries, err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
}

func TestAggregator_ExactOutput(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/a.txt": "hello",
		"docs/b.txt": "world",
	})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: sortedLister})
	content, err := agg.Aggregate(root, "docs")

	require.NoError(t, err)
	assert.Equal(t, "File: docs/a.txt\nhello\n\nFile: docs/b.txt\nworld\n\n", content.String())
}

func TestAggregator_FollowsListingOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/a.txt": "hello",
		"docs/b.txt": "world",
	})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: reversedLister})
	content, err := agg.Aggregate(root, "docs")

	require.NoError(t, err)
	assert.Equal(t, "File: docs/b.txt\nworld\n\nFile: docs/a.txt\nhello\n\n", content.String())
}

func TestAggregator_DefaultListerReadsAllFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/x.go": "package x",
		"src/y.go": "package y",
		"src/z.go": "package z",
	})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "src")

	require.NoError(t, err)
	var names []string
	for _, f := range content.Files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"x.go", "y.go", "z.go"}, names)
}

func TestAggregator_DirectChildrenOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/a.txt":        "top",
		"docs/nested/b.txt": "deep",
		"outside.txt":       "linked",
	})
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs", "empty"), 0755))

	symlinks := map[string]string{
		"docs/c-link.txt": "../outside.txt",
		"docs/d-dirlink":  "nested",
		"docs/e-dangling": "../missing.txt",
	}
	for link, target := range symlinks {
		symlinkOrSkip(t, target, filepath.Join(root, filepath.FromSlash(link)))
	}

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: sortedLister})
	content, err := agg.Aggregate(root, "docs")

	require.NoError(t, err)
	assert.Equal(t, []domain.FileEntry{
		{Name: "a.txt", Text: "top"},
		{Name: "c-link.txt", Text: "linked"},
	}, content.Files)
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

func TestAggregator_SkipsLinksLeavingWorkspace(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, map[string]string{"README.md": "# repo"})
	writeTree(t, outside, map[string]string{"secret.env": "API_KEY=hunter2"})

	symlinkOrSkip(t, filepath.Join(outside, "secret.env"), filepath.Join(root, "leak.txt"))
	symlinkOrSkip(t, "../"+filepath.Base(outside)+"/secret.env", filepath.Join(root, "relative.txt"))
	symlinkOrSkip(t, "/nonexistent/reposnap/secret", filepath.Join(root, "gone.txt"))

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: sortedLister})
	content, err := agg.Aggregate(root, "")

	require.NoError(t, err)
	assert.Equal(t, "File: /README.md\n# repo\n\n", content.String())
	assert.NotContains(t, content.String(), "hunter2")
}

func TestAggregator_FolderLinkLeavingWorkspace(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.env": "API_KEY=hunter2"})
	symlinkOrSkip(t, outside, filepath.Join(root, "docs"))

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "docs")

	assert.Nil(t, content)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.EqualError(t, err, "Invalid URL error: folder docs resolves outside the repository")
}

func TestAggregator_FolderLinkInsideWorkspace(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"guide/a.md": "inside"})
	symlinkOrSkip(t, "guide", filepath.Join(root, "docs"))

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "docs")

	require.NoError(t, err)
	assert.Equal(t, "File: docs/a.md\ninside\n\n", content.String())
}

func TestAggregator_RootSubPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":  "# hello",
		".git/HEAD":  "ref: refs/heads/main",
		"docs/a.txt": "nested",
	})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: sortedLister})
	content, err := agg.Aggregate(root, "")

	require.NoError(t, err)
	assert.Equal(t, "File: /README.md\n# hello\n\n", content.String())
}

func TestAggregator_EmptyFolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "empty")

	require.NoError(t, err)
	assert.Empty(t, content.Files)
	assert.Equal(t, "", content.String())
}

func TestAggregator_LossyDecoding(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"docs/latin1.txt": "caf\xe9"})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "docs")

	require.NoError(t, err)
	require.Len(t, content.Files, 1)
	assert.Equal(t, "café", content.Files[0].Text)
}

func TestAggregator_MissingFolder(t *testing.T) {
	root := t.TempDir()

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "docs/guide")

	assert.Nil(t, content)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.EqualError(t, err, "Invalid URL error: folder docs/guide not found in the repository")
}

func TestAggregator_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"README.md": "hi"})

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{})
	content, err := agg.Aggregate(root, "README.md")

	assert.Nil(t, content)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.EqualError(t, err, "Invalid URL error: README.md is not a directory")
}

func TestAggregator_ListFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0755))

	failing := func(fs.FS, string) ([]fs.DirEntry, error) {
		return nil, errors.New("disk on fire")
	}

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: failing})
	content, err := agg.Aggregate(root, "docs")

	assert.Nil(t, content)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestAggregator_UnreadableFileDiscardsResult(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/a.txt": "hello",
		"docs/b.txt": "secret",
	})
	locked := filepath.Join(root, "docs", "b.txt")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0644) })

	agg := snapshot.NewAggregator(snapshot.AggregatorOptions{Lister: sortedLister})
	content, err := agg.Aggregate(root, "docs")

	assert.Nil(t, content)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Contains(t, err.Error(), "failed to read b.txt")
}
