package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/utils"
)

// DefaultDir is the output directory used when none is configured
const DefaultDir = "output"

const snapshotExt = ".txt"

// Writer persists aggregated snapshots as text files
type Writer struct {
	baseDir string
	dryRun  bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir string
	DryRun  bool
}

var _ domain.Writer = (*Writer)(nil)

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = DefaultDir
	}

	return &Writer{
		baseDir: utils.ExpandPath(opts.BaseDir),
		dryRun:  opts.DryRun,
	}
}

// FileName derives the snapshot file name: the repository name, then the
// subpath with slashes replaced by underscores, then .txt. An empty subpath
// yields just <repo>.txt.
func FileName(target *domain.ResolvedTarget) string {
	name := strings.TrimSuffix(target.Repo, ".git")
	if target.SubPath != "" {
		name += "_" + strings.ReplaceAll(target.SubPath, "/", "_")
	}
	return name + snapshotExt
}

// Path returns where the snapshot of target is written
func (w *Writer) Path(target *domain.ResolvedTarget) string {
	return filepath.Join(w.baseDir, FileName(target))
}

// Write saves content and returns the file path, overwriting earlier snapshots
func (w *Writer) Write(ctx context.Context, target *domain.ResolvedTarget, content *domain.AggregatedContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := w.Path(target)
	if w.dryRun {
		return path, nil
	}

	if err := utils.EnsureDir(path); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFileAtomic(path, []byte(content.String())); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over path,
// so concurrent writers of the same snapshot never interleave.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// BaseDir returns the output directory
func (w *Writer) BaseDir() string {
	return w.baseDir
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (w *Writer) EnsureBaseDir() error {
	return os.MkdirAll(w.baseDir, 0755)
}

// CheckWritable creates the base directory and probes it with a temporary file
func (w *Writer) CheckWritable() error {
	if err := w.EnsureBaseDir(); err != nil {
		return err
	}
	f, err := os.CreateTemp(w.baseDir, ".reposnap-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
