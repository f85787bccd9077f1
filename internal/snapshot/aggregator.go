package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/quantmind-br/reposnap/internal/converter"
	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/utils"
)

// DirLister lists the direct children of dir within fsys
type DirLister func(fsys fs.FS, dir string) ([]fs.DirEntry, error)

// ReadDirUnsorted lists dir in the order the filesystem returns entries
func ReadDirUnsorted(fsys fs.FS, dir string) ([]fs.DirEntry, error) {
	f, err := fsys.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, ok := f.(fs.ReadDirFile)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: errors.New("not a directory")}
	}
	return d.ReadDir(-1)
}

// Aggregator reads the regular files directly under a directory
type Aggregator struct {
	list   DirLister
	logger *utils.Logger
}

// AggregatorOptions contains options for creating an Aggregator
type AggregatorOptions struct {
	// Lister defaults to ReadDirUnsorted
	Lister DirLister
	Logger *utils.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(opts AggregatorOptions) *Aggregator {
	list := opts.Lister
	if list == nil {
		list = ReadDirUnsorted
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Aggregator{list: list, logger: logger}
}

// Aggregate reads every regular file directly under root/subPath in listing
// order. Directories and special files are skipped. Relative symlinks are
// followed while they stay inside root; absolute, dangling or escaping links
// are skipped.
// Any read failure discards the whole result.
func (a *Aggregator) Aggregate(root, subPath string) (*domain.AggregatedContent, error) {
	dir := "."
	if subPath != "" {
		dir = path.Clean(subPath)
	}
	if !fs.ValidPath(dir) {
		return nil, domain.NewInvalidURLError(fmt.Sprintf("subpath %q escapes the repository", subPath))
	}

	r, err := os.OpenRoot(root)
	if err != nil {
		return nil, domain.NewIOError("failed to open workspace", err)
	}
	defer r.Close()
	fsys := r.FS()

	info, err := fs.Stat(fsys, dir)
	if err != nil {
		return nil, folderError(root, subPath, err)
	}
	if !info.IsDir() {
		return nil, domain.NewInvalidURLError(fmt.Sprintf("%s is not a directory", subPath))
	}

	entries, err := a.list(fsys, dir)
	if err != nil {
		return nil, domain.NewIOError(fmt.Sprintf("failed to list folder %s", subPath), err)
	}

	content := &domain.AggregatedContent{
		SubPath: subPath,
		Files:   make([]domain.FileEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		name := path.Join(dir, entry.Name())

		fi, err := fs.Stat(fsys, name)
		if err != nil {
			if entry.Type()&fs.ModeSymlink != 0 || errors.Is(err, fs.ErrNotExist) {
				a.logger.Debug().Str("entry", entry.Name()).Err(err).Msg("Skipping unresolvable entry")
				continue
			}
			return nil, domain.NewIOError(fmt.Sprintf("failed to stat %s", entry.Name()), err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, domain.NewIOError(fmt.Sprintf("failed to read %s", entry.Name()), err)
		}

		content.Files = append(content.Files, domain.FileEntry{
			Name: entry.Name(),
			Text: converter.DecodeText(data),
		})
	}

	a.logger.Debug().
		Str("sub_path", subPath).
		Int("entries", len(entries)).
		Int("files", len(content.Files)).
		Msg("Aggregated folder")

	return content, nil
}

// folderError classifies a failed stat of the aggregated folder
func folderError(root, subPath string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewInvalidURLError(fmt.Sprintf("folder %s not found in the repository", subPath))
	}

	resolvedRoot, rerr := filepath.EvalSymlinks(root)
	if rerr != nil {
		return domain.NewIOError(fmt.Sprintf("failed to stat folder %s", subPath), err)
	}
	target, terr := filepath.EvalSymlinks(filepath.Join(root, filepath.FromSlash(subPath)))
	if errors.Is(terr, fs.ErrNotExist) {
		return domain.NewInvalidURLError(fmt.Sprintf("folder %s not found in the repository", subPath))
	}
	if terr == nil {
		if rel, relErr := filepath.Rel(resolvedRoot, target); relErr != nil || !filepath.IsLocal(rel) {
			return domain.NewInvalidURLError(fmt.Sprintf("folder %s resolves outside the repository", subPath))
		}
	}
	return domain.NewIOError(fmt.Sprintf("failed to stat folder %s", subPath), err)
}
