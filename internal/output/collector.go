package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quantmind-br/reposnap/internal/domain"
)

// DefaultIndexFile is the name of the batch index written next to snapshots
const DefaultIndexFile = "index.json"

// SnapshotEntry describes one persisted snapshot
type SnapshotEntry struct {
	URL      string `json:"url"`
	CloneURL string `json:"clone_url"`
	SubPath  string `json:"sub_path,omitempty"`
	Branch   string `json:"branch"`
	File     string `json:"file"`
	Files    int    `json:"files"`
	Bytes    int    `json:"bytes"`
}

// SnapshotIndex is the JSON document written by IndexCollector.Flush
type SnapshotIndex struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	Manifest       string          `json:"manifest,omitempty"`
	TotalSnapshots int             `json:"total_snapshots"`
	Snapshots      []SnapshotEntry `json:"snapshots"`
}

// IndexCollector gathers the snapshots of a batch run. Safe for concurrent use.
type IndexCollector struct {
	mu        sync.RWMutex
	snapshots []SnapshotEntry
	manifest  string
	baseDir   string
	filename  string
	enabled   bool
}

// CollectorOptions contains options for creating an IndexCollector
type CollectorOptions struct {
	BaseDir  string
	Filename string
	Manifest string
	Enabled  bool
}

// NewIndexCollector creates a new IndexCollector
func NewIndexCollector(opts CollectorOptions) *IndexCollector {
	filename := opts.Filename
	if filename == "" {
		filename = DefaultIndexFile
	}
	return &IndexCollector{
		snapshots: make([]SnapshotEntry, 0),
		manifest:  opts.Manifest,
		baseDir:   opts.BaseDir,
		filename:  filename,
		enabled:   opts.Enabled,
	}
}

// Add records a successful fetch whose content was persisted
func (c *IndexCollector) Add(url string, result *domain.FetchResult) {
	if !c.enabled || result == nil || result.PersistedPath == "" {
		return
	}

	rel, err := filepath.Rel(c.baseDir, result.PersistedPath)
	if err != nil {
		rel = result.PersistedPath
	}

	entry := SnapshotEntry{
		URL:    url,
		Branch: result.Branch,
		File:   filepath.ToSlash(rel),
	}
	if result.Target != nil {
		entry.CloneURL = result.Target.CloneURL
		entry.SubPath = result.Target.SubPath
	}
	if result.Content != nil {
		entry.Files = len(result.Content.Files)
		entry.Bytes = result.Content.Size()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, entry)
}

// Flush writes the index file; it is a no-op when disabled or empty
func (c *IndexCollector) Flush() error {
	if !c.enabled {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.snapshots) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(c.buildIndex(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.baseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.baseDir, c.filename), data, 0644)
}

func (c *IndexCollector) buildIndex() *SnapshotIndex {
	snapshots := make([]SnapshotEntry, len(c.snapshots))
	copy(snapshots, c.snapshots)

	return &SnapshotIndex{
		GeneratedAt:    time.Now(),
		Manifest:       c.manifest,
		TotalSnapshots: len(snapshots),
		Snapshots:      snapshots,
	}
}

// Count returns the number of collected snapshots
func (c *IndexCollector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

// Index returns the current index without writing it
func (c *IndexCollector) Index() *SnapshotIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buildIndex()
}
