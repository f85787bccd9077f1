package domain

import (
	"strings"
	"time"
)

// Default branch candidates, in priority order
const (
	BranchMain   = "main"
	BranchMaster = "master"
)

// DefaultBranchCandidates is the closed, ordered set of branches tried when none is pinned
var DefaultBranchCandidates = []string{BranchMain, BranchMaster}

// FetchRequest is one snapshot request
type FetchRequest struct {
	URL     string
	Timeout time.Duration
	// Branch pins the branch and skips remote resolution when set
	Branch string
}

// NewFetchRequest builds a request with a timeout expressed in seconds
func NewFetchRequest(url string, timeoutSeconds uint) FetchRequest {
	return FetchRequest{
		URL:     url,
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

// ResolvedTarget is the clone target derived from a GitHub web URL
type ResolvedTarget struct {
	CloneURL string `json:"clone_url"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	SubPath  string `json:"sub_path"`
	TreeRef  string `json:"tree_ref,omitempty"` // from a tree/<ref> marker, informational only
}

// FileEntry is one aggregated file
type FileEntry struct {
	Name string
	Text string
}

// AggregatedContent is the ordered set of files read from one directory
type AggregatedContent struct {
	SubPath string
	Files   []FileEntry
}

// Header returns the line that precedes a file's text
func (c *AggregatedContent) Header(name string) string {
	return "File: " + c.SubPath + "/" + name
}

// String renders the content as File:-headed blocks separated by blank lines
func (c *AggregatedContent) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, f := range c.Files {
		b.WriteString(c.Header(f.Name))
		b.WriteByte('\n')
		b.WriteString(f.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Size returns the total number of text bytes across all files
func (c *AggregatedContent) Size() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, f := range c.Files {
		n += len(f.Text)
	}
	return n
}

// FetchResult is what a completed fetch hands back to its caller
type FetchResult struct {
	Target        *ResolvedTarget
	Branch        string
	Content       *AggregatedContent
	PersistedPath string
	PersistErr    error
	Duration      time.Duration
}

// FetchRecord is a journal entry describing one fetch attempt
type FetchRecord struct {
	URL       string        `json:"url"`
	CloneURL  string        `json:"clone_url,omitempty"`
	SubPath   string        `json:"sub_path,omitempty"`
	Branch    string        `json:"branch,omitempty"`
	Files     int           `json:"files"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Succeeded reports whether the recorded fetch completed
func (r *FetchRecord) Succeeded() bool {
	return r.Error == ""
}
