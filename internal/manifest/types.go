package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/reposnap/internal/domain"
)

// Config represents the complete manifest configuration
type Config struct {
	Sources []Source `yaml:"sources" json:"sources"`
	Options Options  `yaml:"options" json:"options"`
}

// Source is one folder to snapshot
type Source struct {
	URL    string `yaml:"url" json:"url"`
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`
	// Timeout in seconds; zero uses Options.Timeout
	Timeout uint `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool   `yaml:"continue_on_error" json:"continue_on_error"`
	Output          string `yaml:"output,omitempty" json:"output,omitempty"`
	Concurrency     int    `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	Timeout         uint   `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Validate validates the manifest configuration. The same URL may appear
// twice only with different branches, since both would write one snapshot file.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	if c.Options.Concurrency < 0 {
		return fmt.Errorf("%w: %d", ErrBadConcurrency, c.Options.Concurrency)
	}

	seen := make(map[string]int, len(c.Sources))
	for i, src := range c.Sources {
		url := strings.TrimSpace(src.URL)
		if url == "" {
			return &SourceError{Index: i, Err: ErrEmptyURL}
		}
		key := strings.TrimSuffix(url, "/") + "@" + src.Branch
		if first, ok := seen[key]; ok {
			return &SourceError{Index: i, URL: url, Err: fmt.Errorf("%w (first at source %d)", ErrDuplicateURL, first)}
		}
		seen[key] = i
	}
	return nil
}

// Request builds the fetch request for the source
func (s Source) Request(opts Options) domain.FetchRequest {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = opts.Timeout
	}
	req := domain.NewFetchRequest(s.URL, timeout)
	req.Branch = s.Branch
	return req
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		ContinueOnError: false,
		Output:          "./output",
		Concurrency:     4,
		Timeout:         30,
	}
}
