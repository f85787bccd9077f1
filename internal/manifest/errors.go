package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources      = errors.New("manifest must contain at least one source")
	ErrEmptyURL       = errors.New("source URL cannot be empty")
	ErrDuplicateURL   = errors.New("source is listed twice")
	ErrBadConcurrency = errors.New("concurrency must not be negative")
	ErrInvalidFormat  = errors.New("manifest must be valid YAML or JSON")
	ErrFileNotFound   = errors.New("manifest file not found")
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)

// SourceError reports a problem with one manifest source
type SourceError struct {
	Index int
	URL   string
	Err   error
}

func (e *SourceError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("source %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("source %d (%s): %v", e.Index, e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
