package domain

import (
	"context"
	"time"
)

// Fetcher defines the snapshot fetch operation exposed to adapters
type Fetcher interface {
	// Fetch resolves, clones and aggregates the directory named by req.URL
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

// Writer defines the persistence adapter for aggregated content
type Writer interface {
	// Write stores content and returns the path written
	Write(ctx context.Context, target *ResolvedTarget, content *AggregatedContent) (string, error)
}

// Journal defines the fetch audit log
type Journal interface {
	// Record appends a fetch record
	Record(ctx context.Context, rec *FetchRecord) error
	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]*FetchRecord, error)
	// Close releases journal resources
	Close() error
}

// Metrics receives per-fetch measurements
type Metrics interface {
	ObserveFetch(ctx context.Context, kind ErrorKind, files int, elapsed time.Duration)
}
