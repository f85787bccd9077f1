package journal

import "time"

// DefaultRetention is how long records are kept when no retention is set
const DefaultRetention = 30 * 24 * time.Hour

// Options contains journal configuration options
type Options struct {
	Directory string
	InMemory  bool
	// Retention is the TTL of each record; zero keeps records forever
	Retention time.Duration
	Logger    bool
}

// DefaultOptions returns default journal options
func DefaultOptions() Options {
	return Options{
		Retention: DefaultRetention,
	}
}
