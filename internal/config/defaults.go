package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Server defaults
	DefaultServerAddr      = "0.0.0.0:3000"
	DefaultShutdownTimeout = 10 * time.Second

	// Fetch defaults
	DefaultFetchTimeout = 30 * time.Second
	DefaultGitBackend   = "cli"

	// Output defaults
	DefaultOutputDir     = "./output"
	DefaultOutputEnabled = false

	// Journal defaults
	DefaultJournalEnabled   = true
	DefaultJournalRetention = 30 * 24 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"

	// Telemetry defaults
	DefaultTelemetryEnabled = false
	DefaultServiceName      = "reposnap"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reposnap"
	}
	return filepath.Join(home, ".reposnap")
}

// JournalDir returns the journal directory path
func JournalDir() string {
	return filepath.Join(ConfigDir(), "journal")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Fetch: FetchConfig{
			Timeout:    DefaultFetchTimeout,
			GitBackend: DefaultGitBackend,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Enabled:   DefaultOutputEnabled,
		},
		Journal: JournalConfig{
			Enabled:   DefaultJournalEnabled,
			Directory: JournalDir(),
			Retention: DefaultJournalRetention,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetryConfig{
			Enabled:     DefaultTelemetryEnabled,
			ServiceName: DefaultServiceName,
		},
	}
}
