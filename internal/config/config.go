package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Output    OutputConfig    `mapstructure:"output"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FetchConfig contains snapshot fetch settings
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	GitBackend string        `mapstructure:"git_backend"`
	TempDir    string        `mapstructure:"temp_dir"`
}

// OutputConfig contains snapshot persistence settings
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
	Enabled   bool   `mapstructure:"enabled"`
}

// JournalConfig contains fetch journal settings
type JournalConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Directory string        `mapstructure:"directory"`
	Retention time.Duration `mapstructure:"retention"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Validate repairs out-of-range values with defaults and rejects values
// that cannot be repaired
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ShutdownTimeout < time.Second {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Fetch.Timeout < time.Second {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	c.Fetch.GitBackend = strings.ToLower(strings.TrimSpace(c.Fetch.GitBackend))
	switch c.Fetch.GitBackend {
	case "":
		c.Fetch.GitBackend = DefaultGitBackend
	case "cli", "native":
	default:
		return fmt.Errorf("invalid fetch.git_backend %q: want cli or native", c.Fetch.GitBackend)
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Journal.Directory == "" {
		c.Journal.Directory = JournalDir()
	}
	if c.Journal.Retention < time.Hour {
		c.Journal.Retention = DefaultJournalRetention
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != "json" && c.Logging.Format != "pretty" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	return nil
}
