package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real config file leaks into a test
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
	return dir
}

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name:   "defaults are kept",
			modify: func(c *Config) {},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Default().Server, c.Server)
				assert.Equal(t, Default().Fetch, c.Fetch)
			},
		},
		{
			name:   "empty addr defaults",
			modify: func(c *Config) { c.Server.Addr = "" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultServerAddr, c.Server.Addr)
			},
		},
		{
			name:   "shutdown timeout below minimum defaults",
			modify: func(c *Config) { c.Server.ShutdownTimeout = 0 },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultShutdownTimeout, c.Server.ShutdownTimeout)
			},
		},
		{
			name:   "fetch timeout below minimum defaults to 30s",
			modify: func(c *Config) { c.Fetch.Timeout = 500 * time.Millisecond },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 30*time.Second, c.Fetch.Timeout)
			},
		},
		{
			name:   "custom fetch timeout is kept",
			modify: func(c *Config) { c.Fetch.Timeout = 2 * time.Minute },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 2*time.Minute, c.Fetch.Timeout)
			},
		},
		{
			name:   "empty git backend defaults to cli",
			modify: func(c *Config) { c.Fetch.GitBackend = "" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "cli", c.Fetch.GitBackend)
			},
		},
		{
			name:   "git backend is normalized",
			modify: func(c *Config) { c.Fetch.GitBackend = " Native " },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "native", c.Fetch.GitBackend)
			},
		},
		{
			name:    "unknown git backend fails",
			modify:  func(c *Config) { c.Fetch.GitBackend = "svn" },
			wantErr: true,
		},
		{
			name:   "short retention defaults",
			modify: func(c *Config) { c.Journal.Retention = time.Minute },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultJournalRetention, c.Journal.Retention)
			},
		},
		{
			name:   "unknown log format defaults to pretty",
			modify: func(c *Config) { c.Logging.Format = "xml" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "pretty", c.Logging.Format)
			},
		},
		{
			name:   "json log format is kept",
			modify: func(c *Config) { c.Logging.Format = "json" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "json", c.Logging.Format)
			},
		},
		{
			name: "empty names default",
			modify: func(c *Config) {
				c.Output.Directory = ""
				c.Journal.Directory = ""
				c.Telemetry.ServiceName = ""
				c.Logging.Level = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultOutputDir, c.Output.Directory)
				assert.Equal(t, JournalDir(), c.Journal.Directory)
				assert.Equal(t, DefaultServiceName, c.Telemetry.ServiceName)
				assert.Equal(t, DefaultLogLevel, c.Logging.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate_ZeroConfig(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	// booleans are not repaired
	want := Default()
	want.Journal.Enabled = false
	assert.Equal(t, *want, cfg)
}

// TestDefault tests default configuration
func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "cli", cfg.Fetch.GitBackend)
	assert.Equal(t, "./output", cfg.Output.Directory)
	assert.False(t, cfg.Output.Enabled)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "reposnap", cfg.Telemetry.ServiceName)
}

func TestDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".reposnap"), ConfigDir())
	assert.Equal(t, filepath.Join(home, ".reposnap", "journal"), JournalDir())
	assert.Equal(t, filepath.Join(home, ".reposnap", "config.yaml"), ConfigFilePath())
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())

	info, err := os.Stat(filepath.Join(home, ".reposnap"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestLoad_LoadWithMissingConfig tests loading with no config file
func TestLoad_LoadWithMissingConfig(t *testing.T) {
	isolate(t)

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.Equal(t, DefaultFetchTimeout, cfg.Fetch.Timeout)
}

// TestLoad_WithInvalidConfigFile tests loading with invalid config file
func TestLoad_WithInvalidConfigFile(t *testing.T) {
	dir := isolate(t)

	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("invalid: yaml: content: ["), 0644)
	require.NoError(t, err)

	cfg, _, err := LoadWithViper()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoad_WithValidConfigFile tests loading with valid config file
func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := isolate(t)

	configContent := `
server:
  addr: "127.0.0.1:8080"
fetch:
  timeout: 45s
  git_backend: native
output:
  directory: "./snapshots"
  enabled: true
logging:
  level: "debug"
`
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "native", cfg.Fetch.GitBackend)
	assert.Equal(t, "./snapshots", cfg.Output.Directory)
	assert.True(t, cfg.Output.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_WithBadBackend(t *testing.T) {
	dir := isolate(t)

	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("fetch:\n  git_backend: hg\n"), 0644)
	require.NoError(t, err)

	_, _, err = LoadWithViper()
	assert.ErrorContains(t, err, "fetch.git_backend")
}

// TestLoadWithEnvironmentVariable tests loading with environment variable
func TestLoadWithEnvironmentVariable(t *testing.T) {
	isolate(t)
	t.Setenv("REPOSNAP_OUTPUT_DIRECTORY", "./env-output")
	t.Setenv("REPOSNAP_FETCH_TIMEOUT", "1m")

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, "./env-output", cfg.Output.Directory)
	assert.Equal(t, time.Minute, cfg.Fetch.Timeout)
}

func TestLoad_GlobalViper(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.Addr)
}

// TestLoadWithViper tests LoadWithViper function
func TestLoadWithViper(t *testing.T) {
	isolate(t)

	cfg, v, err := LoadWithViper()
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	require.NotNil(t, v)
	assert.Equal(t, DefaultServerAddr, v.GetString("server.addr"))
}

// TestConstants tests constant values
func TestConstants(t *testing.T) {
	assert.Equal(t, "REPOSNAP", EnvPrefix)
	assert.GreaterOrEqual(t, DefaultFetchTimeout, time.Second)
	assert.GreaterOrEqual(t, DefaultShutdownTimeout, time.Second)
	assert.GreaterOrEqual(t, DefaultJournalRetention, time.Hour)
}
