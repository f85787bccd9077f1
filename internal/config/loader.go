package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override (REPOSNAP_FETCH_TIMEOUT, ...)
const EnvPrefix = "REPOSNAP"

// Load loads configuration from file, environment, and defaults.
// It uses the global viper instance so CLI flag bindings apply.
func Load() (*Config, error) {
	return load(viper.GetViper())
}

// LoadWithViper loads configuration into a fresh viper instance and returns it
// so callers can merge flags later
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("fetch.timeout", DefaultFetchTimeout)
	v.SetDefault("fetch.git_backend", DefaultGitBackend)
	v.SetDefault("fetch.temp_dir", "")

	v.SetDefault("output.directory", DefaultOutputDir)
	v.SetDefault("output.enabled", DefaultOutputEnabled)

	v.SetDefault("journal.enabled", DefaultJournalEnabled)
	v.SetDefault("journal.directory", JournalDir())
	v.SetDefault("journal.retention", DefaultJournalRetention)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.enabled", DefaultTelemetryEnabled)
	v.SetDefault("telemetry.service_name", DefaultServiceName)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}
