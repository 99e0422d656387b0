// Package config loads keel's configuration: database location, startup
// policy and logging settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Startup  StartupConfig  `mapstructure:"startup"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig locates the session store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// StartupConfig holds the persisted startup policy.
type StartupConfig struct {
	Policy string `mapstructure:"policy"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StartupPolicy returns the configured policy, falling back to OpenNewTab
// for unknown values.
func (c *Config) StartupPolicy() entity.StartupPolicy {
	p := entity.StartupPolicy(c.Startup.Policy)
	if !p.Valid() {
		return entity.StartupOpenNewTab
	}
	return p
}

// Load reads the configuration from the TOML file under the XDG config dir
// (or the current directory during development) and KEEL_* environment
// variables, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("KEEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults and env carry the day.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := ensureDatabasePath(&cfg); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("startup.policy", string(entity.StartupRestoreOpenTabs))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func ensureDatabasePath(cfg *Config) error {
	if cfg.Database.Path != "" {
		return nil
	}
	dataDir, err := dataDir()
	if err != nil {
		return fmt.Errorf("determine data directory: %w", err)
	}
	cfg.Database.Path = filepath.Join(dataDir, "session.db")
	return nil
}

func validate(cfg *Config) error {
	if p := entity.StartupPolicy(cfg.Startup.Policy); !p.Valid() {
		return fmt.Errorf("unknown startup policy %q", cfg.Startup.Policy)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logging format %q", cfg.Logging.Format)
	}
	return nil
}

// Dir returns the keel config directory (XDG_CONFIG_HOME/keel).
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "keel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keel"), nil
}

func dataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "keel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "keel"), nil
}
