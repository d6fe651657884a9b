package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/pictomancers/shaded/pkg/shaded/logging"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Rotation     RotationConfig    `mapstructure:"rotation"`
	Components   map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the build history log.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// BuildConfig holds defaults for the build commands.
type BuildConfig struct {
	AllowOverwrite bool `mapstructure:"allow_overwrite"`
}

// Config is the application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	History HistoryConfig `mapstructure:"history"`
	Build   BuildConfig   `mapstructure:"build"`
}

// Load reads configuration into v and decodes it. cfgFile overrides the
// search for config.yaml in ConfigDir(); a missing default file is not an
// error. Environment variables prefixed with SHADED_ override the file.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}
	if cfg.History.Path, err = ExpandPath(cfg.History.Path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.console_level", DefaultConsoleLevel)
	v.SetDefault("logging.rotation.max_size", DefaultMaxLogSize)
	v.SetDefault("logging.rotation.max_backups", DefaultMaxLogBackups)
	v.SetDefault("logging.rotation.max_age", DefaultMaxLogAge)
	v.SetDefault("logging.components", map[string]string{})

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryDir())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("build.allow_overwrite", false)
}

// LoggingOptions converts the logging section into logging.Config.
// An empty path falls back to logging.DefaultLogPath().
func (c *Config) LoggingOptions() (logging.Config, error) {
	rotation, err := c.Logging.Rotation.parse()
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		ConsoleLevel: c.Logging.ConsoleLevel,
		Rotation:     rotation,
		Components:   c.Logging.Components,
	}, nil
}

func (r RotationConfig) parse() (logging.RotationConfig, error) {
	out := logging.RotationConfig{
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAge,
	}
	if r.MaxSize != "" {
		size, err := humanize.ParseBytes(r.MaxSize)
		if err != nil {
			return logging.RotationConfig{}, fmt.Errorf("parsing logging.rotation.max_size %q: %w", r.MaxSize, err)
		}
		out.MaxSize = int64(size)
	}
	return out, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/shaded, or ~/.config/shaded when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "shaded"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "shaded"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultHistoryDir returns $XDG_DATA_HOME/shaded/history.
func DefaultHistoryDir() string {
	return filepath.Join(xdg.DataHome, "shaded", "history")
}

// WriteDefault writes a commented default config to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	var components strings.Builder
	for _, name := range []string{"build", "discovery", "history"} {
		fmt.Fprintf(&components, "    %s: %s\n", name, DefaultComponents[name])
	}

	content := fmt.Sprintf(`# shaded configuration

logging:
  # Log level for the log file: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/shaded/shaded.log)
  path: ""
  # Level mirrored to the terminal; --verbose and --quiet override it
  console_level: %s
  rotation:
    max_size: %s
    max_backups: %d
    max_age: %d # days
  components:
%s
history:
  enabled: true
  path: %s
  retention_days: %d

build:
  # Replace a non-empty output directory without --clean/--delete-existing
  allow_overwrite: false
`, DefaultLogLevel, DefaultConsoleLevel, DefaultMaxLogSize, DefaultMaxLogBackups, DefaultMaxLogAge,
		components.String(), DefaultHistoryDir(), DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
