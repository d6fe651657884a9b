package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "info", cfg.Logging.ConsoleLevel)
	assert.Equal(t, "10MB", cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, DefaultMaxLogBackups, cfg.Logging.Rotation.MaxBackups)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, DefaultHistoryDir(), cfg.History.Path)
	assert.Equal(t, DefaultRetentionDays, cfg.History.RetentionDays)
	assert.False(t, cfg.Build.AllowOverwrite)
}

func TestLoad_File(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	path := filepath.Join(home, "shaded", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
  rotation:
    max_size: 2MiB
  components:
    build: warn
history:
  enabled: false
  retention_days: 7
build:
  allow_overwrite: true
`), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "2MiB", cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, map[string]string{"build": "warn"}, cfg.Logging.Components)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 7, cfg.History.RetentionDays)
	assert.True(t, cfg.Build.AllowOverwrite)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  retention_days: 3\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.History.RetentionDays)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SHADED_BUILD_ALLOW_OVERWRITE", "true")
	t.Setenv("SHADED_LOGGING_LEVEL", "warn")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.True(t, cfg.Build.AllowOverwrite)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [unclosed"), 0o644))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_ExpandsHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  path: ~/shaded-history\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shaded-history"), cfg.History.Path)
}

func TestLoggingOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Logging: LoggingConfig{
		Level:        "debug",
		Path:         "/tmp/x.log",
		ConsoleLevel: "warn",
		Rotation:     RotationConfig{MaxSize: "1MB", MaxBackups: 2, MaxAge: 5},
		Components:   map[string]string{"build": "error"},
	}}

	opts, err := cfg.LoggingOptions()
	require.NoError(t, err)
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "/tmp/x.log", opts.Path)
	assert.Equal(t, "warn", opts.ConsoleLevel)
	assert.Equal(t, int64(1_000_000), opts.Rotation.MaxSize)
	assert.Equal(t, 2, opts.Rotation.MaxBackups)
	assert.Equal(t, 5, opts.Rotation.MaxAge)
	assert.Equal(t, map[string]string{"build": "error"}, opts.Components)

	cfg.Logging.Rotation.MaxSize = "lots"
	_, err = cfg.LoggingOptions()
	assert.ErrorContains(t, err, "max_size")
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shaded"), got)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shaded", "config.yaml"), path)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaded", "config.yaml")

	written, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, written)

	// The generated file must load cleanly and match the defaults.
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultComponents, cfg.Logging.Components)
	assert.Equal(t, DefaultRetentionDays, cfg.History.RetentionDays)

	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o644))
	written, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(data), "existing config is never overwritten")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = ExpandPath("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)
}
