// Package config loads shaded's application settings with viper. These
// settings cover logging, build history and build behavior; they are
// separate from the collection configuration that describes what to build.
package config

// Default configuration values for shaded.
const (
	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultConsoleLevel is the console log level when neither --verbose
	// nor --quiet is given.
	DefaultConsoleLevel = "info"

	// DefaultMaxLogSize is the size at which the log file rotates.
	DefaultMaxLogSize = "10MB"

	// DefaultMaxLogBackups is how many rotated log files are kept.
	DefaultMaxLogBackups = 3

	// DefaultMaxLogAge is how many days rotated log files are kept.
	DefaultMaxLogAge = 30

	// DefaultRetentionDays is how long build history records are kept.
	DefaultRetentionDays = 90

	// EnvPrefix prefixes every environment override (SHADED_LOGGING_LEVEL).
	EnvPrefix = "SHADED"
)

// DefaultComponents are the per-component log levels written by config init.
var DefaultComponents = map[string]string{
	"build":     "info",
	"discovery": "info",
	"history":   "info",
}
