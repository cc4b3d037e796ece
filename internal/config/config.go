// Package config loads the service configuration from flags, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

const (
	// Mode constants
	ModeHTTP  = "http"
	ModeStdio = "stdio"

	// Default values
	DefaultAddr           = ":8000"
	DefaultMaxUpload      = "25MiB"
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxConnections = 64
	DefaultLogLevel       = "info"
	DefaultLocale         = "en"

	// EnvPrefix prefixes every environment variable, e.g. PDFAPI_ADDR
	EnvPrefix = "PDFAPI"
)

// ErrVersionRequested is returned by Load when --version was given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the conversion service
type Config struct {
	// Server configuration
	Mode           string // "http" or "stdio"
	Addr           string
	MaxConnections int

	// Request limits
	MaxUpload      int64 // bytes
	RequestTimeout time.Duration

	// Pipeline configuration
	Workers    int    // zero defers to the tuning file
	TuningFile string // YAML overrides of the heuristic thresholds
	Locale     string // BCP 47 tag selecting spreadsheet number conventions
	TempDir    string

	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	maxUpload, _ := humanize.ParseBytes(DefaultMaxUpload)
	return &Config{
		Mode:           ModeHTTP,
		Addr:           DefaultAddr,
		MaxConnections: DefaultMaxConnections,
		MaxUpload:      int64(maxUpload),
		RequestTimeout: DefaultRequestTimeout,
		Locale:         DefaultLocale,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses os.Args and the environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:], os.Stderr)
}

// Load parses args and the environment. Flags win over environment
// variables, which win over defaults. Usage goes to usage on --help.
func Load(args []string, usage io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet("pdf-backend-api", pflag.ContinueOnError)
	fs.SetOutput(usage)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	setupUsageMessage(fs, usage)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if version, _ := fs.GetBool("version"); version {
		return nil, ErrVersionRequested
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := populateConfigFromViper(v, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("max-connections", cfg.MaxConnections)
	v.SetDefault("max-upload", DefaultMaxUpload)
	v.SetDefault("request-timeout", cfg.RequestTimeout)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("tuning-file", cfg.TuningFile)
	v.SetDefault("locale", cfg.Locale)
	v.SetDefault("temp-dir", cfg.TempDir)
	v.SetDefault("log-level", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Server mode: 'http' for the REST API, 'stdio' for MCP over standard I/O")
	fs.String("addr", cfg.Addr, "HTTP listen address (http mode only)")
	fs.Int("max-connections", cfg.MaxConnections, "Maximum simultaneous HTTP connections, 0 for no limit")
	fs.String("max-upload", DefaultMaxUpload, "Maximum PDF upload size, e.g. 25MiB or 10MB")
	fs.Duration("request-timeout", cfg.RequestTimeout, "Conversion deadline per request, 0 for none")
	fs.Int("workers", cfg.Workers, "Pages processed concurrently, 0 for the tuning default")
	fs.String("tuning-file", cfg.TuningFile, "YAML file overriding detection thresholds")
	fs.String("locale", cfg.Locale, "Locale for spreadsheet number formats, e.g. en, de, id")
	fs.String("temp-dir", cfg.TempDir, "Parent directory of per-request temp directories")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolP("version", "v", false, "Print version information and exit")
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage of pdf-backend-api:\n")
		fmt.Fprintf(w, "\nPDF converter - turns PDF files into DOCX, XLSX and PPTX\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  pdf-backend-api                              # HTTP API on :8000\n")
		fmt.Fprintf(w, "  pdf-backend-api --addr=127.0.0.1:9000         # HTTP API on a custom address\n")
		fmt.Fprintf(w, "  pdf-backend-api --mode=stdio                  # MCP tools over stdio\n")
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  %s_MODE, %s_ADDR, %s_MAX_UPLOAD, %s_REQUEST_TIMEOUT, %s_WORKERS,\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
		fmt.Fprintf(w, "  %s_MAX_CONNECTIONS, %s_TUNING_FILE, %s_LOCALE, %s_TEMP_DIR, %s_LOG_LEVEL\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) error {
	cfg.Mode = strings.ToLower(v.GetString("mode"))
	cfg.Addr = v.GetString("addr")
	cfg.MaxConnections = v.GetInt("max-connections")
	cfg.RequestTimeout = v.GetDuration("request-timeout")
	cfg.Workers = v.GetInt("workers")
	cfg.TuningFile = v.GetString("tuning-file")
	cfg.Locale = v.GetString("locale")
	cfg.TempDir = v.GetString("temp-dir")
	cfg.LogLevel = strings.ToLower(v.GetString("log-level"))

	size, err := humanize.ParseBytes(v.GetString("max-upload"))
	if err != nil {
		return fmt.Errorf("invalid max-upload %q: %w", v.GetString("max-upload"), err)
	}
	cfg.MaxUpload = int64(size)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Mode != ModeHTTP && c.Mode != ModeStdio {
		errs = append(errs, fmt.Errorf("mode must be either '%s' or '%s', got %q", ModeHTTP, ModeStdio, c.Mode))
	}
	if c.Mode == ModeHTTP && c.Addr == "" {
		errs = append(errs, errors.New("addr cannot be empty in http mode"))
	}
	if c.MaxUpload <= 0 {
		errs = append(errs, errors.New("max-upload must be positive"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request-timeout cannot be negative"))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers cannot be negative"))
	}
	if c.MaxConnections < 0 {
		errs = append(errs, errors.New("max-connections cannot be negative"))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("invalid locale %q: %w", c.Locale, err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.TempDir != "" {
		if info, err := os.Stat(c.TempDir); err != nil {
			errs = append(errs, fmt.Errorf("cannot access temp directory %s: %w", c.TempDir, err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("temp directory %s is not a directory", c.TempDir))
		}
	}
	return errors.Join(errs...)
}

// Tuning returns the heuristic thresholds: the defaults overlaid with
// TuningFile when it is set.
func (c *Config) Tuning() (tuning.Config, error) {
	if c.TuningFile == "" {
		return tuning.Default(), nil
	}
	return tuning.LoadFile(c.TuningFile)
}

// LocaleTag returns the parsed locale, English when it cannot be parsed
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Level returns the slog level for LogLevel
func (c *Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", s)
}

// IsStdioMode returns true if the service runs as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Addr: %s, MaxUpload: %s, RequestTimeout: %s, Workers: %d, MaxConnections: %d, Locale: %s, LogLevel: %s}",
		c.Mode, c.Addr, humanize.IBytes(uint64(c.MaxUpload)), c.RequestTimeout, c.Workers, c.MaxConnections, c.Locale, c.LogLevel)
}
