// Package config loads the dashboard settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// EVENT_TIMELINE_* environment variables, then command line flags that were
// explicitly set.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAddr              = "0.0.0.0:6005"
	DefaultFile              = "events.xlsx"
	DefaultAssetsDir         = "assets"
	DefaultLocale            = "zh"
	DefaultCaptionInterval   = 500 * time.Millisecond
	DefaultCaptionMaxTicks   = 12
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "auto"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config holds every runtime setting of the dashboard.
type Config struct {
	Addr              string        `yaml:"addr" env:"EVENT_TIMELINE_ADDR"`
	DefaultFile       string        `yaml:"default_file" env:"EVENT_TIMELINE_DEFAULT_FILE"`
	AssetsDir         string        `yaml:"assets_dir" env:"EVENT_TIMELINE_ASSETS_DIR"`
	WatchDefault      bool          `yaml:"watch_default" env:"EVENT_TIMELINE_WATCH_DEFAULT"`
	Locale            string        `yaml:"locale" env:"EVENT_TIMELINE_LOCALE"`
	CaptionInterval   time.Duration `yaml:"caption_interval" env:"EVENT_TIMELINE_CAPTION_INTERVAL"`
	CaptionMaxTicks   int           `yaml:"caption_max_ticks" env:"EVENT_TIMELINE_CAPTION_MAX_TICKS"`
	LogLevel          string        `yaml:"log_level" env:"EVENT_TIMELINE_LOG_LEVEL"`
	LogFormat         string        `yaml:"log_format" env:"EVENT_TIMELINE_LOG_FORMAT"`
	OTelEndpoint      string        `yaml:"otel_endpoint" env:"EVENT_TIMELINE_OTEL_ENDPOINT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"EVENT_TIMELINE_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"EVENT_TIMELINE_SHUTDOWN_TIMEOUT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:              DefaultAddr,
		DefaultFile:       DefaultFile,
		AssetsDir:         DefaultAssetsDir,
		Locale:            DefaultLocale,
		CaptionInterval:   DefaultCaptionInterval,
		CaptionMaxTicks:   DefaultCaptionMaxTicks,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

// Load applies the YAML file at path (skipped when empty) and the environment
// on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr must not be empty")
	case c.CaptionInterval <= 0:
		return fmt.Errorf("caption_interval must be positive, got %s", c.CaptionInterval)
	case c.CaptionMaxTicks < 0:
		return fmt.Errorf("caption_max_ticks must not be negative, got %d", c.CaptionMaxTicks)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	switch c.LogFormat {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("log_format must be auto, json or text, got %q", c.LogFormat)
	}
	return nil
}

// Flag names shared by AddFlags and ApplyFlags.
const (
	FlagAddr         = "addr"
	FlagDefaultFile  = "default-file"
	FlagAssetsDir    = "assets-dir"
	FlagWatchDefault = "watch-default"
	FlagLocale       = "locale"
	FlagLogLevel     = "log-level"
	FlagLogFormat    = "log-format"
)

// AddFlags registers the overridable settings on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagAddr, d.Addr, "listen address")
	fs.String(FlagDefaultFile, d.DefaultFile, "spreadsheet loaded at startup")
	fs.String(FlagAssetsDir, d.AssetsDir, "directory served under /assets/")
	fs.Bool(FlagWatchDefault, d.WatchDefault, "reload the default file when it changes")
	fs.String(FlagLocale, d.Locale, "fallback locale (zh or en)")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (auto, json, text)")
}

// ApplyFlags copies every flag the user set explicitly into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	strs := map[string]*string{
		FlagAddr:        &c.Addr,
		FlagDefaultFile: &c.DefaultFile,
		FlagAssetsDir:   &c.AssetsDir,
		FlagLocale:      &c.Locale,
		FlagLogLevel:    &c.LogLevel,
		FlagLogFormat:   &c.LogFormat,
	}
	for name, dst := range strs {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if fs.Lookup(FlagWatchDefault) != nil && fs.Changed(FlagWatchDefault) {
		v, err := fs.GetBool(FlagWatchDefault)
		if err != nil {
			return err
		}
		c.WatchDefault = v
	}
	return nil
}
