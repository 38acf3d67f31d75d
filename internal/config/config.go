package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/vango-dev/area/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "area.yaml"

	// JSONConfigFileName is the JSON alternative to ConfigFileName.
	JSONConfigFileName = "area.json"

	// DefaultAddress is the default server address.
	DefaultAddress = "localhost:7070"

	// DefaultDevtoolsPrefix is where the devtools handler is mounted.
	DefaultDevtoolsPrefix = "/_area"

	// DefaultManifest is the default route manifest path.
	DefaultManifest = "routes.yaml"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "area"
)

// Config represents the complete area.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty" env:"AREA_NAME"`

	// Manifest is the path to the route manifest, relative to the config.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty" env:"AREA_MANIFEST"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// History contains navigation history configuration.
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Storage contains the S3 bucket holding lazily loaded templates.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the address to listen on.
	Address string `json:"address,omitempty" yaml:"address,omitempty" env:"AREA_ADDR"`

	// Devtools is the URL prefix of the devtools handler. "-" disables it.
	Devtools string `json:"devtools,omitempty" yaml:"devtools,omitempty" env:"AREA_DEVTOOLS"`
}

// HistoryConfig contains navigation history settings.
type HistoryConfig struct {
	// Limit caps the back history of each area. Zero is unlimited.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty" env:"AREA_HISTORY_LIMIT"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" env:"AREA_METRICS"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" env:"AREA_METRICS_NAMESPACE"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"AREA_TRACING"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty" env:"AREA_TRACER_NAME"`
}

// StorageConfig locates lazily loaded templates in S3.
type StorageConfig struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty" env:"AREA_S3_BUCKET"`
	Region string `json:"region,omitempty" yaml:"region,omitempty" env:"AREA_S3_REGION"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"AREA_S3_ENDPOINT"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"AREA_S3_PREFIX"`
}

// Enabled reports whether a bucket is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" env:"AREA_LOG_LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty" env:"AREA_LOG_FORMAT"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Server: ServerConfig{
			Address:  DefaultAddress,
			Devtools: DefaultDevtoolsPrefix,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for area.yaml, then area.json.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("A060").
		WithDetail("No " + ConfigFileName + " or " + JSONConfigFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension; anything but .json is read as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("A060").WithDetail("No config file at " + path)
		}
		return nil, errors.New("A061").Wrap(err)
	}

	cfg := New()
	if err := decode(path, data, cfg); err != nil {
		return nil, errors.New("A061").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax and field names")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isJSON(path) {
		return json.Unmarshal(data, cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ApplyEnv overrides fields from AREA_* environment variables. Unset
// variables leave fields unchanged.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.New("A061").WithDetail("environment").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("A061").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("A061").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// ManifestPath returns the route manifest path, resolved against Dir.
func (c *Config) ManifestPath() string {
	path := c.Manifest
	if path == "" {
		path = DefaultManifest
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// DevtoolsEnabled reports whether the devtools handler is mounted.
func (c *Config) DevtoolsEnabled() bool {
	return c.Server.Devtools != "-"
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.Devtools == "" {
		c.Server.Devtools = DefaultDevtoolsPrefix
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.History.Limit < 0 {
		return errors.New("A061").WithDetail("history.limit must not be negative")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("A061").WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	if d := c.Server.Devtools; d != "-" && !strings.HasPrefix(d, "/") {
		return errors.New("A061").WithDetailf("server.devtools must start with /, got %q", d)
	}
	if c.Storage.Enabled() && c.Storage.Region == "" && c.Storage.Endpoint == "" {
		return errors.New("A061").
			WithDetail("storage.region is required when storage.bucket is set").
			WithSuggestion("Set storage.region or AREA_S3_REGION")
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.New("A061").WithDetailf("log.level %q is not a level", l.Level)
	}
	return lvl, nil
}

// Logger builds a logger writing to w. Invalid levels fall back to info.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing area.yaml, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("A060").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
