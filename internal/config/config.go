package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/vango-dev/reconcile/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vdom.yaml"

	// DefaultPort is the default mirror server port.
	DefaultPort = 7070

	// DefaultHost is the default mirror server host.
	DefaultHost = "localhost"

	// DefaultQueueSize is the default event loop dispatch queue size.
	DefaultQueueSize = 256

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "vdom"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultRootTag is the tag of the document root the engine renders into.
	DefaultRootTag = "body"
)

// Config represents the complete vdom.yaml configuration.
type Config struct {
	// Root is the tag of the render root element.
	Root string `yaml:"root,omitempty"`

	// Scenario is the default scenario file for replay and serve.
	Scenario string `yaml:"scenario,omitempty"`

	// Server contains mirror server configuration.
	Server ServerConfig `yaml:"server,omitempty"`

	// Loop contains event loop configuration.
	Loop LoopConfig `yaml:"loop,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log,omitempty"`

	// Replay contains replay output configuration.
	Replay ReplayConfig `yaml:"replay,omitempty"`

	// Storage configures s3:// mutation log locations.
	Storage StorageConfig `yaml:"storage,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains mirror server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `yaml:"port,omitempty"`

	// AllowedOrigins lists the origins accepted on the websocket endpoint.
	// Empty accepts every origin.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`

	// Interval is the delay between scenario steps, e.g. "2s".
	// Empty disables automatic steps.
	Interval string `yaml:"interval,omitempty"`
}

// LoopConfig contains event loop settings.
type LoopConfig struct {
	// QueueSize is the capacity of the dispatch queue.
	QueueSize int `yaml:"queueSize,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace,omitempty"`

	// Path is the HTTP path metrics are served on.
	Path string `yaml:"path,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// ReplayConfig contains replay output settings.
type ReplayConfig struct {
	// Pretty prints indented snapshots.
	Pretty bool `yaml:"pretty,omitempty"`

	// Diff prints a snapshot diff after each step.
	Diff bool `yaml:"diff,omitempty"`
}

// StorageConfig contains S3 settings for mutation logs. Credentials come
// from the environment.
type StorageConfig struct {
	// Region is the bucket region. Defaults to $AWS_REGION.
	Region string `yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint for compatible stores.
	Endpoint string `yaml:"endpoint,omitempty"`

	// PathStyle uses path-style bucket addressing.
	PathStyle bool `yaml:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads vdom.yaml from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E202").
				WithDetail("No config at " + path).
				WithSuggestion("Run 'vdom init' or drop the --config flag to use defaults")
		}
		return nil, errors.New("E200").Wrap(err)
	}
	return Parse(data, path)
}

// Parse decodes YAML configuration. Unknown fields are rejected.
func Parse(data []byte, path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, errors.New("E200").
			WithDetail(yaml.FormatError(err, false, true)).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads vdom.yaml from dir, or returns defaults when the
// directory has none.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
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
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E200").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E200").Wrap(err)
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

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = DefaultRootTag
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	// Loop
	if c.Loop.QueueSize == 0 {
		c.Loop.QueueSize = DefaultQueueSize
	}

	// Metrics
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E201").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Loop.QueueSize < 0 {
		return errors.New("E201").
			WithDetail("loop.queueSize must not be negative")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E201").
			WithDetail("metrics.path must start with /")
	}
	if c.Server.Interval != "" {
		if _, err := time.ParseDuration(c.Server.Interval); err != nil {
			return errors.New("E201").
				WithDetail(fmt.Sprintf("server.interval %q is not a duration", c.Server.Interval))
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return errors.New("E201").Wrap(err)
	}
	if c.Storage.Endpoint != "" {
		if u, err := url.Parse(c.Storage.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("E201").
				WithDetail(fmt.Sprintf("storage.endpoint %q is not an absolute URL", c.Storage.Endpoint))
		}
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E201").
			WithDetail(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	return nil
}

// Address returns the host:port the mirror server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the base URL of the mirror server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// ScenarioPath returns the absolute path to the default scenario file, or
// "" when none is configured.
func (c *Config) ScenarioPath() string {
	if c.Scenario == "" {
		return ""
	}
	if filepath.IsAbs(c.Scenario) {
		return c.Scenario
	}
	return filepath.Join(c.Dir(), c.Scenario)
}

// CheckOrigin reports whether origin is allowed on the websocket endpoint.
func (c *Config) CheckOrigin(origin string) bool {
	if len(c.Server.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
