// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultCollection     = "datasage"
	DefaultDimension      = 384
	DefaultAlpha          = 0.25
	DefaultSearchLimit    = 5
	DefaultLogLevel       = "INFO"
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8420
	DefaultEmbedTimeout   = 60 * time.Second
	DefaultEmbedRetries   = 5
	DefaultEmbedDelay     = 2 * time.Second
	DefaultEmbedBackoff   = 2.0
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an embedding API endpoint.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewEndpoint creates an Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		model:         DefaultEmbeddingModel,
		timeout:       DefaultEmbedTimeout,
		maxRetries:    DefaultEmbedRetries,
		initialDelay:  DefaultEmbedDelay,
		backoffFactor: DefaultEmbedBackoff,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the embedding model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// IsConfigured returns true if the endpoint has an API key or base URL.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != "" || e.baseURL != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the embedding model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AppConfig holds the recognized configuration options. It replaces the
// free-form option bag of earlier designs: every option is enumerated here
// with a documented default.
type AppConfig struct {
	collection        string
	dimension         int
	alpha             float64
	searchLimit       int
	dbURL             string
	dataDir           string
	modelDir          string
	logLevel          string
	logFormat         LogFormat
	host              string
	port              int
	embeddingEndpoint *Endpoint
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".datasage"
	}
	return filepath.Join(home, ".datasage")
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		collection:  DefaultCollection,
		dimension:   DefaultDimension,
		alpha:       DefaultAlpha,
		searchLimit: DefaultSearchLimit,
		dbURL:       "sqlite:///" + filepath.Join(dataDir, "datasage.db"),
		dataDir:     dataDir,
		modelDir:    filepath.Join(dataDir, "models"),
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		host:        DefaultHost,
		port:        DefaultPort,
	}
}

// Collection returns the collection (table prefix) name.
func (c AppConfig) Collection() string { return c.collection }

// Dimension returns the embedding dimension.
func (c AppConfig) Dimension() int { return c.dimension }

// Alpha returns the lexical fusion weight.
func (c AppConfig) Alpha() float64 { return c.alpha }

// SearchLimit returns the default search result limit.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// ModelDir returns the local embedding model directory.
func (c AppConfig) ModelDir() string { return c.modelDir }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Host returns the API server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the API server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// EmbeddingEndpoint returns the embedding endpoint config, or nil when the
// local model is used.
func (c AppConfig) EmbeddingEndpoint() *Endpoint { return c.embeddingEndpoint }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithCollection sets the collection (table prefix) name.
func WithCollection(name string) AppConfigOption {
	return func(c *AppConfig) {
		if name != "" {
			c.collection = name
		}
	}
}

// WithDimension sets the embedding dimension.
func WithDimension(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.dimension = n
		}
	}
}

// WithAlpha sets the lexical fusion weight. Values outside [0,1] are ignored.
func WithAlpha(alpha float64) AppConfigOption {
	return func(c *AppConfig) {
		if alpha >= 0 && alpha <= 1 {
			c.alpha = alpha
		}
	}
}

// WithSearchLimit sets the default search result limit.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		c.modelDir = filepath.Join(dir, "models")
	}
}

// WithModelDir sets the local embedding model directory.
func WithModelDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.modelDir = dir }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithHost sets the API server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the API server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithEmbeddingEndpoint sets the embedding endpoint.
func WithEmbeddingEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.embeddingEndpoint = &e }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// The API key is shown only as a presence flag.
func (c AppConfig) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("collection", c.collection),
		slog.Int("dimension", c.dimension),
		slog.Float64("alpha", c.alpha),
		slog.Int("search_limit", c.searchLimit),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
	}
	if c.embeddingEndpoint != nil {
		attrs = append(attrs,
			slog.String("embedding_model", c.embeddingEndpoint.Model()),
			slog.Bool("embedding_api_key_set", c.embeddingEndpoint.APIKey() != ""),
		)
	}
	return attrs
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if len(c.dbURL) >= 7 && c.dbURL[:7] == "sqlite:" {
		return c.dbURL
	}
	return "postgres://***@***"
}
