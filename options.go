package datasage

import (
	"log/slog"

	"github.com/datasage-io/datasage/domain/search"
	"github.com/datasage-io/datasage/infrastructure/provider"
	"github.com/datasage-io/datasage/internal/config"
)

// clientConfig holds configuration for Client construction. Defaults come
// from internal/config so the library and CLI agree on them.
type clientConfig struct {
	app      config.AppConfig
	embedder search.Embedder
	logger   *slog.Logger
}

func newClientConfig() *clientConfig {
	return &clientConfig{app: config.NewAppConfig()}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores records in a SQLite file at the given path. Full-text
// search uses FTS5.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL("sqlite:///" + path))
	}
}

// WithMemoryDatabase stores records in an in-process SQLite database that
// vanishes on Close. Suited to tests and throwaway sessions.
func WithMemoryDatabase() Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL("sqlite:///:memory:"))
	}
}

// WithPostgres stores records in PostgreSQL. Full-text search uses tsvector
// with a GIN index. The DSN must be a postgres:// or postgresql:// URL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL(dsn))
	}
}

// WithDatabaseURL sets the database connection URL directly.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDBURL(url))
	}
}

// WithOpenAI generates embeddings with the OpenAI API using the default
// embedding model.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		endpoint := config.NewEndpointWithOptions(config.WithAPIKey(apiKey))
		c.app = c.app.Apply(config.WithEmbeddingEndpoint(endpoint))
	}
}

// WithOpenAIConfig generates embeddings with a fully specified
// OpenAI-compatible endpoint.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.embedder = provider.NewOpenAIEmbedder(cfg)
	}
}

// WithLocalModel generates embeddings with the built-in local model, loading
// model files from the given directory.
func WithLocalModel(modelDir string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithModelDir(modelDir))
	}
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithLogger sets the logger for all client components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithDataDir sets the directory for local state (database file, models).
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDataDir(dir))
	}
}

// WithCollection sets the collection prefix used to name the record tables.
func WithCollection(name string) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithCollection(name))
	}
}

// WithDimension sets the embedding dimension every write is checked against.
func WithDimension(n int) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithDimension(n))
	}
}

// WithAlpha sets the lexical weight used when fusing full-text and vector
// scores. Values outside [0,1] fall back to the default.
func WithAlpha(alpha float64) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithAlpha(alpha))
	}
}

// WithSearchLimit sets the default number of search results.
func WithSearchLimit(n int) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(config.WithSearchLimit(n))
	}
}

// WithAppConfig replaces the whole configuration, e.g. one assembled from
// environment variables or a config file.
func WithAppConfig(app config.AppConfig) Option {
	return func(c *clientConfig) {
		c.app = app
	}
}
