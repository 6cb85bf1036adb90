package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix stripped from environment variable names.
const envPrefix = "DATASAGE"

// EnvConfig holds all environment-based configuration. Field names map to
// environment variables with the DATASAGE_ prefix.
type EnvConfig struct {
	// Collection is the collection (table prefix) name.
	// Env: DATASAGE_COLLECTION (default: datasage)
	Collection string `envconfig:"COLLECTION" default:"datasage"`

	// Dimension is the embedding dimension.
	// Env: DATASAGE_DIMENSION (default: 384)
	Dimension int `envconfig:"DIMENSION" default:"384"`

	// Alpha is the lexical fusion weight in [0,1].
	// Env: DATASAGE_ALPHA (default: 0.25)
	Alpha float64 `envconfig:"ALPHA" default:"0.25"`

	// SearchLimit is the default search result limit.
	// Env: DATASAGE_SEARCH_LIMIT (default: 5)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"5"`

	// DBURL is the database connection URL.
	// Env: DATASAGE_DB_URL
	// Default: sqlite:///{data_dir}/datasage.db
	DBURL string `envconfig:"DB_URL"`

	// DataDir is the data directory path.
	// Env: DATASAGE_DATA_DIR (default: ~/.datasage)
	DataDir string `envconfig:"DATA_DIR"`

	// LogLevel is the log verbosity level.
	// Env: DATASAGE_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: DATASAGE_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Host is the API server host.
	// Env: DATASAGE_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the API server port.
	// Env: DATASAGE_PORT (default: 8420)
	Port int `envconfig:"PORT" default:"8420"`

	// EmbeddingBaseURL is the embedding API base URL.
	// Env: DATASAGE_EMBEDDING_BASE_URL
	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL"`

	// EmbeddingModel is the embedding model identifier.
	// Env: DATASAGE_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// EmbeddingAPIKey is the embedding API key.
	// Env: DATASAGE_EMBEDDING_API_KEY
	EmbeddingAPIKey string `envconfig:"EMBEDDING_API_KEY"`
}

// LoadEnv reads configuration from the environment.
func LoadEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return EnvConfig{}, fmt.Errorf("process environment: %w", err)
	}
	return env, nil
}

// ToAppConfig converts environment configuration to an AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithCollection(e.Collection),
		WithDimension(e.Dimension),
		WithAlpha(e.Alpha),
		WithSearchLimit(e.SearchLimit),
		WithLogLevel(e.LogLevel),
		WithLogFormat(LogFormat(e.LogFormat)),
		WithHost(e.Host),
		WithPort(e.Port),
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.EmbeddingAPIKey != "" || e.EmbeddingBaseURL != "" {
		opts = append(opts, WithEmbeddingEndpoint(NewEndpointWithOptions(
			WithBaseURL(e.EmbeddingBaseURL),
			WithModel(e.EmbeddingModel),
			WithAPIKey(e.EmbeddingAPIKey),
		)))
	}
	return NewAppConfigWithOptions(opts...)
}
