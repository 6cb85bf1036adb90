// Package datasage provides a hybrid retrieval store for text-to-SQL
// assistants: schema DDL, database documentation, and learned question/SQL
// pairs, searchable by fused full-text and vector similarity.
//
// Basic usage:
//
//	client, err := datasage.New(
//	    datasage.WithSQLite(".datasage/data.db"),
//	    datasage.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Index the database schema
//	entry, err := client.Knowledge.IndexSchema(ctx, "CREATE TABLE users (...)", nil)
//
//	// Record a validated question/SQL pair
//	pair, created, err := client.Learning.Learn(ctx, "how many users?", "SELECT COUNT(*) FROM users")
//
//	// Retrieve context for a new question
//	bundle, err := client.Search.Context(ctx, "users signed up last week", 5)
package datasage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/datasage-io/datasage/application/service"
	"github.com/datasage-io/datasage/domain/search"
	"github.com/datasage-io/datasage/infrastructure/persistence"
	"github.com/datasage-io/datasage/infrastructure/provider"
	infrasearch "github.com/datasage-io/datasage/infrastructure/search"
	"github.com/datasage-io/datasage/internal/config"
	"github.com/datasage-io/datasage/internal/database"
	"github.com/datasage-io/datasage/internal/log"
)

// ErrClientClosed indicates the client has already been closed.
var ErrClientClosed = errors.New("client is closed")

// Connection pool settings applied to every database the client opens.
const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 30 * time.Minute
)

// Client is the main entry point for the datasage library.
//
// Access resources via struct fields:
//
//	client.Knowledge.IndexSchema(ctx, ddl, nil)
//	client.Learning.Learn(ctx, question, sql)
//	client.Search.Schema(ctx, question, 5)
type Client struct {
	// Public resource fields (direct service access)
	Knowledge *service.Knowledge
	Learning  *service.Learning
	Search    *service.Retrieval

	db            database.Database
	store         *persistence.Store
	hugotEmbedder *provider.HugotEmbedder

	logger *slog.Logger
	closed atomic.Bool
}

// New creates a Client with the given options. Collections are provisioned
// on first use; New itself provisions them eagerly so a misconfigured
// database fails fast.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.NewLogger(config.NewAppConfig()).Slog()
	}

	if err := cfg.app.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	client := &Client{logger: logger}

	embedder, err := client.buildEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.app.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite gets a single connection: writes serialize anyway, and a second
	// pooled connection to :memory: would see a separate database.
	maxOpen, maxIdle := dbMaxOpenConns, dbMaxIdleConns
	if db.IsSQLite() {
		maxOpen, maxIdle = 1, 1
	}
	if err := db.ConfigurePool(maxOpen, maxIdle, dbConnMaxLifetime); err != nil {
		return nil, errors.Join(fmt.Errorf("configure connection pool: %w", err), db.Close())
	}
	client.db = db

	store, err := persistence.NewStore(db, logger, cfg.app.Collection(), cfg.app.Dimension())
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	client.store = store

	fusion := search.NewFusionWithAlpha(cfg.app.Alpha())
	engine := infrasearch.NewHybridEngine(store, store, embedder, cfg.app.Dimension(), fusion, logger)

	client.Knowledge = service.NewKnowledge(store, embedder, logger)
	client.Learning = service.NewLearning(store, embedder, logger)
	client.Search = service.NewRetrieval(engine, cfg.app.SearchLimit(), logger)

	logger.Info("datasage client ready",
		"collection", cfg.app.Collection(),
		"dimension", cfg.app.Dimension(),
		"alpha", fusion.Alpha(),
	)
	return client, nil
}

// buildEmbedder resolves the embedding provider: an explicitly supplied
// Embedder wins, then a configured OpenAI-compatible endpoint, then the
// built-in local model.
func (c *Client) buildEmbedder(cfg *clientConfig, logger *slog.Logger) (search.Embedder, error) {
	if cfg.embedder != nil {
		return cfg.embedder, nil
	}

	if endpoint := cfg.app.EmbeddingEndpoint(); endpoint != nil && endpoint.IsConfigured() {
		return provider.NewOpenAIEmbedder(provider.OpenAIConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			Model:         endpoint.Model(),
			Dimension:     cfg.app.Dimension(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}), nil
	}

	modelDir := cfg.app.ModelDir()
	if modelDir == "" {
		modelDir = filepath.Join(cfg.app.DataDir(), "models")
	}
	hugotEmbedder := provider.NewHugotEmbedder(modelDir)
	if !hugotEmbedder.Available() {
		return nil, fmt.Errorf("no embedding provider configured and no local model found in %s", modelDir)
	}
	c.hugotEmbedder = hugotEmbedder
	logger.Info("built-in embedding provider enabled", slog.String("model_dir", modelDir))
	return hugotEmbedder, nil
}

// Store exposes the underlying record store for advanced use.
func (c *Client) Store() *persistence.Store {
	return c.store
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Close releases the database connection and any embedding resources.
// Subsequent calls return ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	if c.hugotEmbedder != nil {
		if err := c.hugotEmbedder.Close(); err != nil {
			c.logger.Error("failed to close embedding provider", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
