package service

import (
	"context"
	"log/slog"

	"github.com/datasage-io/datasage/domain/search"
	"golang.org/x/sync/errgroup"
)

// Retrieval exposes hybrid search with a configured default result limit.
// A non-positive limit falls back to the default; the engine itself rejects
// non-positive limits.
type Retrieval struct {
	engine       search.Engine
	defaultLimit int
	logger       *slog.Logger
}

// NewRetrieval creates a Retrieval service.
func NewRetrieval(engine search.Engine, defaultLimit int, logger *slog.Logger) *Retrieval {
	if defaultLimit <= 0 {
		defaultLimit = search.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrieval{
		engine:       engine,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (r *Retrieval) limitOrDefault(limit int) int {
	if limit <= 0 {
		return r.defaultLimit
	}
	return limit
}

// Schema returns the schema entries most relevant to the question.
func (r *Retrieval) Schema(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	return r.engine.SearchSchema(ctx, question, r.limitOrDefault(limit))
}

// Documentation returns the documentation entries most relevant to the question.
func (r *Retrieval) Documentation(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	return r.engine.SearchDocumentation(ctx, question, r.limitOrDefault(limit))
}

// Examples returns the learned question/SQL pairs most relevant to the question.
func (r *Retrieval) Examples(ctx context.Context, question string, limit int) ([]search.ExampleMatch, error) {
	return r.engine.SearchExamples(ctx, question, r.limitOrDefault(limit))
}

// Bundle is the full retrieval context for one question: the top matches
// from every collection, ready to assemble into a prompt.
type Bundle struct {
	schema        []search.SchemaMatch
	documentation []search.SchemaMatch
	examples      []search.ExampleMatch
}

// Schema returns the matched schema entries.
func (b Bundle) Schema() []search.SchemaMatch { return b.schema }

// Documentation returns the matched documentation entries.
func (b Bundle) Documentation() []search.SchemaMatch { return b.documentation }

// Examples returns the matched question/SQL pairs.
func (b Bundle) Examples() []search.ExampleMatch { return b.examples }

// Context searches all three collections concurrently and returns the
// combined retrieval context for the question.
func (r *Retrieval) Context(ctx context.Context, question string, limit int) (Bundle, error) {
	limit = r.limitOrDefault(limit)

	var bundle Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		matches, err := r.engine.SearchSchema(gctx, question, limit)
		bundle.schema = matches
		return err
	})
	g.Go(func() error {
		matches, err := r.engine.SearchDocumentation(gctx, question, limit)
		bundle.documentation = matches
		return err
	})
	g.Go(func() error {
		matches, err := r.engine.SearchExamples(gctx, question, limit)
		bundle.examples = matches
		return err
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	r.logger.Debug("retrieval context assembled",
		"schema", len(bundle.schema),
		"documentation", len(bundle.documentation),
		"examples", len(bundle.examples),
	)
	return bundle, nil
}
