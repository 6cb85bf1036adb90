package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
)

// HybridEngine ranks stored records against a question by fusing the store's
// full-text relevance with cosine similarity over stored embeddings. The
// candidate set is the whole collection; lexical scores cover only records
// the full-text index matched, everything else enters fusion with lexical 0.
type HybridEngine struct {
	store     knowledge.RecordStore
	lexical   search.LexicalScorer
	embedder  search.Embedder
	fusion    search.Fusion
	dimension int
	logger    *slog.Logger
}

// NewHybridEngine creates a HybridEngine. The embedder must produce vectors
// of the given dimension; a disagreement at query time is reported as a
// dimension mismatch rather than silently skewing similarity.
func NewHybridEngine(store knowledge.RecordStore, lexical search.LexicalScorer, embedder search.Embedder, dimension int, fusion search.Fusion, logger *slog.Logger) *HybridEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridEngine{
		store:     store,
		lexical:   lexical,
		embedder:  embedder,
		fusion:    fusion,
		dimension: dimension,
		logger:    logger,
	}
}

// SearchSchema ranks schema entries against the question.
func (e *HybridEngine) SearchSchema(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	return e.searchEntries(ctx, knowledge.CollectionSchema, question, limit)
}

// SearchDocumentation ranks documentation entries against the question.
func (e *HybridEngine) SearchDocumentation(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	return e.searchEntries(ctx, knowledge.CollectionDocumentation, question, limit)
}

func (e *HybridEngine) validate(question string, limit int) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: question is empty", knowledge.ErrInvalidArgument)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", knowledge.ErrInvalidArgument, limit)
	}
	return nil
}

// embedQuestion embeds the question and checks the vector against the
// configured dimension.
func (e *HybridEngine) embedQuestion(ctx context.Context, question string) ([]float64, error) {
	vectors, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, got %d", knowledge.ErrEmbedding, len(vectors))
	}
	if len(vectors[0]) != e.dimension {
		return nil, fmt.Errorf("%w: query embedding has %d values, engine is configured for %d", knowledge.ErrDimensionMismatch, len(vectors[0]), e.dimension)
	}
	return vectors[0], nil
}

func (e *HybridEngine) searchEntries(ctx context.Context, collection knowledge.Collection, question string, limit int) ([]search.SchemaMatch, error) {
	if err := e.validate(question, limit); err != nil {
		return nil, err
	}

	// Embed before touching storage: a misdimensioned query must fail even
	// when the collection turns out to be empty.
	queryVector, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.Entries(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []search.SchemaMatch{}, nil
	}

	lexicalByID, err := e.lexicalScores(ctx, collection, question)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]knowledge.Entry, len(entries))
	candidates := make([]search.Candidate, 0, len(entries))
	for _, entry := range entries {
		byID[entry.ID()] = entry
		vector := CosineSimilarity(queryVector, entry.Embedding())
		candidates = append(candidates, search.NewCandidate(entry.ID(), lexicalByID[entry.ID()], vector, entry.CreatedAt()))
	}

	ranked := e.fusion.FuseTopK(limit, candidates)
	matches := make([]search.SchemaMatch, len(ranked))
	for i, r := range ranked {
		matches[i] = search.NewSchemaMatch(byID[r.ID()], r.Scores())
	}

	e.logger.Debug("hybrid search complete",
		"collection", collection.String(),
		"candidates", len(candidates),
		"returned", len(matches),
	)
	return matches, nil
}

// SearchExamples ranks learned question/SQL pairs against the question.
func (e *HybridEngine) SearchExamples(ctx context.Context, question string, limit int) ([]search.ExampleMatch, error) {
	if err := e.validate(question, limit); err != nil {
		return nil, err
	}

	queryVector, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	pairs, err := e.store.Pairs(ctx)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return []search.ExampleMatch{}, nil
	}

	lexicalByID, err := e.lexicalScores(ctx, knowledge.CollectionExamples, question)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]knowledge.Pair, len(pairs))
	candidates := make([]search.Candidate, 0, len(pairs))
	for _, pair := range pairs {
		byID[pair.ID()] = pair
		vector := CosineSimilarity(queryVector, pair.Embedding())
		candidates = append(candidates, search.NewCandidate(pair.ID(), lexicalByID[pair.ID()], vector, pair.CreatedAt()))
	}

	ranked := e.fusion.FuseTopK(limit, candidates)
	matches := make([]search.ExampleMatch, len(ranked))
	for i, r := range ranked {
		matches[i] = search.NewExampleMatch(byID[r.ID()], r.Scores())
	}

	e.logger.Debug("hybrid search complete",
		"collection", knowledge.CollectionExamples.String(),
		"candidates", len(candidates),
		"returned", len(matches),
	)
	return matches, nil
}

// lexicalScores fetches unbounded full-text scores so normalization at fusion
// sees the true per-query maximum.
func (e *HybridEngine) lexicalScores(ctx context.Context, collection knowledge.Collection, question string) (map[string]float64, error) {
	results, err := e.lexical.Scores(ctx, collection, question, 0)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]float64, len(results))
	for _, r := range results {
		byID[r.ID()] = r.Score()
	}
	return byID, nil
}
