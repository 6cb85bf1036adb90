package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
	"github.com/datasage-io/datasage/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 3

// stubEmbedder returns canned vectors keyed by input text and counts calls.
type stubEmbedder struct {
	vectors map[string][]float64
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	s.calls++
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("%w: no stub vector for %q", knowledge.ErrEmbedding, text)
		}
		out[i] = vec
	}
	return out, nil
}

func newTestEngine(t *testing.T, embedder search.Embedder) (*HybridEngine, *persistence.MemoryStore) {
	t.Helper()
	store := persistence.NewMemoryStore(testDimension)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewHybridEngine(store, store, embedder, testDimension, search.NewFusion(), logger)
	return engine, store
}

func insertEntry(t *testing.T, store *persistence.MemoryStore, collection knowledge.Collection, document string, embedding []float64) knowledge.Entry {
	t.Helper()
	entry := knowledge.NewEntry("", document, embedding, nil, time.Time{})
	stored, err := store.InsertEntry(context.Background(), collection, entry)
	require.NoError(t, err)
	return stored
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{"identical vectors", []float64{1, 0, 0}, []float64{1, 0, 0}, 1.0},
		{"opposite vectors", []float64{1, 0, 0}, []float64{-1, 0, 0}, -1.0},
		{"orthogonal vectors", []float64{1, 0, 0}, []float64{0, 1, 0}, 0.0},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 0, 0}, 0.0},
		{"empty vectors", []float64{}, []float64{}, 0.0},
		{"mismatched lengths", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestHybridEngine_ValidatesArguments(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, &stubEmbedder{})

	_, err := engine.SearchSchema(ctx, "", 5)
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)

	_, err = engine.SearchSchema(ctx, "   ", 5)
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)

	_, err = engine.SearchSchema(ctx, "question", 0)
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)

	_, err = engine.SearchExamples(ctx, "question", -1)
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)
}

func TestHybridEngine_EmptyCorpus(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"anything": {1, 0, 0},
	}}
	engine, _ := newTestEngine(t, embedder)

	matches, err := engine.SearchSchema(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	examples, err := engine.SearchExamples(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestHybridEngine_EmptyCorpusStillChecksQueryDimension(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"anything": {1, 0}, // wrong length
	}}
	engine, _ := newTestEngine(t, embedder)

	// An empty collection must not mask a misdimensioned embedder.
	_, err := engine.SearchSchema(ctx, "anything", 5)
	assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)

	_, err = engine.SearchExamples(ctx, "anything", 5)
	assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)
}

func TestHybridEngine_SemanticMatchOutranksLexicalMiss(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"which clients signed up recently": {1, 0, 0},
	}}
	engine, store := newTestEngine(t, embedder)

	// Semantically close but shares no words with the question.
	customers := insertEntry(t, store, knowledge.CollectionSchema,
		"CREATE TABLE customers (id INTEGER, registered_at DATETIME)", []float64{0.95, 0.05, 0})
	// Lexically overlapping ("recently") but semantically far.
	insertEntry(t, store, knowledge.CollectionSchema,
		"CREATE TABLE recently_deleted (id INTEGER)", []float64{0, 1, 0})

	matches, err := engine.SearchSchema(ctx, "which clients signed up recently", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, customers.ID(), matches[0].Entry().ID())
	assert.Greater(t, matches[0].Scores().Combined(), matches[1].Scores().Combined())
}

func TestHybridEngine_ExposesConstituentScores(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"users": {1, 0, 0},
	}}
	engine, store := newTestEngine(t, embedder)

	insertEntry(t, store, knowledge.CollectionSchema, "CREATE TABLE users (id INTEGER)", []float64{1, 0, 0})

	matches, err := engine.SearchSchema(ctx, "users", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	scores := matches[0].Scores()
	assert.Greater(t, scores.Lexical(), 0.0)
	assert.InDelta(t, 1.0, scores.Vector(), 1e-9)
	assert.InDelta(t, 1.0, scores.Combined(), 1e-9)
}

func TestHybridEngine_LimitTruncates(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"query": {1, 0, 0},
	}}
	engine, store := newTestEngine(t, embedder)

	for i := 0; i < 5; i++ {
		insertEntry(t, store, knowledge.CollectionSchema,
			fmt.Sprintf("CREATE TABLE t%d (id INTEGER)", i), []float64{1, 0, float64(i) * 0.1})
	}

	matches, err := engine.SearchSchema(ctx, "query", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = engine.SearchSchema(ctx, "query", 50)
	require.NoError(t, err)
	assert.Len(t, matches, 5)
}

func TestHybridEngine_SearchExamples(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"revenue per customer": {0, 1, 0},
	}}
	engine, store := newTestEngine(t, embedder)

	pair := knowledge.NewPair("", "total revenue by customer", "SELECT customer_id, SUM(total) FROM orders GROUP BY customer_id", []float64{0, 0.9, 0.1}, time.Time{})
	stored, err := store.InsertPair(ctx, pair)
	require.NoError(t, err)

	other := knowledge.NewPair("", "list products", "SELECT name FROM products", []float64{1, 0, 0}, time.Time{})
	_, err = store.InsertPair(ctx, other)
	require.NoError(t, err)

	matches, err := engine.SearchExamples(ctx, "revenue per customer", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, stored.ID(), matches[0].Pair().ID())
}

func TestHybridEngine_QueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"question": {1, 0}, // wrong length
	}}
	engine, store := newTestEngine(t, embedder)
	insertEntry(t, store, knowledge.CollectionSchema, "CREATE TABLE users (id INTEGER)", []float64{1, 0, 0})

	_, err := engine.SearchSchema(ctx, "question", 5)
	assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)
}

func TestHybridEngine_EmbedderFailurePropagates(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, &stubEmbedder{})
	insertEntry(t, store, knowledge.CollectionSchema, "CREATE TABLE users (id INTEGER)", []float64{1, 0, 0})

	_, err := engine.SearchSchema(ctx, "unmapped question", 5)
	assert.ErrorIs(t, err, knowledge.ErrEmbedding)
}

func TestHybridEngine_Deterministic(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"query": {0.5, 0.5, 0},
	}}
	engine, store := newTestEngine(t, embedder)

	for i := 0; i < 4; i++ {
		insertEntry(t, store, knowledge.CollectionSchema,
			fmt.Sprintf("CREATE TABLE t%d (id INTEGER)", i), []float64{float64(i) * 0.2, 1 - float64(i)*0.2, 0})
	}

	first, err := engine.SearchSchema(ctx, "query", 4)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.SearchSchema(ctx, "query", 4)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
