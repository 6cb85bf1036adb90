package persistence

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 3

// newTestDB creates an in-memory SQLite database for testing.
func newTestDB(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewStore(newTestDB(t), logger, "testsage", testDimension)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func testEntry(document string) knowledge.Entry {
	return knowledge.NewEntry("", document, []float64{0.1, 0.2, 0.3}, nil, time.Time{})
}

func testPair(question, sqlQuery string) knowledge.Pair {
	return knowledge.NewPair("", question, sqlQuery, []float64{0.1, 0.2, 0.3}, time.Time{})
}

func TestNewStore_RejectsBadPrefix(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := newTestDB(t)

	for _, prefix := range []string{"", "1starts_with_digit", "has space", "drop;table"} {
		_, err := NewStore(db, logger, prefix, testDimension)
		assert.ErrorIs(t, err, knowledge.ErrInvalidArgument, "prefix %q", prefix)
	}

	_, err := NewStore(db, logger, "valid_prefix", 0)
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)
}

func TestStore_EnsureSchema_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestStore_InsertEntry_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entry := knowledge.NewEntry("", "CREATE TABLE users (id INTEGER)", []float64{0.5, -0.25, 1},
		map[string]any{"type": "ddl", "source": "migration"}, time.Time{})

	stored, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID())
	assert.False(t, stored.CreatedAt().IsZero())

	entries, err := store.Entries(ctx, knowledge.CollectionSchema)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, stored.ID(), got.ID())
	assert.Equal(t, "CREATE TABLE users (id INTEGER)", got.Document())
	assert.Equal(t, "ddl", got.Metadata()["type"])
	assert.Equal(t, "migration", got.Metadata()["source"])
	require.Len(t, got.Embedding(), testDimension)
	assert.InDelta(t, 0.5, got.Embedding()[0], 1e-6)
	assert.InDelta(t, -0.25, got.Embedding()[1], 1e-6)
	assert.InDelta(t, 1.0, got.Embedding()[2], 1e-6)
}

func TestStore_InsertEntry_PreservesExplicitID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stored, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("doc").WithID("my-id"))
	require.NoError(t, err)
	assert.Equal(t, "my-id", stored.ID())
}

func TestStore_InsertEntry_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entry := testEntry("doc").WithID("dup")
	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	require.NoError(t, err)

	_, err = store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, knowledge.ErrDuplicateID)

	// First write is untouched.
	count, err := store.Count(ctx, knowledge.CollectionSchema)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_InsertEntry_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tests := []struct {
		name      string
		embedding []float64
	}{
		{"too short", []float64{0.1, 0.2}},
		{"too long", []float64{0.1, 0.2, 0.3, 0.4}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := knowledge.NewEntry("", "doc", tt.embedding, nil, time.Time{})
			_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
			assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)
		})
	}
}

func TestStore_Insert_RejectsNonFiniteEmbedding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entry := knowledge.NewEntry("", "doc", []float64{1, math.NaN(), 0}, nil, time.Time{})
	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	assert.ErrorIs(t, err, knowledge.ErrFormat)

	pair := knowledge.NewPair("", "q", "SELECT 1", []float64{math.Inf(1), 0, 0}, time.Time{})
	_, err = store.InsertPair(ctx, pair)
	assert.ErrorIs(t, err, knowledge.ErrFormat)

	// The failed writes left no partial rows behind.
	for _, collection := range knowledge.Collections() {
		count, err := store.Count(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count, collection.String())
	}
}

func TestStore_InsertEntry_RejectsExamplesCollection(t *testing.T) {
	store := newTestStore(t)
	_, err := store.InsertEntry(context.Background(), knowledge.CollectionExamples, testEntry("doc"))
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)
}

func TestStore_Entries_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	documents := []string{"first", "second", "third", "fourth"}
	for _, document := range documents {
		_, err := store.InsertEntry(ctx, knowledge.CollectionDocumentation, testEntry(document))
		require.NoError(t, err)
	}

	entries, err := store.Entries(ctx, knowledge.CollectionDocumentation)
	require.NoError(t, err)
	require.Len(t, entries, len(documents))
	for i, document := range documents {
		assert.Equal(t, document, entries[i].Document())
	}
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("ddl"))
	require.NoError(t, err)

	docs, err := store.Entries(ctx, knowledge.CollectionDocumentation)
	require.NoError(t, err)
	assert.Empty(t, docs)

	count, err := store.Count(ctx, knowledge.CollectionDocumentation)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStore_InsertPair_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stored, err := store.InsertPair(ctx, testPair("how many users?", "SELECT COUNT(*) FROM users"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID())

	pairs, err := store.Pairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "how many users?", pairs[0].Question())
	assert.Equal(t, "SELECT COUNT(*) FROM users", pairs[0].SQL())
	require.Len(t, pairs[0].Embedding(), testDimension)
}

func TestStore_FindPair(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.InsertPair(ctx, testPair("how many users?", "SELECT COUNT(*)\nFROM users"))
	require.NoError(t, err)

	t.Run("exact match", func(t *testing.T) {
		pair, found, err := store.FindPair(ctx, "how many users?", "SELECT COUNT(*)\nFROM users")
		require.NoError(t, err)
		require.True(t, found)
		assert.NotEmpty(t, pair.ID())
	})

	t.Run("whitespace variant matches", func(t *testing.T) {
		_, found, err := store.FindPair(ctx, "  how   many users? ", "SELECT COUNT(*) FROM users")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("case difference does not match", func(t *testing.T) {
		_, found, err := store.FindPair(ctx, "How many users?", "SELECT COUNT(*) FROM users")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown content", func(t *testing.T) {
		_, found, err := store.FindPair(ctx, "other question", "SELECT 1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stored, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("to delete"))
	require.NoError(t, err)

	removed, err := store.Delete(ctx, knowledge.CollectionSchema, stored.ID())
	require.NoError(t, err)
	assert.True(t, removed)

	// Absent id is not an error.
	removed, err = store.Delete(ctx, knowledge.CollectionSchema, stored.ID())
	require.NoError(t, err)
	assert.False(t, removed)

	entries, err := store.Entries(ctx, knowledge.CollectionSchema)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The full-text index row is gone too.
	results, err := store.Scores(ctx, knowledge.CollectionSchema, "delete", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Delete_UnknownCollection(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Delete(context.Background(), knowledge.Collection("bogus"), "id")
	assert.ErrorIs(t, err, knowledge.ErrInvalidArgument)
}

func TestStore_Count(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("doc"))
		require.NoError(t, err)
	}
	_, err := store.InsertPair(ctx, testPair("q", "s"))
	require.NoError(t, err)

	count, err := store.Count(ctx, knowledge.CollectionSchema)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = store.Count(ctx, knowledge.CollectionExamples)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_Scores_FullText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE users (id INTEGER, email TEXT)"))
	require.NoError(t, err)
	_, err = store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE orders (id INTEGER, total REAL)"))
	require.NoError(t, err)

	results, err := store.Scores(ctx, knowledge.CollectionSchema, "users email", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Score(), 0.0)
}

func TestStore_Scores_ExamplesMatchQuestionAndSQL(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.InsertPair(ctx, testPair("total revenue last month", "SELECT SUM(total) FROM orders"))
	require.NoError(t, err)

	byQuestion, err := store.Scores(ctx, knowledge.CollectionExamples, "revenue", 10)
	require.NoError(t, err)
	assert.Len(t, byQuestion, 1)

	bySQL, err := store.Scores(ctx, knowledge.CollectionExamples, "orders", 10)
	require.NoError(t, err)
	assert.Len(t, bySQL, 1)
}

func TestStore_Scores_EmptyQuery(t *testing.T) {
	store := newTestStore(t)
	results, err := store.Scores(context.Background(), knowledge.CollectionSchema, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Scores_OperatorsTreatedAsText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE users (id INTEGER)"))
	require.NoError(t, err)

	// FTS5 operators in user input must not produce a syntax error.
	for _, query := range []string{"users AND orders", "users*", `"users"`, "users NOT"} {
		_, err := store.Scores(ctx, knowledge.CollectionSchema, query, 10)
		assert.NoError(t, err, "query %q", query)
	}
}
