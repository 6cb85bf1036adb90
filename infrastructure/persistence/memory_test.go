package persistence

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	stored, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE users (id INTEGER)"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID())
	assert.False(t, stored.CreatedAt().IsZero())

	entries, err := store.Entries(ctx, knowledge.CollectionSchema)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	removed, err := store.Delete(ctx, knowledge.CollectionSchema, stored.ID())
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, knowledge.CollectionSchema, stored.ID())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	entry := testEntry("doc").WithID("dup")
	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	require.NoError(t, err)

	_, err = store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	assert.ErrorIs(t, err, knowledge.ErrDuplicateID)
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	entry := knowledge.NewEntry("", "doc", []float64{0.1}, nil, time.Time{})
	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)

	pair := knowledge.NewPair("", "q", "s", []float64{0.1}, time.Time{})
	_, err = store.InsertPair(ctx, pair)
	assert.ErrorIs(t, err, knowledge.ErrDimensionMismatch)
}

func TestMemoryStore_RejectsNonFiniteEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	entry := knowledge.NewEntry("", "doc", []float64{1, math.NaN(), 0}, nil, time.Time{})
	_, err := store.InsertEntry(ctx, knowledge.CollectionSchema, entry)
	assert.ErrorIs(t, err, knowledge.ErrFormat)

	pair := knowledge.NewPair("", "q", "SELECT 1", []float64{math.Inf(-1), 0, 0}, time.Time{})
	_, err = store.InsertPair(ctx, pair)
	assert.ErrorIs(t, err, knowledge.ErrFormat)
}

func TestMemoryStore_FindPair_Normalized(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	_, err := store.InsertPair(ctx, testPair("how many users?", "SELECT COUNT(*) FROM users"))
	require.NoError(t, err)

	_, found, err := store.FindPair(ctx, " how  many users? ", "SELECT COUNT(*)\nFROM users")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = store.FindPair(ctx, "other", "SELECT 1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Scores_TermOverlap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testDimension)

	first, err := store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE users (email TEXT)"))
	require.NoError(t, err)
	_, err = store.InsertEntry(ctx, knowledge.CollectionSchema, testEntry("CREATE TABLE orders (total REAL)"))
	require.NoError(t, err)

	results, err := store.Scores(ctx, knowledge.CollectionSchema, "users email", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, first.ID(), results[0].ID())
	assert.Equal(t, 2.0, results[0].Score())
}
