package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/datasage-io/datasage/domain/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEngine records the limits it was called with and returns empty
// results.
type recordingEngine struct {
	schemaLimit, docsLimit, examplesLimit int
}

func (e *recordingEngine) SearchSchema(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	e.schemaLimit = limit
	return []search.SchemaMatch{}, nil
}

func (e *recordingEngine) SearchDocumentation(ctx context.Context, question string, limit int) ([]search.SchemaMatch, error) {
	e.docsLimit = limit
	return []search.SchemaMatch{}, nil
}

func (e *recordingEngine) SearchExamples(ctx context.Context, question string, limit int) ([]search.ExampleMatch, error) {
	e.examplesLimit = limit
	return []search.ExampleMatch{}, nil
}

func TestRetrieval_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	retrieval := NewRetrieval(engine, 7, testLogger())

	_, err := retrieval.Schema(ctx, "question", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, engine.schemaLimit)

	_, err = retrieval.Documentation(ctx, "question", -3)
	require.NoError(t, err)
	assert.Equal(t, 7, engine.docsLimit)

	_, err = retrieval.Examples(ctx, "question", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.examplesLimit)
}

func TestRetrieval_Context_SearchesAllCollections(t *testing.T) {
	ctx := context.Background()
	engine := &recordingEngine{}
	retrieval := NewRetrieval(engine, 0, testLogger())

	bundle, err := retrieval.Context(ctx, "question", 0)
	require.NoError(t, err)
	assert.Empty(t, bundle.Schema())
	assert.Empty(t, bundle.Documentation())
	assert.Empty(t, bundle.Examples())

	assert.Equal(t, search.DefaultLimit, engine.schemaLimit)
	assert.Equal(t, search.DefaultLimit, engine.docsLimit)
	assert.Equal(t, search.DefaultLimit, engine.examplesLimit)
}

func TestSnapshot_YAMLRoundTrip(t *testing.T) {
	snapshot := Snapshot{
		ExportedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Schema: []EntryExport{
			{ID: "a", Document: "CREATE TABLE users (id INTEGER)", Metadata: map[string]any{"type": "ddl"}},
		},
		Examples: []ExampleExport{
			{ID: "b", Question: "how many users?", SQL: "SELECT COUNT(*) FROM users"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, snapshot.WriteYAML(&buf))

	parsed, err := ReadSnapshotYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ExportedAt, parsed.ExportedAt)
	require.Len(t, parsed.Schema, 1)
	assert.Equal(t, "a", parsed.Schema[0].ID)
	assert.Equal(t, "ddl", parsed.Schema[0].Metadata["type"])
	require.Len(t, parsed.Examples, 1)
	assert.Equal(t, "SELECT COUNT(*) FROM users", parsed.Examples[0].SQL)
}
