package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datasage-io/datasage"
	"github.com/datasage-io/datasage/infrastructure/api/middleware"
	v1 "github.com/datasage-io/datasage/infrastructure/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	client, err := datasage.New(
		datasage.WithMemoryDatabase(),
		datasage.WithEmbedder(fixedEmbedder{}),
		datasage.WithDataDir(t.TempDir()),
		datasage.WithDimension(3),
		datasage.WithCollection("apitest"),
		datasage.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server := httptest.NewServer(NewServer("127.0.0.1:0", client).Router())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Healthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_IndexSchema(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema", v1.IndexRequest{
		Document: "CREATE TABLE users (id INTEGER, email TEXT)",
		Metadata: map[string]any{"source": "migration"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	entry := decodeBody[v1.EntryDTO](t, resp)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "ddl", entry.Metadata["type"])
	assert.Equal(t, "migration", entry.Metadata["source"])
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestServer_IndexSchema_EmptyDocument(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema", v1.IndexRequest{Document: "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[middleware.ErrorResponse](t, resp)
	assert.Equal(t, "invalid_argument", body.Kind)
	assert.False(t, body.Retryable)
	assert.NotEmpty(t, body.RequestID)
}

func TestServer_IndexSchema_MalformedJSON(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/knowledge/schema", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_IndexSchemaBatch(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema/batch", v1.BatchIndexRequest{
		Documents: []string{
			"CREATE TABLE users (id INTEGER)",
			"CREATE TABLE orders (id INTEGER)",
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	entries := decodeBody[[]v1.EntryDTO](t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, "CREATE TABLE users (id INTEGER)", entries[0].Document)
}

func TestServer_Learn_Idempotent(t *testing.T) {
	server := newTestServer(t)

	first := postJSON(t, server.URL+"/api/v1/learn", v1.LearnRequest{
		Question: "how many users?",
		SQL:      "SELECT COUNT(*) FROM users",
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)
	created := decodeBody[v1.LearnResponse](t, first)
	assert.True(t, created.Created)

	again := postJSON(t, server.URL+"/api/v1/learn", v1.LearnRequest{
		Question: " how  many users? ",
		SQL:      "SELECT COUNT(*)\nFROM users",
	})
	require.Equal(t, http.StatusOK, again.StatusCode)
	repeat := decodeBody[v1.LearnResponse](t, again)
	assert.False(t, repeat.Created)
	assert.Equal(t, created.Pair.ID, repeat.Pair.ID)
}

func TestServer_Search(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema", v1.IndexRequest{
		Document: "CREATE TABLE users (id INTEGER, email TEXT)",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{
		Question:   "users email",
		Collection: "schema",
		Limit:      5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[v1.SearchResponse](t, resp)
	require.Len(t, result.Schema, 1)
	assert.Contains(t, result.Schema[0].Entry.Document, "users")
	assert.Greater(t, result.Schema[0].Scores.Combined, 0.0)
}

func TestServer_Search_AllCollections(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/documentation", v1.IndexRequest{
		Document: "orders are soft-deleted via deleted_at",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{Question: "orders deleted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[v1.SearchResponse](t, resp)
	require.Len(t, result.Documentation, 1)
	assert.Empty(t, result.Schema)
}

func TestServer_Search_UnknownCollection(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/search", v1.SearchRequest{
		Question:   "anything",
		Collection: "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CountsAndDelete(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema", v1.IndexRequest{
		Document: "CREATE TABLE users (id INTEGER)",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decodeBody[v1.EntryDTO](t, resp)

	resp, err := http.Get(server.URL + "/api/v1/knowledge/counts")
	require.NoError(t, err)
	counts := decodeBody[map[string]int64](t, resp)
	resp.Body.Close()
	assert.Equal(t, int64(1), counts["schema"])
	assert.Equal(t, int64(0), counts["examples"])

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/knowledge/schema/"+entry.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	removed := decodeBody[map[string]bool](t, resp)
	resp.Body.Close()
	assert.True(t, removed["removed"])

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	removed = decodeBody[map[string]bool](t, resp)
	resp.Body.Close()
	assert.False(t, removed["removed"])
}

func TestServer_ExportYAML(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/knowledge/schema", v1.IndexRequest{
		Document: "CREATE TABLE users (id INTEGER)",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(server.URL + "/api/v1/knowledge/export?format=yaml")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE users")
}
