package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/datasage-io/datasage"
	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/infrastructure/api/middleware"
	"github.com/go-chi/chi/v5"
)

// KnowledgeRouter handles indexing, export, and record management endpoints.
type KnowledgeRouter struct {
	client *datasage.Client
	logger *slog.Logger
}

// NewKnowledgeRouter creates a KnowledgeRouter.
func NewKnowledgeRouter(client *datasage.Client) *KnowledgeRouter {
	return &KnowledgeRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for knowledge endpoints.
func (r *KnowledgeRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/schema", r.IndexSchema)
	router.Post("/schema/batch", r.IndexSchemaBatch)
	router.Post("/documentation", r.IndexDocumentation)
	router.Get("/counts", r.Counts)
	router.Get("/export", r.Export)
	router.Delete("/{collection}/{id}", r.Delete)

	return router
}

// IndexRequest is the body for single-document indexing endpoints.
type IndexRequest struct {
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// BatchIndexRequest is the body for batch indexing endpoints.
type BatchIndexRequest struct {
	Documents []string `json:"documents"`
}

// IndexSchema handles POST /api/v1/knowledge/schema.
func (r *KnowledgeRouter) IndexSchema(w http.ResponseWriter, req *http.Request) {
	var body IndexRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", knowledge.ErrInvalidArgument, err), r.logger)
		return
	}

	entry, err := r.client.Knowledge.IndexSchema(req.Context(), body.Document, body.Metadata)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, entryDTO(entry))
}

// IndexSchemaBatch handles POST /api/v1/knowledge/schema/batch.
func (r *KnowledgeRouter) IndexSchemaBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchIndexRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", knowledge.ErrInvalidArgument, err), r.logger)
		return
	}

	entries, err := r.client.Knowledge.IndexSchemaBatch(req.Context(), body.Documents)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = entryDTO(entry)
	}
	middleware.WriteJSON(w, http.StatusCreated, dtos)
}

// IndexDocumentation handles POST /api/v1/knowledge/documentation.
func (r *KnowledgeRouter) IndexDocumentation(w http.ResponseWriter, req *http.Request) {
	var body IndexRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", knowledge.ErrInvalidArgument, err), r.logger)
		return
	}

	entry, err := r.client.Knowledge.IndexDocumentation(req.Context(), body.Document, body.Metadata)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, entryDTO(entry))
}

// Counts handles GET /api/v1/knowledge/counts.
func (r *KnowledgeRouter) Counts(w http.ResponseWriter, req *http.Request) {
	counts, err := r.client.Knowledge.Counts(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	body := make(map[string]int64, len(counts))
	for collection, count := range counts {
		body[collection.String()] = count
	}
	middleware.WriteJSON(w, http.StatusOK, body)
}

// Export handles GET /api/v1/knowledge/export.
func (r *KnowledgeRouter) Export(w http.ResponseWriter, req *http.Request) {
	snapshot, err := r.client.Knowledge.Export(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if req.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := snapshot.WriteYAML(w); err != nil {
			r.logger.Error("failed to stream snapshot", "error", err)
		}
		return
	}
	middleware.WriteJSON(w, http.StatusOK, snapshot)
}

// Delete handles DELETE /api/v1/knowledge/{collection}/{id}.
func (r *KnowledgeRouter) Delete(w http.ResponseWriter, req *http.Request) {
	collection := knowledge.Collection(chi.URLParam(req, "collection"))
	id := chi.URLParam(req, "id")

	removed, err := r.client.Knowledge.Delete(req.Context(), collection, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}
