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

// SearchRouter handles hybrid search endpoints.
type SearchRouter struct {
	client *datasage.Client
	logger *slog.Logger
}

// NewSearchRouter creates a SearchRouter.
func NewSearchRouter(client *datasage.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Search)

	return router
}

// SearchRequest is the body for POST /api/v1/search. An empty collection
// searches all collections and returns the combined context.
type SearchRequest struct {
	Question   string `json:"question"`
	Collection string `json:"collection,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SearchResponse carries the matches for each searched collection.
type SearchResponse struct {
	Schema        []EntryMatchDTO `json:"schema,omitempty"`
	Documentation []EntryMatchDTO `json:"documentation,omitempty"`
	Examples      []PairMatchDTO  `json:"examples,omitempty"`
}

// Search handles POST /api/v1/search.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", knowledge.ErrInvalidArgument, err), r.logger)
		return
	}

	var response SearchResponse
	switch knowledge.Collection(body.Collection) {
	case knowledge.CollectionSchema:
		matches, err := r.client.Search.Schema(ctx, body.Question, body.Limit)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		response.Schema = entryMatchDTOs(matches)
	case knowledge.CollectionDocumentation:
		matches, err := r.client.Search.Documentation(ctx, body.Question, body.Limit)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		response.Documentation = entryMatchDTOs(matches)
	case knowledge.CollectionExamples:
		matches, err := r.client.Search.Examples(ctx, body.Question, body.Limit)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		response.Examples = pairMatchDTOs(matches)
	case "":
		bundle, err := r.client.Search.Context(ctx, body.Question, body.Limit)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		response.Schema = entryMatchDTOs(bundle.Schema())
		response.Documentation = entryMatchDTOs(bundle.Documentation())
		response.Examples = pairMatchDTOs(bundle.Examples())
	default:
		err := fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, body.Collection)
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}
