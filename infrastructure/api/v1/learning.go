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

// LearningRouter handles question/SQL learning endpoints.
type LearningRouter struct {
	client *datasage.Client
	logger *slog.Logger
}

// NewLearningRouter creates a LearningRouter.
func NewLearningRouter(client *datasage.Client) *LearningRouter {
	return &LearningRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for learning endpoints.
func (r *LearningRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Learn)

	return router
}

// LearnRequest is the body for POST /api/v1/learn.
type LearnRequest struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// LearnResponse reports the stored pair and whether it was newly created.
type LearnResponse struct {
	Pair    PairDTO `json:"pair"`
	Created bool    `json:"created"`
}

// Learn handles POST /api/v1/learn. Learning is idempotent: re-posting known
// content returns the existing pair with created false.
func (r *LearningRouter) Learn(w http.ResponseWriter, req *http.Request) {
	var body LearnRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", knowledge.ErrInvalidArgument, err), r.logger)
		return
	}

	pair, created, err := r.client.Learning.Learn(req.Context(), body.Question, body.SQL)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.WriteJSON(w, status, LearnResponse{Pair: pairDTO(pair), Created: created})
}
