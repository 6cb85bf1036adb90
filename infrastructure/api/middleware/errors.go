// Package middleware provides HTTP middleware and response helpers for the
// API server.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/datasage-io/datasage/domain/knowledge"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a domain error to an HTTP status and writes the error
// body. The classification kind and retryability travel with the response so
// clients can dispatch without parsing messages.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	kind := knowledge.Classify(err)
	status := statusFor(kind)

	requestID := chimiddleware.GetReqID(r.Context())
	if logger != nil {
		logger.Warn("request failed",
			"request_id", requestID,
			"path", r.URL.Path,
			"status", status,
			"kind", string(kind),
			"error", err,
		)
	}

	WriteJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Kind:      string(kind),
		Retryable: kind.Retryable(),
		RequestID: requestID,
	})
}

func statusFor(kind knowledge.Kind) int {
	switch kind {
	case knowledge.KindInvalidArgument:
		return http.StatusBadRequest
	case knowledge.KindDuplicateID:
		return http.StatusConflict
	case knowledge.KindDimensionMismatch, knowledge.KindFormat:
		return http.StatusUnprocessableEntity
	case knowledge.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case knowledge.KindEmbedding:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
