package knowledge

import "errors"

// Sentinel errors classifying every failure the store surfaces. Callers
// dispatch with errors.Is or Classify instead of matching message strings.
var (
	// ErrEmbedding indicates the embedding provider failed or was given
	// empty input. Not retryable without changing the input.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates a vector whose length disagrees with
	// the configured dimension. Fatal to the call; never truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrDuplicateID indicates an insert under an identifier that already
	// exists. Recoverable: the caller may regenerate the id and retry.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrStoreUnavailable indicates a transient storage failure. Safe to
	// retry with backoff.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrFormat indicates malformed vector text. Fatal to that record.
	ErrFormat = errors.New("malformed vector text")

	// ErrInvalidArgument indicates a bad result limit or empty query.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind is a stable classification string for an error, exposed to the
// orchestration layer so it can decide retry vs. abort.
type Kind string

// Kind values.
const (
	KindNone              Kind = ""
	KindEmbedding         Kind = "embedding_error"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindDuplicateID       Kind = "duplicate_id"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindFormat            Kind = "format_error"
	KindInvalidArgument   Kind = "invalid_argument"
	KindUnknown           Kind = "unknown"
)

// Retryable reports whether the failure class is safe to retry unchanged.
func (k Kind) Retryable() bool {
	return k == KindStoreUnavailable
}

// Classify maps an error to its Kind. A nil error maps to KindNone; errors
// outside the taxonomy map to KindUnknown.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmbedding):
		return KindEmbedding
	case errors.Is(err, ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, ErrDuplicateID):
		return KindDuplicateID
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindUnknown
	}
}
