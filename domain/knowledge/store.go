package knowledge

import "context"

// RecordStore defines durable CRUD over the three collections. Implementations
// must be safe for concurrent use by independent callers; mutating operations
// are atomic at single-record granularity.
type RecordStore interface {
	// EnsureSchema idempotently provisions all collections, including the
	// full-text index over each collection's text columns. Safe to call on
	// every startup.
	EnsureSchema(ctx context.Context) error

	// InsertEntry inserts one schema or documentation record, generating the
	// identifier if absent. Fails with ErrDuplicateID if the id exists and
	// ErrDimensionMismatch if the embedding length disagrees with the
	// configured dimension. Returns the stored entry with id and timestamp set.
	InsertEntry(ctx context.Context, collection Collection, entry Entry) (Entry, error)

	// InsertPair inserts one question/SQL pair under the same rules as
	// InsertEntry.
	InsertPair(ctx context.Context, pair Pair) (Pair, error)

	// Entries returns every record of an entry collection in insertion order.
	// Returns the complete set or fails with ErrStoreUnavailable.
	Entries(ctx context.Context, collection Collection) ([]Entry, error)

	// Pairs returns every question/SQL pair in insertion order.
	Pairs(ctx context.Context) ([]Pair, error)

	// FindPair looks up a pair by exact (whitespace-normalized, case-sensitive)
	// question and SQL match. The boolean reports whether a pair was found.
	FindPair(ctx context.Context, question, sqlQuery string) (Pair, bool, error)

	// Delete removes the record with the given id from the collection and
	// reports whether a row was actually removed. An absent id is not an error.
	Delete(ctx context.Context, collection Collection, id string) (bool, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection Collection) (int64, error)
}
