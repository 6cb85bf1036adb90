package knowledge

import "time"

// Entry is a stored schema or documentation record: raw DDL or free-text
// documentation paired with its embedding. Entries are immutable once
// written; the only mutation is deletion.
type Entry struct {
	id        string
	document  string
	embedding []float64
	metadata  map[string]any
	createdAt time.Time
}

// NewEntry creates an Entry. An empty id means the store generates one on insert.
func NewEntry(id, document string, embedding []float64, metadata map[string]any, createdAt time.Time) Entry {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	var meta map[string]any
	if metadata != nil {
		meta = make(map[string]any, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	return Entry{
		id:        id,
		document:  document,
		embedding: vec,
		metadata:  meta,
		createdAt: createdAt,
	}
}

// ID returns the entry identifier.
func (e Entry) ID() string { return e.id }

// Document returns the raw DDL or documentation text.
func (e Entry) Document() string { return e.document }

// Embedding returns the embedding vector (copy).
func (e Entry) Embedding() []float64 {
	vec := make([]float64, len(e.embedding))
	copy(vec, e.embedding)
	return vec
}

// Metadata returns the open key-value metadata (copy), or nil.
func (e Entry) Metadata() map[string]any {
	if e.metadata == nil {
		return nil
	}
	meta := make(map[string]any, len(e.metadata))
	for k, v := range e.metadata {
		meta[k] = v
	}
	return meta
}

// CreatedAt returns the creation timestamp.
func (e Entry) CreatedAt() time.Time { return e.createdAt }

// WithID returns a copy of the entry with the given identifier.
func (e Entry) WithID(id string) Entry {
	e.id = id
	return e
}

// WithCreatedAt returns a copy of the entry with the given timestamp.
func (e Entry) WithCreatedAt(t time.Time) Entry {
	e.createdAt = t
	return e
}
