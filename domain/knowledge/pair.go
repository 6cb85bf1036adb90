package knowledge

import (
	"strings"
	"time"
)

// Pair is a learned question/SQL example. The embedding is computed over the
// question text only. Pairs are logically deduplicated on the
// whitespace-normalized (question, sql) tuple.
type Pair struct {
	id        string
	question  string
	sqlQuery  string
	embedding []float64
	createdAt time.Time
}

// NewPair creates a Pair. An empty id means the store generates one on insert.
func NewPair(id, question, sqlQuery string, embedding []float64, createdAt time.Time) Pair {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	return Pair{
		id:        id,
		question:  question,
		sqlQuery:  sqlQuery,
		embedding: vec,
		createdAt: createdAt,
	}
}

// ID returns the pair identifier.
func (p Pair) ID() string { return p.id }

// Question returns the natural-language question.
func (p Pair) Question() string { return p.question }

// SQL returns the SQL statement answering the question.
func (p Pair) SQL() string { return p.sqlQuery }

// Embedding returns the question embedding (copy).
func (p Pair) Embedding() []float64 {
	vec := make([]float64, len(p.embedding))
	copy(vec, p.embedding)
	return vec
}

// CreatedAt returns the creation timestamp.
func (p Pair) CreatedAt() time.Time { return p.createdAt }

// WithID returns a copy of the pair with the given identifier.
func (p Pair) WithID(id string) Pair {
	p.id = id
	return p
}

// WithCreatedAt returns a copy of the pair with the given timestamp.
func (p Pair) WithCreatedAt(t time.Time) Pair {
	p.createdAt = t
	return p
}

// NormalizeText collapses runs of whitespace to single spaces and trims the
// result. Dedup comparisons are case-sensitive over this normalized form.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SameContent reports whether two pairs carry the same question and SQL after
// whitespace normalization.
func (p Pair) SameContent(other Pair) bool {
	return NormalizeText(p.question) == NormalizeText(other.question) &&
		NormalizeText(p.sqlQuery) == NormalizeText(other.sqlQuery)
}
