package search

import "github.com/datasage-io/datasage/domain/knowledge"

// Scores carries the constituent and fused scores of a ranked candidate, so
// a caller can audit why an item ranked where it did.
type Scores struct {
	lexical  float64
	vector   float64
	combined float64
}

// NewScores creates a Scores value.
func NewScores(lexical, vector, combined float64) Scores {
	return Scores{
		lexical:  lexical,
		vector:   vector,
		combined: combined,
	}
}

// Lexical returns the raw full-text relevance score.
func (s Scores) Lexical() float64 { return s.lexical }

// Vector returns the vector similarity score (1 - cosine distance).
func (s Scores) Vector() float64 { return s.vector }

// Combined returns the fused ranking score in [0,1].
func (s Scores) Combined() float64 { return s.combined }

// Result is a generic scored document reference used between the lexical and
// vector scorers and the fusion step.
type Result struct {
	id    string
	score float64
}

// NewResult creates a Result.
func NewResult(id string, score float64) Result {
	return Result{id: id, score: score}
}

// ID returns the record identifier.
func (r Result) ID() string { return r.id }

// Score returns the score.
func (r Result) Score() float64 { return r.score }

// SchemaMatch is a ranked schema or documentation entry.
type SchemaMatch struct {
	entry  knowledge.Entry
	scores Scores
}

// NewSchemaMatch creates a SchemaMatch.
func NewSchemaMatch(entry knowledge.Entry, scores Scores) SchemaMatch {
	return SchemaMatch{entry: entry, scores: scores}
}

// Entry returns the matched entry.
func (m SchemaMatch) Entry() knowledge.Entry { return m.entry }

// Scores returns the constituent and fused scores.
func (m SchemaMatch) Scores() Scores { return m.scores }

// ExampleMatch is a ranked question/SQL pair.
type ExampleMatch struct {
	pair   knowledge.Pair
	scores Scores
}

// NewExampleMatch creates an ExampleMatch.
func NewExampleMatch(pair knowledge.Pair, scores Scores) ExampleMatch {
	return ExampleMatch{pair: pair, scores: scores}
}

// Pair returns the matched pair.
func (m ExampleMatch) Pair() knowledge.Pair { return m.pair }

// Scores returns the constituent and fused scores.
func (m ExampleMatch) Scores() Scores { return m.scores }
