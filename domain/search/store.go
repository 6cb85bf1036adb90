package search

import (
	"context"

	"github.com/datasage-io/datasage/domain/knowledge"
)

// LexicalScorer produces natural-language relevance scores from the storage
// engine's full-text match operator. Only matching records are returned;
// records with zero lexical overlap are simply absent and score 0 at fusion.
type LexicalScorer interface {
	// Scores returns full-text relevance scores for the collection's records
	// against the query, highest first, at most limit results. A limit <= 0
	// means no limit.
	Scores(ctx context.Context, collection knowledge.Collection, query string, limit int) ([]Result, error)
}

// DefaultLimit is the default number of results returned by a search.
const DefaultLimit = 5

// Engine ranks stored records against a question by fusing lexical and
// vector signals.
type Engine interface {
	// SearchSchema ranks schema entries against the question.
	SearchSchema(ctx context.Context, question string, limit int) ([]SchemaMatch, error)

	// SearchDocumentation ranks documentation entries against the question.
	SearchDocumentation(ctx context.Context, question string, limit int) ([]SchemaMatch, error)

	// SearchExamples ranks learned question/SQL pairs against the question.
	SearchExamples(ctx context.Context, question string, limit int) ([]ExampleMatch, error)
}
