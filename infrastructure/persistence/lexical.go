package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
)

const (
	sqliteLexicalQuery = `
SELECT record_id, bm25(%s_fts) AS score
FROM %s_fts
WHERE %s_fts MATCH ?
ORDER BY score`

	pgLexicalQuery = `
SELECT id AS record_id, ts_rank_cd(tsv, plainto_tsquery('english', ?)) AS score
FROM %s
WHERE tsv @@ plainto_tsquery('english', ?)
ORDER BY score DESC`
)

// Scores performs full-text search over a collection's text columns and
// returns matching record ids with their relevance scores, highest first.
// Records with no lexical overlap are absent from the result.
func (s *Store) Scores(ctx context.Context, collection knowledge.Collection, query string, limit int) ([]search.Result, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}
	if strings.TrimSpace(query) == "" {
		return []search.Result{}, nil
	}
	if err := s.initialize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	table := s.tableFor(collection)

	var statement string
	var args []any
	if s.db.IsPostgres() {
		sanitized := sanitizeTSQuery(query)
		statement = fmt.Sprintf(pgLexicalQuery, table)
		args = []any{sanitized, sanitized}
	} else {
		statement = fmt.Sprintf(sqliteLexicalQuery, table, table, table)
		args = []any{escapeFTSQuery(query)}
	}
	if limit > 0 {
		statement += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Session(ctx).Raw(statement, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("lexical search in %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var results []search.Result
	for rows.Next() {
		var recordID string
		var score float64
		if err := rows.Scan(&recordID, &score); err != nil {
			return nil, fmt.Errorf("lexical search in %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
		}
		if s.db.IsSQLite() {
			// bm25() scores are negative, more negative is better
			score = -score
		}
		results = append(results, search.NewResult(recordID, score))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lexical search in %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
	}
	if results == nil {
		results = []search.Result{}
	}
	return results, nil
}

// escapeFTSQuery quotes each term so FTS5 operators in the input are treated
// as plain text.
func escapeFTSQuery(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// sanitizeTSQuery strips characters that plainto_tsquery can choke on.
func sanitizeTSQuery(query string) string {
	replacer := strings.NewReplacer(
		"'", " ",
		`"`, " ",
		"(", " ",
		")", " ",
		":", " ",
		"!", " ",
		"&", " ",
		"|", " ",
	)
	return replacer.Replace(query)
}
