// Package v1 implements the version 1 HTTP API.
package v1

import (
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
)

// EntryDTO is the wire form of a schema or documentation record.
type EntryDTO struct {
	ID        string         `json:"id"`
	Document  string         `json:"document"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// PairDTO is the wire form of a learned question/SQL pair.
type PairDTO struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	SQL       string    `json:"sql"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoresDTO carries the constituent and fused scores of a match.
type ScoresDTO struct {
	Lexical  float64 `json:"lexical"`
	Vector   float64 `json:"vector"`
	Combined float64 `json:"combined"`
}

// EntryMatchDTO is a ranked entry with its scores.
type EntryMatchDTO struct {
	Entry  EntryDTO  `json:"entry"`
	Scores ScoresDTO `json:"scores"`
}

// PairMatchDTO is a ranked pair with its scores.
type PairMatchDTO struct {
	Pair   PairDTO   `json:"pair"`
	Scores ScoresDTO `json:"scores"`
}

func entryDTO(entry knowledge.Entry) EntryDTO {
	return EntryDTO{
		ID:        entry.ID(),
		Document:  entry.Document(),
		Metadata:  entry.Metadata(),
		CreatedAt: entry.CreatedAt(),
	}
}

func pairDTO(pair knowledge.Pair) PairDTO {
	return PairDTO{
		ID:        pair.ID(),
		Question:  pair.Question(),
		SQL:       pair.SQL(),
		CreatedAt: pair.CreatedAt(),
	}
}

func scoresDTO(scores search.Scores) ScoresDTO {
	return ScoresDTO{
		Lexical:  scores.Lexical(),
		Vector:   scores.Vector(),
		Combined: scores.Combined(),
	}
}

func entryMatchDTOs(matches []search.SchemaMatch) []EntryMatchDTO {
	dtos := make([]EntryMatchDTO, len(matches))
	for i, match := range matches {
		dtos[i] = EntryMatchDTO{Entry: entryDTO(match.Entry()), Scores: scoresDTO(match.Scores())}
	}
	return dtos
}

func pairMatchDTOs(matches []search.ExampleMatch) []PairMatchDTO {
	dtos := make([]PairMatchDTO, len(matches))
	for i, match := range matches {
		dtos[i] = PairMatchDTO{Pair: pairDTO(match.Pair()), Scores: scoresDTO(match.Scores())}
	}
	return dtos
}
