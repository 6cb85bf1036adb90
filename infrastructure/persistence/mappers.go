package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/internal/vectortext"
)

// entryMapper converts EntryModel rows to knowledge.Entry. Reads are lenient:
// a row whose embedding or metadata fails to parse still surfaces as an entry,
// with the unparsable field left empty.
type entryMapper struct{}

func (entryMapper) ToDomain(model EntryModel) knowledge.Entry {
	embedding, err := vectortext.Parse(model.Embedding)
	if err != nil {
		embedding = nil
	}
	var metadata map[string]any
	if model.Metadata != "" {
		if unmarshalErr := json.Unmarshal([]byte(model.Metadata), &metadata); unmarshalErr != nil {
			metadata = nil
		}
	}
	return knowledge.NewEntry(model.ID, model.Document, embedding, metadata, model.CreatedAt)
}

type pairMapper struct{}

func (pairMapper) ToDomain(model PairModel) knowledge.Pair {
	embedding, err := vectortext.Parse(model.Embedding)
	if err != nil {
		embedding = nil
	}
	return knowledge.NewPair(model.ID, model.Question, model.SQLQuery, embedding, model.CreatedAt)
}

// toEntryModel builds the row for an entry write. The embedding must be
// formattable: a non-finite component fails the whole insert rather than
// persisting a record without its vector.
func toEntryModel(entry knowledge.Entry) (EntryModel, error) {
	text, err := vectortext.Format(entry.Embedding())
	if err != nil {
		return EntryModel{}, err
	}

	model := EntryModel{
		ID:        entry.ID(),
		Document:  entry.Document(),
		Embedding: text,
		CreatedAt: entry.CreatedAt(),
	}
	if metadata := entry.Metadata(); metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return EntryModel{}, fmt.Errorf("%w: metadata is not serializable: %v", knowledge.ErrInvalidArgument, err)
		}
		model.Metadata = string(raw)
	}
	return model, nil
}

// toPairModel builds the row for a pair write, including the normalized
// dedup columns.
func toPairModel(pair knowledge.Pair) (PairModel, error) {
	text, err := vectortext.Format(pair.Embedding())
	if err != nil {
		return PairModel{}, err
	}

	return PairModel{
		ID:           pair.ID(),
		Question:     pair.Question(),
		SQLQuery:     pair.SQL(),
		QuestionNorm: knowledge.NormalizeText(pair.Question()),
		SQLNorm:      knowledge.NormalizeText(pair.SQL()),
		Embedding:    text,
		CreatedAt:    pair.CreatedAt(),
	}, nil
}
