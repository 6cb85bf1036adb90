package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
	"github.com/datasage-io/datasage/internal/vectortext"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory record store with a term-overlap lexical
// scorer. It backs tests and ephemeral setups where no database is wanted.
type MemoryStore struct {
	dimension int

	mu      sync.RWMutex
	entries map[knowledge.Collection][]knowledge.Entry
	pairs   []knowledge.Pair
	ids     map[knowledge.Collection]map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore checking writes against the
// given embedding dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	ids := map[knowledge.Collection]map[string]struct{}{}
	for _, collection := range knowledge.Collections() {
		ids[collection] = map[string]struct{}{}
	}
	return &MemoryStore{
		dimension: dimension,
		entries:   map[knowledge.Collection][]knowledge.Entry{},
		ids:       ids,
	}
}

// EnsureSchema is a no-op; the store is ready on construction.
func (m *MemoryStore) EnsureSchema(ctx context.Context) error { return nil }

// checkEmbedding enforces the write contract of the database-backed store:
// the vector must have the configured dimension and be formattable.
func (m *MemoryStore) checkEmbedding(embedding []float64) error {
	if len(embedding) != m.dimension {
		return fmt.Errorf("%w: got %d values, store is configured for %d", knowledge.ErrDimensionMismatch, len(embedding), m.dimension)
	}
	if _, err := vectortext.Format(embedding); err != nil {
		return err
	}
	return nil
}

// InsertEntry stores one schema or documentation record.
func (m *MemoryStore) InsertEntry(ctx context.Context, collection knowledge.Collection, entry knowledge.Entry) (knowledge.Entry, error) {
	if collection != knowledge.CollectionSchema && collection != knowledge.CollectionDocumentation {
		return knowledge.Entry{}, fmt.Errorf("%w: collection %q does not hold entries", knowledge.ErrInvalidArgument, collection)
	}
	if err := m.checkEmbedding(entry.Embedding()); err != nil {
		return knowledge.Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := entry
	if stored.ID() == "" {
		stored = stored.WithID(uuid.NewString())
	}
	if stored.CreatedAt().IsZero() {
		stored = stored.WithCreatedAt(time.Now().UTC())
	}
	if _, exists := m.ids[collection][stored.ID()]; exists {
		return knowledge.Entry{}, fmt.Errorf("%w: %q already exists in %s", knowledge.ErrDuplicateID, stored.ID(), collection)
	}

	m.ids[collection][stored.ID()] = struct{}{}
	m.entries[collection] = append(m.entries[collection], stored)
	return stored, nil
}

// InsertPair stores one question/SQL example.
func (m *MemoryStore) InsertPair(ctx context.Context, pair knowledge.Pair) (knowledge.Pair, error) {
	if err := m.checkEmbedding(pair.Embedding()); err != nil {
		return knowledge.Pair{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := pair
	if stored.ID() == "" {
		stored = stored.WithID(uuid.NewString())
	}
	if stored.CreatedAt().IsZero() {
		stored = stored.WithCreatedAt(time.Now().UTC())
	}
	if _, exists := m.ids[knowledge.CollectionExamples][stored.ID()]; exists {
		return knowledge.Pair{}, fmt.Errorf("%w: %q already exists in %s", knowledge.ErrDuplicateID, stored.ID(), knowledge.CollectionExamples)
	}

	m.ids[knowledge.CollectionExamples][stored.ID()] = struct{}{}
	m.pairs = append(m.pairs, stored)
	return stored, nil
}

// Entries returns the collection's records in insertion order.
func (m *MemoryStore) Entries(ctx context.Context, collection knowledge.Collection) ([]knowledge.Entry, error) {
	if collection != knowledge.CollectionSchema && collection != knowledge.CollectionDocumentation {
		return nil, fmt.Errorf("%w: collection %q does not hold entries", knowledge.ErrInvalidArgument, collection)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]knowledge.Entry, len(m.entries[collection]))
	copy(entries, m.entries[collection])
	return entries, nil
}

// Pairs returns all examples in insertion order.
func (m *MemoryStore) Pairs(ctx context.Context) ([]knowledge.Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pairs := make([]knowledge.Pair, len(m.pairs))
	copy(pairs, m.pairs)
	return pairs, nil
}

// FindPair looks up an example by whitespace-normalized question and SQL.
func (m *MemoryStore) FindPair(ctx context.Context, question, sqlQuery string) (knowledge.Pair, bool, error) {
	wanted := knowledge.NewPair("", question, sqlQuery, nil, time.Time{})

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, pair := range m.pairs {
		if pair.SameContent(wanted) {
			return pair, true, nil
		}
	}
	return knowledge.Pair{}, false, nil
}

// Delete removes a record by id, reporting whether it existed.
func (m *MemoryStore) Delete(ctx context.Context, collection knowledge.Collection, id string) (bool, error) {
	if !collection.Valid() {
		return false, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.ids[collection][id]; !exists {
		return false, nil
	}
	delete(m.ids[collection], id)

	if collection == knowledge.CollectionExamples {
		for i, pair := range m.pairs {
			if pair.ID() == id {
				m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
				break
			}
		}
		return true, nil
	}

	records := m.entries[collection]
	for i, entry := range records {
		if entry.ID() == id {
			m.entries[collection] = append(records[:i], records[i+1:]...)
			break
		}
	}
	return true, nil
}

// Count returns the number of records in a collection.
func (m *MemoryStore) Count(ctx context.Context, collection knowledge.Collection) (int64, error) {
	if !collection.Valid() {
		return 0, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if collection == knowledge.CollectionExamples {
		return int64(len(m.pairs)), nil
	}
	return int64(len(m.entries[collection])), nil
}

// Scores ranks records by how many query terms their text contains. Records
// sharing no terms with the query are absent from the result.
func (m *MemoryStore) Scores(ctx context.Context, collection knowledge.Collection, query string, limit int) ([]search.Result, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []search.Result{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []search.Result{}
	score := func(id, text string) {
		haystack := strings.ToLower(text)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched > 0 {
			results = append(results, search.NewResult(id, float64(matched)))
		}
	}

	if collection == knowledge.CollectionExamples {
		for _, pair := range m.pairs {
			score(pair.ID(), pair.Question()+" "+pair.SQL())
		}
	} else {
		for _, entry := range m.entries[collection] {
			score(entry.ID(), entry.Document())
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score() > results[j].Score() })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
