// Package service provides application layer services that orchestrate
// indexing, retrieval, and learning over the record store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
	"golang.org/x/sync/errgroup"
)

const (
	// MetadataKindKey is the metadata key carrying the record kind.
	MetadataKindKey = "type"

	// MetadataKindDDL marks schema entries.
	MetadataKindDDL = "ddl"

	// MetadataKindDocumentation marks documentation entries.
	MetadataKindDocumentation = "documentation"
)

// Batch indexing tuning. Texts are embedded in chunks, several chunks in
// flight at once; inserts stay sequential to preserve insertion order.
const (
	embedChunkSize   = 16
	embedConcurrency = 4
)

// Knowledge ingests schema and documentation records: it embeds the text,
// stamps the record kind into metadata, and writes through the record store.
type Knowledge struct {
	store    knowledge.RecordStore
	embedder search.Embedder
	logger   *slog.Logger
}

// NewKnowledge creates a Knowledge service.
func NewKnowledge(store knowledge.RecordStore, embedder search.Embedder, logger *slog.Logger) *Knowledge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Knowledge{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// IndexSchema embeds and stores one DDL statement in the schema collection.
// Caller metadata is preserved except for the kind key, which is always set.
func (k *Knowledge) IndexSchema(ctx context.Context, ddl string, metadata map[string]any) (knowledge.Entry, error) {
	return k.indexEntry(ctx, knowledge.CollectionSchema, MetadataKindDDL, ddl, metadata)
}

// IndexDocumentation embeds and stores one free-text document in the
// documentation collection.
func (k *Knowledge) IndexDocumentation(ctx context.Context, document string, metadata map[string]any) (knowledge.Entry, error) {
	return k.indexEntry(ctx, knowledge.CollectionDocumentation, MetadataKindDocumentation, document, metadata)
}

func (k *Knowledge) indexEntry(ctx context.Context, collection knowledge.Collection, kind, document string, metadata map[string]any) (knowledge.Entry, error) {
	if strings.TrimSpace(document) == "" {
		return knowledge.Entry{}, fmt.Errorf("%w: document is empty", knowledge.ErrInvalidArgument)
	}

	vectors, err := k.embedder.Embed(ctx, []string{document})
	if err != nil {
		return knowledge.Entry{}, err
	}
	if len(vectors) != 1 {
		return knowledge.Entry{}, fmt.Errorf("%w: expected 1 embedding, got %d", knowledge.ErrEmbedding, len(vectors))
	}

	merged := make(map[string]any, len(metadata)+1)
	for key, value := range metadata {
		merged[key] = value
	}
	merged[MetadataKindKey] = kind

	entry := knowledge.NewEntry("", document, vectors[0], merged, time.Time{})
	stored, err := k.store.InsertEntry(ctx, collection, entry)
	if err != nil {
		return knowledge.Entry{}, err
	}

	k.logger.Info("indexed entry", "collection", collection.String(), "id", stored.ID(), "kind", kind)
	return stored, nil
}

// IndexSchemaBatch embeds and stores many DDL statements. Embedding runs in
// parallel chunks; inserts happen in input order so insertion order is stable.
func (k *Knowledge) IndexSchemaBatch(ctx context.Context, ddls []string) ([]knowledge.Entry, error) {
	return k.indexBatch(ctx, knowledge.CollectionSchema, MetadataKindDDL, ddls)
}

// IndexDocumentationBatch embeds and stores many documents.
func (k *Knowledge) IndexDocumentationBatch(ctx context.Context, documents []string) ([]knowledge.Entry, error) {
	return k.indexBatch(ctx, knowledge.CollectionDocumentation, MetadataKindDocumentation, documents)
}

func (k *Knowledge) indexBatch(ctx context.Context, collection knowledge.Collection, kind string, texts []string) ([]knowledge.Entry, error) {
	if len(texts) == 0 {
		return []knowledge.Entry{}, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: document at index %d is empty", knowledge.ErrInvalidArgument, i)
		}
	}

	vectors := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(texts); start += embedChunkSize {
		start := start
		end := start + embedChunkSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			chunk, err := k.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(chunk) != end-start {
				return fmt.Errorf("%w: expected %d embeddings, got %d", knowledge.ErrEmbedding, end-start, len(chunk))
			}
			copy(vectors[start:end], chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]knowledge.Entry, 0, len(texts))
	for i, text := range texts {
		entry := knowledge.NewEntry("", text, vectors[i], map[string]any{MetadataKindKey: kind}, time.Time{})
		stored, err := k.store.InsertEntry(ctx, collection, entry)
		if err != nil {
			return entries, fmt.Errorf("insert %d of %d: %w", i+1, len(texts), err)
		}
		entries = append(entries, stored)
	}

	k.logger.Info("indexed batch", "collection", collection.String(), "count", len(entries), "kind", kind)
	return entries, nil
}

// Delete removes one record from a collection, reporting whether it existed.
func (k *Knowledge) Delete(ctx context.Context, collection knowledge.Collection, id string) (bool, error) {
	removed, err := k.store.Delete(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if removed {
		k.logger.Info("deleted record", "collection", collection.String(), "id", id)
	}
	return removed, nil
}

// Count returns the number of records in a collection.
func (k *Knowledge) Count(ctx context.Context, collection knowledge.Collection) (int64, error) {
	return k.store.Count(ctx, collection)
}

// Counts returns record counts for every collection.
func (k *Knowledge) Counts(ctx context.Context) (map[knowledge.Collection]int64, error) {
	counts := make(map[knowledge.Collection]int64, len(knowledge.Collections()))
	for _, collection := range knowledge.Collections() {
		count, err := k.store.Count(ctx, collection)
		if err != nil {
			return nil, err
		}
		counts[collection] = count
	}
	return counts, nil
}
