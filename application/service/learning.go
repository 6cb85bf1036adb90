package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/search"
)

// Learning records validated question/SQL pairs so future retrieval can
// surface them as examples. Learn is idempotent over the whitespace-normalized
// (question, sql) tuple: re-learning known content returns the existing pair.
type Learning struct {
	store    knowledge.RecordStore
	embedder search.Embedder
	logger   *slog.Logger

	// mu serializes the dedup check against the insert so concurrent learns
	// of identical content cannot both write.
	mu sync.Mutex
}

// NewLearning creates a Learning service.
func NewLearning(store knowledge.RecordStore, embedder search.Embedder, logger *slog.Logger) *Learning {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learning{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Learn stores a question/SQL pair. The embedding covers the question text
// only. Returns the stored pair and whether it was newly created; known
// content returns the existing pair with created false.
func (l *Learning) Learn(ctx context.Context, question, sqlQuery string) (knowledge.Pair, bool, error) {
	if strings.TrimSpace(question) == "" {
		return knowledge.Pair{}, false, fmt.Errorf("%w: question is empty", knowledge.ErrInvalidArgument)
	}
	if strings.TrimSpace(sqlQuery) == "" {
		return knowledge.Pair{}, false, fmt.Errorf("%w: sql is empty", knowledge.ErrInvalidArgument)
	}

	// The mutex spans dedup check, embedding, and insert: known content must
	// return its existing id without touching the provider, and concurrent
	// learns of identical content must not both write.
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, found, err := l.store.FindPair(ctx, question, sqlQuery)
	if err != nil {
		return knowledge.Pair{}, false, err
	}
	if found {
		l.logger.Debug("pair already learned", "id", existing.ID())
		return existing, false, nil
	}

	vectors, err := l.embedder.Embed(ctx, []string{question})
	if err != nil {
		return knowledge.Pair{}, false, err
	}
	if len(vectors) != 1 {
		return knowledge.Pair{}, false, fmt.Errorf("%w: expected 1 embedding, got %d", knowledge.ErrEmbedding, len(vectors))
	}

	pair := knowledge.NewPair("", question, sqlQuery, vectors[0], time.Time{})
	stored, err := l.store.InsertPair(ctx, pair)
	if err != nil {
		return knowledge.Pair{}, false, err
	}

	l.logger.Info("learned pair", "id", stored.ID())
	return stored, true, nil
}

// LearnQuietly stores a pair but never fails the caller: errors are logged
// with their classification and swallowed. Suited to assistant loops where a
// failed write must not interrupt the running conversation.
func (l *Learning) LearnQuietly(ctx context.Context, question, sqlQuery string) {
	if _, _, err := l.Learn(ctx, question, sqlQuery); err != nil {
		kind := knowledge.Classify(err)
		l.logger.Warn("learning failed",
			"kind", string(kind),
			"retryable", kind.Retryable(),
			"error", err,
		)
	}
}
