// Package persistence implements the GORM-backed record store over SQLite and
// PostgreSQL.
//
// SQLite full-text search uses FTS5 virtual tables. The bundled sqlite driver
// (mattn/go-sqlite3) compiles the FTS5 module only when the sqlite_fts5 build
// tag is set, so builds and tests targeting SQLite need:
//
//	go build -tags sqlite_fts5 ./...
//	go test -tags sqlite_fts5 ./...
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"github.com/datasage-io/datasage/domain/repository"
	"github.com/datasage-io/datasage/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInitializationFailed indicates the store could not provision its tables.
var ErrInitializationFailed = errors.New("failed to initialize record store")

var validPrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// FTS5 shadow table maintenance statements. PostgreSQL needs none; its
// tsvector column is updated by a trigger on the base table.
const (
	sqliteInsertEntryFTS = `INSERT INTO %s_fts (record_id, document) VALUES (?, ?)`
	sqliteInsertPairFTS  = `INSERT INTO %s_fts (record_id, question, sql_query) VALUES (?, ?, ?)`
	sqliteDeleteFTS      = `DELETE FROM %s_fts WHERE record_id = ?`

	maxSeqQuery = `SELECT COALESCE(MAX(seq), 0) FROM %s`
)

// Store is the GORM-backed record store. One base table per collection, named
// {prefix}_{collection}, each with a full-text index over its text columns.
// Table provisioning is lazy and idempotent; every operation may trigger it.
type Store struct {
	db        database.Database
	logger    *slog.Logger
	prefix    string
	dimension int

	schemaRepo database.Repository[knowledge.Entry, EntryModel]
	docsRepo   database.Repository[knowledge.Entry, EntryModel]
	pairsRepo  database.Repository[knowledge.Pair, PairModel]

	mu          sync.Mutex
	initialized bool
	nextSeq     map[string]int64
}

// NewStore creates a Store whose tables are named {prefix}_{collection}.
// The prefix must be a plain identifier because it is interpolated into DDL.
func NewStore(db database.Database, logger *slog.Logger, prefix string, dimension int) (*Store, error) {
	if !validPrefix.MatchString(prefix) {
		return nil, fmt.Errorf("%w: collection prefix %q is not a valid identifier", knowledge.ErrInvalidArgument, prefix)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", knowledge.ErrInvalidArgument, dimension)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		db:        db,
		logger:    logger,
		prefix:    prefix,
		dimension: dimension,
		nextSeq:   map[string]int64{},
	}
	s.schemaRepo = database.NewRepository[knowledge.Entry, EntryModel](db, entryMapper{}, "schema entry", s.tableFor(knowledge.CollectionSchema))
	s.docsRepo = database.NewRepository[knowledge.Entry, EntryModel](db, entryMapper{}, "documentation entry", s.tableFor(knowledge.CollectionDocumentation))
	s.pairsRepo = database.NewRepository[knowledge.Pair, PairModel](db, pairMapper{}, "example pair", s.tableFor(knowledge.CollectionExamples))
	return s, nil
}

// Dimension returns the embedding dimension every write is checked against.
func (s *Store) Dimension() int { return s.dimension }

func (s *Store) tableFor(collection knowledge.Collection) string {
	return s.prefix + "_" + collection.String()
}

// EnsureSchema provisions all collection tables and their full-text indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.initialize(ctx)
}

func (s *Store) initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	for _, collection := range knowledge.Collections() {
		table := s.tableFor(collection)
		var statements []string
		switch {
		case s.db.IsPostgres() && collection == knowledge.CollectionExamples:
			statements = pgPairDDL(table)
		case s.db.IsPostgres():
			statements = pgEntryDDL(table)
		case collection == knowledge.CollectionExamples:
			statements = sqlitePairDDL(table)
		default:
			statements = sqliteEntryDDL(table)
		}
		for _, statement := range statements {
			if err := s.db.Session(ctx).Exec(statement).Error; err != nil {
				return errors.Join(ErrInitializationFailed, err)
			}
		}

		var maxSeq int64
		if err := s.db.Session(ctx).Raw(fmt.Sprintf(maxSeqQuery, table)).Scan(&maxSeq).Error; err != nil {
			return errors.Join(ErrInitializationFailed, err)
		}
		s.nextSeq[table] = maxSeq + 1
	}

	s.initialized = true
	s.logger.Debug("record store initialized", "prefix", s.prefix, "dimension", s.dimension)
	return nil
}

func (s *Store) allocSeq(table string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.nextSeq[table]
	s.nextSeq[table] = seq + 1
	return seq
}

func (s *Store) checkDimension(embedding []float64) error {
	if len(embedding) != s.dimension {
		return fmt.Errorf("%w: got %d values, store is configured for %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	return nil
}

// InsertEntry writes one schema or documentation record and its full-text
// index row in a single transaction.
func (s *Store) InsertEntry(ctx context.Context, collection knowledge.Collection, entry knowledge.Entry) (knowledge.Entry, error) {
	if collection != knowledge.CollectionSchema && collection != knowledge.CollectionDocumentation {
		return knowledge.Entry{}, fmt.Errorf("%w: collection %q does not hold entries", knowledge.ErrInvalidArgument, collection)
	}
	if err := s.checkDimension(entry.Embedding()); err != nil {
		return knowledge.Entry{}, err
	}
	if err := s.initialize(ctx); err != nil {
		return knowledge.Entry{}, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	stored := entry
	if stored.ID() == "" {
		stored = stored.WithID(uuid.NewString())
	}
	if stored.CreatedAt().IsZero() {
		stored = stored.WithCreatedAt(time.Now().UTC())
	}

	model, err := toEntryModel(stored)
	if err != nil {
		return knowledge.Entry{}, err
	}
	table := s.tableFor(collection)
	model.Seq = s.allocSeq(table)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(&model).Error; err != nil {
			return err
		}
		if s.db.IsSQLite() {
			return tx.Exec(fmt.Sprintf(sqliteInsertEntryFTS, table), model.ID, model.Document).Error
		}
		return nil
	})
	if err != nil {
		return knowledge.Entry{}, s.classifyWriteError(collection, model.ID, err)
	}

	s.logger.Debug("entry inserted", "collection", collection.String(), "id", model.ID)
	return stored, nil
}

// InsertPair writes one question/SQL example and its full-text index row in a
// single transaction. Duplicate detection against existing content is the
// caller's concern; this only rejects identifier collisions.
func (s *Store) InsertPair(ctx context.Context, pair knowledge.Pair) (knowledge.Pair, error) {
	if err := s.checkDimension(pair.Embedding()); err != nil {
		return knowledge.Pair{}, err
	}
	if err := s.initialize(ctx); err != nil {
		return knowledge.Pair{}, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	stored := pair
	if stored.ID() == "" {
		stored = stored.WithID(uuid.NewString())
	}
	if stored.CreatedAt().IsZero() {
		stored = stored.WithCreatedAt(time.Now().UTC())
	}

	model, err := toPairModel(stored)
	if err != nil {
		return knowledge.Pair{}, err
	}
	table := s.tableFor(knowledge.CollectionExamples)
	model.Seq = s.allocSeq(table)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(&model).Error; err != nil {
			return err
		}
		if s.db.IsSQLite() {
			return tx.Exec(fmt.Sprintf(sqliteInsertPairFTS, table), model.ID, model.Question, model.SQLQuery).Error
		}
		return nil
	})
	if err != nil {
		return knowledge.Pair{}, s.classifyWriteError(knowledge.CollectionExamples, model.ID, err)
	}

	s.logger.Debug("pair inserted", "id", model.ID)
	return stored, nil
}

func (s *Store) classifyWriteError(collection knowledge.Collection, id string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %q already exists in %s", knowledge.ErrDuplicateID, id, collection)
	}
	return fmt.Errorf("insert into %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
}

// Entries returns every record of an entry collection in insertion order.
func (s *Store) Entries(ctx context.Context, collection knowledge.Collection) ([]knowledge.Entry, error) {
	repo, err := s.entryRepo(collection)
	if err != nil {
		return nil, err
	}
	if err := s.initialize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	entries, err := repo.Find(ctx, repository.WithInsertionOrder())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}
	return entries, nil
}

// Pairs returns every question/SQL example in insertion order.
func (s *Store) Pairs(ctx context.Context) ([]knowledge.Pair, error) {
	if err := s.initialize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	pairs, err := s.pairsRepo.Find(ctx, repository.WithInsertionOrder())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}
	return pairs, nil
}

// FindPair looks up an example by its whitespace-normalized question and SQL.
func (s *Store) FindPair(ctx context.Context, question, sqlQuery string) (knowledge.Pair, bool, error) {
	if err := s.initialize(ctx); err != nil {
		return knowledge.Pair{}, false, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	pair, err := s.pairsRepo.FindOne(ctx,
		repository.WithCondition("question_norm", knowledge.NormalizeText(question)),
		repository.WithCondition("sql_norm", knowledge.NormalizeText(sqlQuery)),
	)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return knowledge.Pair{}, false, nil
		}
		return knowledge.Pair{}, false, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}
	return pair, true, nil
}

// Delete removes a record and its full-text index row, reporting whether a
// row existed. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, collection knowledge.Collection, id string) (bool, error) {
	if !collection.Valid() {
		return false, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}
	if err := s.initialize(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	table := s.tableFor(collection)
	var removed int64
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		if s.db.IsSQLite() && removed > 0 {
			return tx.Exec(fmt.Sprintf(sqliteDeleteFTS, table), id).Error
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
	}
	return removed > 0, nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(ctx context.Context, collection knowledge.Collection) (int64, error) {
	if !collection.Valid() {
		return 0, fmt.Errorf("%w: unknown collection %q", knowledge.ErrInvalidArgument, collection)
	}
	if err := s.initialize(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", knowledge.ErrStoreUnavailable, err)
	}

	var count int64
	var err error
	if collection == knowledge.CollectionExamples {
		count, err = s.pairsRepo.Count(ctx)
	} else {
		var repo database.Repository[knowledge.Entry, EntryModel]
		repo, err = s.entryRepo(collection)
		if err == nil {
			count, err = repo.Count(ctx)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w: %v", collection, knowledge.ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *Store) entryRepo(collection knowledge.Collection) (database.Repository[knowledge.Entry, EntryModel], error) {
	switch collection {
	case knowledge.CollectionSchema:
		return s.schemaRepo, nil
	case knowledge.CollectionDocumentation:
		return s.docsRepo, nil
	default:
		return database.Repository[knowledge.Entry, EntryModel]{}, fmt.Errorf("%w: collection %q does not hold entries", knowledge.ErrInvalidArgument, collection)
	}
}
