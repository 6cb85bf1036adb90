package database

import (
	"context"
	"testing"

	"github.com/datasage-io/datasage/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	id   string
	name string
}

type widgetModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
	Seq  int64  `gorm:"column:seq"`
}

type widgetMapper struct{}

func (widgetMapper) ToDomain(m widgetModel) widget { return widget{id: m.ID, name: m.Name} }

func newTestDatabase(t *testing.T) Database {
	t.Helper()
	db, err := NewDatabase(context.Background(), "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = db.Session(context.Background()).Exec(
		"CREATE TABLE widgets (id VARCHAR(64) PRIMARY KEY, name TEXT, seq INTEGER)").Error
	require.NoError(t, err)
	return db
}

func seedWidgets(t *testing.T, db Database, names ...string) {
	t.Helper()
	for i, name := range names {
		err := db.Session(context.Background()).Exec(
			"INSERT INTO widgets (id, name, seq) VALUES (?, ?, ?)",
			name+"-id", name, i+1).Error
		require.NoError(t, err)
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), "mysql://localhost/db")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestDatabase_Dialect(t *testing.T) {
	db := newTestDatabase(t)
	assert.True(t, db.IsSQLite())
	assert.False(t, db.IsPostgres())
}

func TestRepository_FindWithInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedWidgets(t, db, "alpha", "beta", "gamma")
	repo := NewRepository[widget, widgetModel](db, widgetMapper{}, "widget", "widgets")

	widgets, err := repo.Find(ctx, repository.WithInsertionOrder())
	require.NoError(t, err)
	require.Len(t, widgets, 3)
	assert.Equal(t, "alpha", widgets[0].name)
	assert.Equal(t, "gamma", widgets[2].name)
}

func TestRepository_FindWithLimit(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedWidgets(t, db, "alpha", "beta", "gamma")
	repo := NewRepository[widget, widgetModel](db, widgetMapper{}, "widget", "widgets")

	widgets, err := repo.Find(ctx, repository.WithInsertionOrder(), repository.WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, widgets, 2)
}

func TestRepository_FindOne(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedWidgets(t, db, "alpha", "beta")
	repo := NewRepository[widget, widgetModel](db, widgetMapper{}, "widget", "widgets")

	found, err := repo.FindOne(ctx, repository.WithCondition("name", "beta"))
	require.NoError(t, err)
	assert.Equal(t, "beta-id", found.id)

	_, err = repo.FindOne(ctx, repository.WithCondition("name", "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CountAndExists(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedWidgets(t, db, "alpha", "beta")
	repo := NewRepository[widget, widgetModel](db, widgetMapper{}, "widget", "widgets")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	exists, err := repo.Exists(ctx, repository.WithRecordID("alpha-id"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, repository.WithRecordID("nope"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_DeleteBy(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	seedWidgets(t, db, "alpha", "beta")
	repo := NewRepository[widget, widgetModel](db, widgetMapper{}, "widget", "widgets")

	removed, err := repo.DeleteBy(ctx, repository.WithRecordID("alpha-id"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.DeleteBy(ctx, repository.WithRecordID("alpha-id"))
	require.NoError(t, err)
	assert.Zero(t, removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
