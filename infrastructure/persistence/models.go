// Package persistence implements the durable record store over GORM, with a
// full-text index maintained alongside every write. SQLite uses FTS5 shadow
// tables; PostgreSQL uses a tsvector column kept current by a trigger.
package persistence

import "time"

// EntryModel is the database row for schema and documentation records. The
// same struct serves both collections; the target table is selected per
// operation.
type EntryModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Seq       int64     `gorm:"column:seq"`
	Document  string    `gorm:"column:document"`
	Embedding string    `gorm:"column:embedding"`
	Metadata  string    `gorm:"column:metadata"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// PairModel is the database row for learned question/SQL examples. The
// normalized columns back the exact-duplicate lookup.
type PairModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Seq          int64     `gorm:"column:seq"`
	Question     string    `gorm:"column:question"`
	SQLQuery     string    `gorm:"column:sql_query"`
	QuestionNorm string    `gorm:"column:question_norm"`
	SQLNorm      string    `gorm:"column:sql_norm"`
	Embedding    string    `gorm:"column:embedding"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}
