package persistence

import "fmt"

// DDL templates for SQLite. Table names are interpolated before execution;
// they come from the validated collection prefix, never from user input.
const (
	sqliteCreateEntryTable = `
CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    seq INTEGER NOT NULL,
    document TEXT NOT NULL,
    embedding TEXT NOT NULL,
    metadata TEXT,
    created_at DATETIME NOT NULL
)`

	sqliteCreatePairTable = `
CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    seq INTEGER NOT NULL,
    question TEXT NOT NULL,
    sql_query TEXT NOT NULL,
    question_norm TEXT NOT NULL,
    sql_norm TEXT NOT NULL,
    embedding TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`

	sqliteCreateEntryFTS = `
CREATE VIRTUAL TABLE IF NOT EXISTS %s_fts USING fts5(
    record_id UNINDEXED,
    document,
    tokenize='porter ascii'
)`

	sqliteCreatePairFTS = `
CREATE VIRTUAL TABLE IF NOT EXISTS %s_fts USING fts5(
    record_id UNINDEXED,
    question,
    sql_query,
    tokenize='porter ascii'
)`
)

// DDL templates for PostgreSQL. Full-text search uses a tsvector column kept
// current by a per-table trigger and queried through a GIN index.
const (
	pgCreateEntryTable = `
CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    seq BIGINT NOT NULL,
    document TEXT NOT NULL,
    embedding TEXT NOT NULL,
    metadata TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    tsv TSVECTOR
)`

	pgCreatePairTable = `
CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(64) PRIMARY KEY,
    seq BIGINT NOT NULL,
    question TEXT NOT NULL,
    sql_query TEXT NOT NULL,
    question_norm TEXT NOT NULL,
    sql_norm TEXT NOT NULL,
    embedding TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    tsv TSVECTOR
)`

	pgCreateTSVIndex = `
CREATE INDEX IF NOT EXISTS %s_tsv_idx ON %s USING GIN(tsv)`

	pgCreateEntryTriggerFunction = `
CREATE OR REPLACE FUNCTION %s_update_tsv()
RETURNS trigger AS $$
BEGIN
    NEW.tsv := to_tsvector('english', NEW.document);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`

	pgCreatePairTriggerFunction = `
CREATE OR REPLACE FUNCTION %s_update_tsv()
RETURNS trigger AS $$
BEGIN
    NEW.tsv := to_tsvector('english', NEW.question || ' ' || NEW.sql_query);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`

	pgCreateTrigger = `
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_trigger WHERE tgname = '%s_tsv_trigger'
    ) THEN
        CREATE TRIGGER %s_tsv_trigger
        BEFORE INSERT OR UPDATE ON %s
        FOR EACH ROW EXECUTE FUNCTION %s_update_tsv();
    END IF;
END;
$$`
)

// sqliteEntryDDL returns the statements that provision an entry collection
// table and its FTS5 shadow table.
func sqliteEntryDDL(table string) []string {
	return []string{
		fmt.Sprintf(sqliteCreateEntryTable, table),
		fmt.Sprintf(sqliteCreateEntryFTS, table),
	}
}

func sqlitePairDDL(table string) []string {
	return []string{
		fmt.Sprintf(sqliteCreatePairTable, table),
		fmt.Sprintf(sqliteCreatePairFTS, table),
	}
}

func pgEntryDDL(table string) []string {
	return []string{
		fmt.Sprintf(pgCreateEntryTable, table),
		fmt.Sprintf(pgCreateTSVIndex, table, table),
		fmt.Sprintf(pgCreateEntryTriggerFunction, table),
		fmt.Sprintf(pgCreateTrigger, table, table, table, table),
	}
}

func pgPairDDL(table string) []string {
	return []string{
		fmt.Sprintf(pgCreatePairTable, table),
		fmt.Sprintf(pgCreateTSVIndex, table, table),
		fmt.Sprintf(pgCreatePairTriggerFunction, table),
		fmt.Sprintf(pgCreateTrigger, table, table, table, table),
	}
}
