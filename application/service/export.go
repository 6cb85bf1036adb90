package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/datasage-io/datasage/domain/knowledge"
	"gopkg.in/yaml.v3"
)

// Snapshot is a portable dump of every collection, suitable for seeding
// another store or reviewing what the assistant has accumulated.
type Snapshot struct {
	ExportedAt    time.Time       `yaml:"exported_at" json:"exported_at"`
	Schema        []EntryExport   `yaml:"schema" json:"schema"`
	Documentation []EntryExport   `yaml:"documentation" json:"documentation"`
	Examples      []ExampleExport `yaml:"examples" json:"examples"`
}

// EntryExport is one schema or documentation record in a Snapshot.
// Embeddings are omitted; they are recomputed on import.
type EntryExport struct {
	ID        string         `yaml:"id" json:"id"`
	Document  string         `yaml:"document" json:"document"`
	Metadata  map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time      `yaml:"created_at" json:"created_at"`
}

// ExampleExport is one learned question/SQL pair in a Snapshot.
type ExampleExport struct {
	ID        string    `yaml:"id" json:"id"`
	Question  string    `yaml:"question" json:"question"`
	SQL       string    `yaml:"sql" json:"sql"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Export reads every collection in insertion order and assembles a Snapshot.
func (k *Knowledge) Export(ctx context.Context) (Snapshot, error) {
	snapshot := Snapshot{ExportedAt: time.Now().UTC()}

	for _, collection := range []knowledge.Collection{knowledge.CollectionSchema, knowledge.CollectionDocumentation} {
		entries, err := k.store.Entries(ctx, collection)
		if err != nil {
			return Snapshot{}, err
		}
		exports := make([]EntryExport, len(entries))
		for i, entry := range entries {
			exports[i] = EntryExport{
				ID:        entry.ID(),
				Document:  entry.Document(),
				Metadata:  entry.Metadata(),
				CreatedAt: entry.CreatedAt(),
			}
		}
		if collection == knowledge.CollectionSchema {
			snapshot.Schema = exports
		} else {
			snapshot.Documentation = exports
		}
	}

	pairs, err := k.store.Pairs(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot.Examples = make([]ExampleExport, len(pairs))
	for i, pair := range pairs {
		snapshot.Examples[i] = ExampleExport{
			ID:        pair.ID(),
			Question:  pair.Question(),
			SQL:       pair.SQL(),
			CreatedAt: pair.CreatedAt(),
		}
	}

	k.logger.Info("exported snapshot",
		"schema", len(snapshot.Schema),
		"documentation", len(snapshot.Documentation),
		"examples", len(snapshot.Examples),
	)
	return snapshot, nil
}

// WriteYAML serializes the snapshot as YAML.
func (s Snapshot) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotYAML parses a YAML snapshot.
func ReadSnapshotYAML(r io.Reader) (Snapshot, error) {
	var snapshot Snapshot
	if err := yaml.NewDecoder(r).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}
