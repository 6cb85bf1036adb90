// Package knowledge provides the domain model for the hybrid retrieval store:
// schema entries, documentation entries, and learned question/SQL pairs.
package knowledge

// Collection identifies one of the three persisted record collections.
type Collection string

// Collection values.
const (
	CollectionSchema        Collection = "schema"
	CollectionDocumentation Collection = "documentation"
	CollectionExamples      Collection = "examples"
)

// Valid reports whether the collection is one of the known values.
func (c Collection) Valid() bool {
	switch c {
	case CollectionSchema, CollectionDocumentation, CollectionExamples:
		return true
	}
	return false
}

// String returns the collection name.
func (c Collection) String() string { return string(c) }

// Collections returns all known collections in a stable order.
func Collections() []Collection {
	return []Collection{CollectionSchema, CollectionDocumentation, CollectionExamples}
}
