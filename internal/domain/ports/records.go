package ports

import (
	"context"

	"github.com/lendingops/backend/pkg/query"
)

// RecordStore runs record statements against runtime-defined tables.
// Relations must come from catalog metadata.
type RecordStore interface {
	List(ctx context.Context, rel *query.Relation) ([]query.Record, error)

	// Insert stores one row and returns it as persisted, including
	// database-maintained columns.
	Insert(ctx context.Context, rel *query.Relation, values map[string]any) (query.Record, error)

	// Get returns the row with the given id, or nil when there is none.
	Get(ctx context.Context, rel *query.Relation, id string) (query.Record, error)
}
