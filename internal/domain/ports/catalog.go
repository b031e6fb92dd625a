package ports

import (
	"context"
	"time"

	"github.com/lendingops/backend/internal/domain/schema"
)

// CatalogStore persists table and field definitions.
// Implementations wrap driver failures in DatabaseError.
type CatalogStore interface {
	// InsertPendingTable stores a table and its fields with status pending.
	// A name collision returns DuplicateNameError.
	InsertPendingTable(ctx context.Context, t *schema.TableDefinition) error

	// ActivateTable makes a pending table visible to readers.
	ActivateTable(ctx context.Context, id string) error

	// DeletePendingTable removes a pending table and its fields. Active
	// tables are never deleted.
	DeletePendingTable(ctx context.Context, id string) error

	// GetTable returns an active table with its fields, or NotFoundError.
	GetTable(ctx context.Context, id string) (*schema.TableDefinition, error)

	// FindTableByName returns the table with the given physical name in any
	// status, or nil when there is none.
	FindTableByName(ctx context.Context, name string) (*schema.TableDefinition, error)

	// ListTables returns active tables, newest first.
	ListTables(ctx context.Context) ([]*schema.TableDefinition, error)

	// ListPendingTables returns pending tables created before the cutoff.
	ListPendingTables(ctx context.Context, createdBefore time.Time) ([]*schema.TableDefinition, error)

	// InsertField appends a field to an existing table.
	InsertField(ctx context.Context, f *schema.FieldDefinition) error

	// SaveSystemTable creates or updates a built-in table and replaces its
	// fields in one transaction. It reports whether the table was created.
	SaveSystemTable(ctx context.Context, t *schema.TableDefinition) (bool, error)
}

// SchemaInspector reads the physical schema of the live database
type SchemaInspector interface {
	// TableColumns lists the columns of a physical table. A missing table
	// yields an empty list.
	TableColumns(ctx context.Context, table string) ([]string, error)
}

// LayoutStore persists table layouts
type LayoutStore interface {
	// InsertLayout stores a layout. A default layout clears the default flag
	// on the table's other layouts in the same transaction.
	InsertLayout(ctx context.Context, l *schema.TableLayout) error
	ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error)
}
