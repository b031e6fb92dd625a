package schema

import (
	"github.com/lendingops/backend/pkg/query"
)

// PhysicalColumns lists the columns the physical table must have
func (t *TableDefinition) PhysicalColumns() []string {
	cols := make([]string, 0, len(t.Fields)+2)
	for _, f := range t.Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, ColumnCreatedAt, ColumnUpdatedAt)
}

// Relation resolves the table into a query relation. This is the only way
// record statements obtain identifiers.
func (t *TableDefinition) Relation() (*query.Relation, error) {
	return query.NewRelation(t.Name, t.PhysicalColumns())
}
