package persistence

import (
	"context"
	"database/sql"

	"github.com/lendingops/backend/internal/infrastructure/database"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

// SchemaInspector reads physical columns from INFORMATION_SCHEMA
type SchemaInspector struct {
	db      *sql.DB
	dialect query.Dialect
}

// NewSchemaInspector creates a new SchemaInspector
func NewSchemaInspector(conn *database.Connection) *SchemaInspector {
	return &SchemaInspector{db: conn.DB(), dialect: conn.Dialect()}
}

const (
	mysqlColumnsQuery = `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	postgresColumnsQuery = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`
)

// TableColumns lists the columns of a physical table in ordinal order.
// A missing table has no columns.
func (i *SchemaInspector) TableColumns(ctx context.Context, table string) ([]string, error) {
	stmt := mysqlColumnsQuery
	if i.dialect.Name() == query.DialectPostgres {
		stmt = postgresColumnsQuery
	}

	rows, err := i.db.QueryContext(ctx, stmt, table)
	if err != nil {
		return nil, apperrors.NewDatabaseError("inspect columns", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewDatabaseError("inspect columns", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("inspect columns", err)
	}
	return columns, nil
}
