package migration

import (
	"fmt"
	"strings"

	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/pkg/query"
)

const (
	blockStartPrefix = "-- table: "
	blockEndPrefix   = "-- end table: "
)

var columnTypes = map[string]map[schema.StorageType]string{
	query.DialectMySQL: {
		schema.StorageString:    "VARCHAR(255)",
		schema.StorageInteger:   "BIGINT",
		schema.StorageBoolean:   "BOOLEAN",
		schema.StorageTimestamp: "DATETIME",
		schema.StorageDate:      "DATE",
		schema.StorageDecimal:   "DECIMAL(18,%d)",
		schema.StorageJSON:      "JSON",
		schema.StorageBytes:     "LONGBLOB",
		schema.StorageUUID:      "CHAR(36)",
	},
	query.DialectPostgres: {
		schema.StorageString:    "VARCHAR(255)",
		schema.StorageInteger:   "BIGINT",
		schema.StorageBoolean:   "BOOLEAN",
		schema.StorageTimestamp: "TIMESTAMP",
		schema.StorageDate:      "DATE",
		schema.StorageDecimal:   "NUMERIC(18,%d)",
		schema.StorageJSON:      "JSONB",
		schema.StorageBytes:     "BYTEA",
		schema.StorageUUID:      "UUID",
	},
}

// ColumnType returns the SQL type of a field for the dialect
func ColumnType(d query.Dialect, f *schema.FieldDefinition) (string, error) {
	types, ok := columnTypes[d.Name()]
	if !ok {
		return "", fmt.Errorf("no column types for dialect %s", d.Name())
	}
	storage := f.Type.Storage()
	if f.Name == schema.ColumnID {
		storage = schema.StorageUUID
	}
	sqlType := types[storage]
	if storage == schema.StorageDecimal {
		sqlType = fmt.Sprintf(sqlType, f.Precision())
	}
	return sqlType, nil
}

// ColumnDefinition renders one column declaration: type, nullability,
// default literal and uniqueness marker.
func ColumnDefinition(d query.Dialect, f *schema.FieldDefinition) (string, error) {
	if !query.ValidIdentifier(f.Name) {
		return "", fmt.Errorf("invalid column name %q", f.Name)
	}
	sqlType, err := ColumnType(d, f)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(d.QuoteIdent(f.Name))
	sb.WriteString(" ")
	sb.WriteString(sqlType)

	if f.Required || f.Name == schema.ColumnID {
		sb.WriteString(" NOT NULL")
	} else {
		sb.WriteString(" NULL")
	}

	if f.DefaultValue != nil {
		lit, err := schema.DefaultLiteral(f)
		if err != nil {
			return "", err
		}
		sb.WriteString(" DEFAULT ")
		sb.WriteString(lit)
	}

	if f.Unique && f.Name != schema.ColumnID {
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), nil
}

func timestampColumns(d query.Dialect) []string {
	if d.Name() == query.DialectPostgres {
		return []string{
			d.QuoteIdent(schema.ColumnCreatedAt) + " TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
			d.QuoteIdent(schema.ColumnUpdatedAt) + " TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
		}
	}
	return []string{
		d.QuoteIdent(schema.ColumnCreatedAt) + " DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP",
		d.QuoteIdent(schema.ColumnUpdatedAt) + " DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP",
	}
}

// RenderTable renders the CREATE TABLE statement for a table definition.
// Every table gets the id primary key and the created_at/updated_at pair.
func RenderTable(d query.Dialect, t *schema.TableDefinition, ifNotExists bool) (string, error) {
	if !query.ValidIdentifier(t.Name) {
		return "", fmt.Errorf("invalid table name %q", t.Name)
	}
	if _, ok := t.Field(schema.ColumnID); !ok {
		return "", fmt.Errorf("table %s has no id field", t.Name)
	}

	lines := make([]string, 0, len(t.Fields)+4)
	for _, f := range t.Fields {
		col, err := ColumnDefinition(d, f)
		if err != nil {
			return "", fmt.Errorf("column %s.%s: %w", t.Name, f.Name, err)
		}
		lines = append(lines, col)
	}
	lines = append(lines, timestampColumns(d)...)
	lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", d.QuoteIdent(schema.ColumnID)))

	for _, cols := range t.UniqueTogether {
		quoted := make([]string, len(cols))
		for i, c := range cols {
			if _, ok := t.Field(c); !ok {
				return "", fmt.Errorf("unique key on %s references unknown column %s", t.Name, c)
			}
			quoted[i] = d.QuoteIdent(c)
		}
		name := constraintName("uq", t.Name, cols)
		if d.Name() == query.DialectPostgres {
			lines = append(lines, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", d.QuoteIdent(name), strings.Join(quoted, ", ")))
		} else {
			lines = append(lines, fmt.Sprintf("UNIQUE KEY %s (%s)", d.QuoteIdent(name), strings.Join(quoted, ", ")))
		}
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(d.QuoteIdent(t.Name))
	sb.WriteString(" (\n  ")
	sb.WriteString(strings.Join(lines, ",\n  "))
	sb.WriteString("\n);")
	return sb.String(), nil
}

// RenderFragment renders a table as a marked block of the schema description file
func RenderFragment(d query.Dialect, t *schema.TableDefinition) (string, error) {
	ddl, err := RenderTable(d, t, false)
	if err != nil {
		return "", err
	}
	return blockStartPrefix + t.Name + "\n" + ddl + "\n" + blockEndPrefix + t.Name + "\n", nil
}

func constraintName(prefix, table string, cols []string) string {
	name := prefix + "_" + table + "_" + strings.Join(cols, "_")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
