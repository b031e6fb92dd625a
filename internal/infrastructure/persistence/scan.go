package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lendingops/backend/internal/domain/schema"
)

// Scannable is satisfied by *sql.Row and *sql.Rows
type Scannable interface {
	Scan(dest ...any) error
}

func scanTable(row Scannable) (*schema.TableDefinition, error) {
	var t schema.TableDefinition
	var description sql.NullString
	var status string
	if err := row.Scan(&t.ID, &t.Name, &t.Label, &description, &t.IsSystem, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Status = schema.TableStatus(status)
	t.Fields = make([]*schema.FieldDefinition, 0)
	return &t, nil
}

func scanField(row Scannable) (*schema.FieldDefinition, error) {
	var f schema.FieldDefinition
	var fieldType string
	var defaultValue, description, validation, config sql.NullString
	if err := row.Scan(&f.ID, &f.TableID, &f.Name, &f.Label, &fieldType, &f.Required, &f.Unique,
		&defaultValue, &description, &validation, &config, &f.SortOrder, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Type = schema.FieldType(fieldType)
	f.Description = description.String
	f.Validation = validation.String
	if defaultValue.Valid {
		v := defaultValue.String
		f.DefaultValue = &v
	}
	if config.Valid && config.String != "" && config.String != "null" {
		var cfg schema.FieldConfig
		if err := json.Unmarshal([]byte(config.String), &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config of field %s: %w", f.Name, err)
		}
		f.Config = &cfg
	}
	return &f, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
