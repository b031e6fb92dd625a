package schema

import (
	"time"
)

// TableStatus tracks whether a table's physical migration has completed
type TableStatus string

const (
	// TableStatusPending marks a catalog entry whose migration is in flight or
	// was interrupted. Pending tables are invisible to readers.
	TableStatusPending TableStatus = "pending"
	TableStatusActive  TableStatus = "active"
)

// TableDefinition is the catalog entry for one logical table
type TableDefinition struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Label       string             `json:"label"`
	Description string             `json:"description,omitempty"`
	IsSystem    bool               `json:"isSystem"`
	Status      TableStatus        `json:"-"`
	Fields      []*FieldDefinition `json:"fields"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`

	// UniqueTogether lists composite unique keys of built-in tables. It is
	// only used when rendering DDL and is not stored in the catalog.
	UniqueTogether [][]string `json:"-"`
}

// FieldDefinition is the catalog entry for one column
type FieldDefinition struct {
	ID           string       `json:"id"`
	TableID      string       `json:"tableId"`
	Name         string       `json:"name"`
	Label        string       `json:"label"`
	Type         FieldType    `json:"type"`
	Required     bool         `json:"required"`
	Unique       bool         `json:"unique"`
	DefaultValue *string      `json:"defaultValue,omitempty"`
	Description  string       `json:"description,omitempty"`
	Validation   string       `json:"validation,omitempty"`
	Config       *FieldConfig `json:"config,omitempty"`
	SortOrder    int          `json:"sortOrder"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// FieldConfig holds type-specific settings
type FieldConfig struct {
	LookupTable  string   `json:"lookupTable,omitempty"`
	LookupField  string   `json:"lookupField,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
	Precision    *int     `json:"precision,omitempty"`
	Options      []string `json:"options,omitempty"`
	Formula      string   `json:"formula,omitempty"`
}

// CreateTableRequest is the input to table creation, before normalization
type CreateTableRequest struct {
	Name        string      `json:"name"`
	Label       string      `json:"displayName"`
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`
}

// FieldSpec describes a requested field, before normalization
type FieldSpec struct {
	Name         string       `json:"name"`
	Label        string       `json:"displayName"`
	Type         FieldType    `json:"type"`
	Required     bool         `json:"required"`
	Unique       bool         `json:"unique"`
	DefaultValue *string      `json:"defaultValue"`
	Description  string       `json:"description"`
	Validation   string       `json:"validation"`
	Config       *FieldConfig `json:"config"`
}

// Field returns the field with the given physical name
func (t *TableDefinition) Field(name string) (*FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldByID returns the field with the given identifier
func (t *TableDefinition) FieldByID(id string) (*FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}
