package bootstrap

import (
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/pkg/utils"
)

// ModelDescriptor is one statically declared model of the data model
type ModelDescriptor struct {
	Name          string
	Table         string
	Documentation string
	Fields        []FieldDescriptor
	// UniqueTogether lists composite unique keys
	UniqueTogether [][]string
}

// FieldDescriptor is one field of a statically declared model. Type is the
// native type name (String, Int, DateTime, ...).
type FieldDescriptor struct {
	Name          string
	Type          string
	IsID          bool
	IsRequired    bool
	IsUnique      bool
	Default       string
	Documentation string
}

// Catalog relations
const (
	TableDefinitionsTable = "table_definitions"
	FieldDefinitionsTable = "field_definitions"
	TableLayoutsTable     = "table_layouts"
)

// IsCatalogRelation reports whether a relation holds catalog metadata
func IsCatalogRelation(relation string) bool {
	switch relation {
	case TableDefinitionsTable, FieldDefinitionsTable, TableLayoutsTable:
		return true
	}
	return false
}

var nativeTypes = map[string]schema.FieldType{
	"String":   schema.FieldTypeText,
	"Int":      schema.FieldTypeNumber,
	"BigInt":   schema.FieldTypeNumber,
	"Float":    schema.FieldTypeNumber,
	"Boolean":  schema.FieldTypeBoolean,
	"DateTime": schema.FieldTypeDateTime,
	"Decimal":  schema.FieldTypeCurrency,
	"Json":     schema.FieldTypeJSON,
	"Bytes":    schema.FieldTypeBinary,
}

// LogicalType maps a native field type to a logical type; unmapped types are text
func LogicalType(native string) schema.FieldType {
	if t, ok := nativeTypes[native]; ok {
		return t
	}
	return schema.FieldTypeText
}

// RelationName is the physical table the model is stored in
func (m ModelDescriptor) RelationName() string {
	if m.Table != "" {
		return schema.Normalize(m.Table)
	}
	return schema.Normalize(m.Name)
}

// ToTable converts the descriptor into an active, system-owned TableDefinition
func (m ModelDescriptor) ToTable() *schema.TableDefinition {
	label := schema.FormatLabel(m.Name)
	description := m.Documentation
	if description == "" {
		description = label + " table"
	}

	table := &schema.TableDefinition{
		ID:             utils.GenerateID(),
		Name:           m.RelationName(),
		Label:          label,
		Description:    description,
		IsSystem:       true,
		Status:         schema.TableStatusActive,
		UniqueTogether: m.UniqueTogether,
	}

	for i, fd := range m.Fields {
		flabel := schema.FormatLabel(fd.Name)
		fdesc := fd.Documentation
		if fdesc == "" {
			fdesc = flabel + " field"
		}
		f := &schema.FieldDefinition{
			ID:          utils.GenerateID(),
			TableID:     table.ID,
			Name:        schema.Normalize(fd.Name),
			Label:       flabel,
			Type:        LogicalType(fd.Type),
			Required:    fd.IsRequired || fd.IsID,
			Unique:      fd.IsUnique || fd.IsID,
			Description: fdesc,
			SortOrder:   i,
		}
		if fd.Default != "" {
			def := fd.Default
			f.DefaultValue = &def
		}
		table.Fields = append(table.Fields, f)
	}
	return table
}

// Builtin returns the descriptor for a relation name
func Builtin(relation string) (ModelDescriptor, bool) {
	for _, m := range Models {
		if m.RelationName() == relation {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}
