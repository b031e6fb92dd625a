package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/utils"
)

// ExpressionCompiler checks validation rules and formulas at definition time
type ExpressionCompiler interface {
	Compile(expression string) error
}

var reservedColumns = map[string]struct{}{
	ColumnCreatedAt: {},
	ColumnUpdatedAt: {},
}

// PrepareTable validates and normalizes a creation request into a pending
// TableDefinition. The id field is inserted first when the caller omits it.
func PrepareTable(req CreateTableRequest, compiler ExpressionCompiler) (*TableDefinition, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "table name is required")
	}
	if strings.TrimSpace(req.Label) == "" {
		return nil, apperrors.NewValidationError("displayName", "display name is required")
	}
	if req.Fields == nil {
		return nil, apperrors.NewValidationError("fields", "fields array is required")
	}

	name := Normalize(req.Name)
	if reason := checkPhysicalName(name); reason != "" {
		return nil, apperrors.NewValidationError("name", "table name "+reason)
	}

	now := time.Now().UTC()
	table := &TableDefinition{
		ID:          utils.GenerateID(),
		Name:        name,
		Label:       strings.TrimSpace(req.Label),
		Description: strings.TrimSpace(req.Description),
		Status:      TableStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seen := make(map[string]struct{}, len(req.Fields)+1)
	for _, spec := range req.Fields {
		field, err := prepareField(table.ID, spec, compiler)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[field.Name]; dup {
			return nil, apperrors.NewDuplicateNameError("field", field.Name)
		}
		seen[field.Name] = struct{}{}
		table.Fields = append(table.Fields, field)
	}

	if id, ok := table.Field(ColumnID); ok {
		id.Type = FieldTypeText
		id.Required = true
		id.Unique = true
		id.DefaultValue = nil
	} else {
		table.Fields = append([]*FieldDefinition{idField(table.ID)}, table.Fields...)
	}

	for i, f := range table.Fields {
		f.SortOrder = i
		f.CreatedAt = now
		f.UpdatedAt = now
	}
	return table, nil
}

// PrepareField validates a field being added to an existing table. Existing
// rows have no value for it, so it must be optional or carry a default.
func PrepareField(table *TableDefinition, spec FieldSpec, compiler ExpressionCompiler) (*FieldDefinition, error) {
	field, err := prepareField(table.ID, spec, compiler)
	if err != nil {
		return nil, err
	}
	if _, exists := table.Field(field.Name); exists {
		return nil, apperrors.NewDuplicateNameError("field", field.Name)
	}
	if field.Required && field.DefaultValue == nil {
		return nil, apperrors.NewValidationError(field.Name, "a required field added to an existing table needs a default value")
	}

	now := time.Now().UTC()
	field.SortOrder = len(table.Fields)
	field.CreatedAt = now
	field.UpdatedAt = now
	return field, nil
}

func idField(tableID string) *FieldDefinition {
	return &FieldDefinition{
		ID:          utils.GenerateID(),
		TableID:     tableID,
		Name:        ColumnID,
		Label:       "ID",
		Type:        FieldTypeText,
		Required:    true,
		Unique:      true,
		Description: "Primary key",
	}
}

func prepareField(tableID string, spec FieldSpec, compiler ExpressionCompiler) (*FieldDefinition, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, apperrors.NewValidationError("fields", "every field needs a name")
	}
	name := Normalize(spec.Name)
	if reason := checkPhysicalName(name); reason != "" {
		return nil, apperrors.NewValidationError(spec.Name, "field name "+reason)
	}
	if _, reserved := reservedColumns[name]; reserved {
		return nil, apperrors.NewDuplicateNameError("field", name)
	}

	if spec.Type == "" {
		spec.Type = FieldTypeText
	}
	if !spec.Type.Valid() {
		return nil, apperrors.NewValidationError(name, fmt.Sprintf("unknown field type %q", spec.Type))
	}

	label := strings.TrimSpace(spec.Label)
	if label == "" {
		label = spec.Name
	}
	description := strings.TrimSpace(spec.Description)
	if description == "" {
		description = label + " field"
	}

	field := &FieldDefinition{
		ID:           utils.GenerateID(),
		TableID:      tableID,
		Name:         name,
		Label:        label,
		Type:         spec.Type,
		Required:     spec.Required,
		Unique:       spec.Unique,
		DefaultValue: spec.DefaultValue,
		Description:  description,
		Validation:   strings.TrimSpace(spec.Validation),
		Config:       spec.Config,
	}

	if err := checkTypeConfig(field, compiler); err != nil {
		return nil, err
	}
	if field.DefaultValue != nil {
		if _, err := DefaultLiteral(field); err != nil {
			return nil, err
		}
	}
	if field.Validation != "" && compiler != nil {
		if err := compiler.Compile(field.Validation); err != nil {
			return nil, apperrors.NewValidationError(name, "invalid validation expression: "+err.Error())
		}
	}
	return field, nil
}

func checkTypeConfig(f *FieldDefinition, compiler ExpressionCompiler) error {
	cfg := f.Config
	if f.Unique && (f.Type == FieldTypeJSON || f.Type == FieldTypeBinary) {
		return apperrors.NewValidationError(f.Name, fmt.Sprintf("%s fields cannot be unique", f.Type))
	}
	switch f.Type {
	case FieldTypeLookup:
		if cfg == nil || cfg.LookupTable == "" {
			return apperrors.NewValidationError(f.Name, "lookup fields need config.lookupTable")
		}
	case FieldTypeSelect:
		if cfg == nil || len(cfg.Options) == 0 {
			return apperrors.NewValidationError(f.Name, "select fields need config.options")
		}
		if f.DefaultValue != nil && !contains(cfg.Options, *f.DefaultValue) {
			return apperrors.NewValidationError(f.Name, "default value is not one of the options")
		}
	case FieldTypeFormula:
		if cfg == nil || strings.TrimSpace(cfg.Formula) == "" {
			return apperrors.NewValidationError(f.Name, "formula fields need config.formula")
		}
		if compiler != nil {
			if err := compiler.Compile(cfg.Formula); err != nil {
				return apperrors.NewValidationError(f.Name, "invalid formula: "+err.Error())
			}
		}
	case FieldTypeCurrency:
		if cfg != nil && cfg.Precision != nil && (*cfg.Precision < 0 || *cfg.Precision > 8) {
			return apperrors.NewValidationError(f.Name, "currency precision must be between 0 and 8")
		}
	}
	return nil
}

// Precision returns the decimal scale of a currency field
func (f *FieldDefinition) Precision() int {
	if f.Config != nil && f.Config.Precision != nil {
		return *f.Config.Precision
	}
	return DefaultCurrencyPrecision
}

// DefaultLiteral renders a field's default value as a SQL literal. String
// storage is single-quoted; other storage types only accept literals of
// their own kind.
func DefaultLiteral(f *FieldDefinition) (string, error) {
	if f.DefaultValue == nil {
		return "", nil
	}
	v := *f.DefaultValue
	invalid := func(kind string) error {
		return apperrors.NewValidationError(f.Name, fmt.Sprintf("default value %q is not a valid %s", v, kind))
	}

	switch f.Type.Storage() {
	case StorageString:
		if strings.ContainsAny(v, "\\\x00\n\r") || len(v) > 255 {
			return "", invalid("text literal")
		}
		return quoteLiteral(v), nil
	case StorageInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", invalid("integer")
		}
		return strconv.FormatInt(n, 10), nil
	case StorageDecimal:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", invalid("number")
		}
		return strconv.FormatFloat(n, 'f', f.Precision(), 64), nil
	case StorageBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return "", invalid("boolean")
		}
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	case StorageDate:
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return "", invalid("date (YYYY-MM-DD)")
		}
		return quoteLiteral(v), nil
	case StorageTimestamp:
		if _, err := time.Parse("2006-01-02 15:04:05", v); err != nil {
			return "", invalid("datetime (YYYY-MM-DD HH:MM:SS)")
		}
		return quoteLiteral(v), nil
	default:
		return "", apperrors.NewValidationError(f.Name, fmt.Sprintf("%s fields cannot have a default value", f.Type))
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
