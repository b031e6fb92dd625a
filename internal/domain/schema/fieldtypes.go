package schema

// FieldType is a logical field type
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeTextArea   FieldType = "textarea"
	FieldTypeEmail      FieldType = "email"
	FieldTypePhone      FieldType = "phone"
	FieldTypeURL        FieldType = "url"
	FieldTypeNumber     FieldType = "number"
	FieldTypeBoolean    FieldType = "boolean"
	FieldTypeDate       FieldType = "date"
	FieldTypeDateTime   FieldType = "datetime"
	FieldTypeCurrency   FieldType = "currency"
	FieldTypeSelect     FieldType = "select"
	FieldTypeLookup     FieldType = "lookup"
	FieldTypeFormula    FieldType = "formula"
	FieldTypeAutoNumber FieldType = "auto-number"
	FieldTypeJSON       FieldType = "json"
	FieldTypeBinary     FieldType = "binary"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeText: {}, FieldTypeTextArea: {}, FieldTypeEmail: {}, FieldTypePhone: {},
	FieldTypeURL: {}, FieldTypeNumber: {}, FieldTypeBoolean: {}, FieldTypeDate: {},
	FieldTypeDateTime: {}, FieldTypeCurrency: {}, FieldTypeSelect: {}, FieldTypeLookup: {},
	FieldTypeFormula: {}, FieldTypeAutoNumber: {}, FieldTypeJSON: {}, FieldTypeBinary: {},
}

// Valid reports whether t is one of the supported logical types
func (t FieldType) Valid() bool {
	_, ok := knownFieldTypes[t]
	return ok
}

// StorageType is the physical column kind a logical type is stored as
type StorageType string

const (
	StorageString    StorageType = "string"
	StorageInteger   StorageType = "integer"
	StorageBoolean   StorageType = "boolean"
	StorageTimestamp StorageType = "timestamp"
	StorageDate      StorageType = "date"
	StorageDecimal   StorageType = "decimal"
	StorageJSON      StorageType = "json"
	StorageBytes     StorageType = "bytes"
	StorageUUID      StorageType = "uuid"
)

var storageTypes = map[FieldType]StorageType{
	FieldTypeText:     StorageString,
	FieldTypeNumber:   StorageInteger,
	FieldTypeBoolean:  StorageBoolean,
	FieldTypeDateTime: StorageTimestamp,
	FieldTypeDate:     StorageDate,
	FieldTypeCurrency: StorageDecimal,
	FieldTypeJSON:     StorageJSON,
	FieldTypeBinary:   StorageBytes,
}

// MaxStringLength is the character capacity of a string-storage column
const MaxStringLength = 255

// Storage maps a logical type to its storage type. Types without a dedicated
// mapping are stored as strings.
func (t FieldType) Storage() StorageType {
	if st, ok := storageTypes[t]; ok {
		return st
	}
	return StorageString
}

// Physical columns every generated table carries
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// DefaultCurrencyPrecision is the scale of currency columns without explicit precision
const DefaultCurrencyPrecision = 2
