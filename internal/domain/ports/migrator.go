package ports

import (
	"context"

	"github.com/lendingops/backend/internal/domain/schema"
)

// SchemaMigrator turns catalog changes into applied physical schema changes.
// Failures are reported as MigrationFailedError.
type SchemaMigrator interface {
	CreateTable(ctx context.Context, t *schema.TableDefinition) error

	// AddColumn migrates field onto t. t must already include field.
	AddColumn(ctx context.Context, t *schema.TableDefinition, field *schema.FieldDefinition) error

	// DeclaredTables lists the tables in the schema description file.
	DeclaredTables() ([]string, error)
}

// ExpressionEvaluator evaluates validation rules and formulas
type ExpressionEvaluator interface {
	Compile(expression string) error
	Evaluate(expression string, env map[string]any) (any, error)
	EvaluateBool(expression string, env map[string]any) (bool, error)
}
