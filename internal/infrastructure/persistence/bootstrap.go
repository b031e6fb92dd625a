package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/infrastructure/database"
	"github.com/lendingops/backend/internal/infrastructure/migration"
)

// EnsureTables creates the physical tables of built-in models that do not
// exist yet. Existing tables are left untouched.
func EnsureTables(ctx context.Context, conn *database.Connection, tables []*schema.TableDefinition, log *zap.SugaredLogger) error {
	for _, t := range tables {
		ddl, err := migration.RenderTable(conn.Dialect(), t, true)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", t.Name, err)
		}
		if _, err := conn.DB().ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.Name, err)
		}
		log.Debugw("✅ Ensured table", "table", t.Name)
	}
	return nil
}
