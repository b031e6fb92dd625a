package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/domain/ports"
	"github.com/lendingops/backend/internal/domain/schema"
	apperrors "github.com/lendingops/backend/pkg/errors"
)

// CatalogService manages logical table definitions and keeps the physical
// schema in lock-step with them
type CatalogService struct {
	store    ports.CatalogStore
	migrator ports.SchemaMigrator
	compiler schema.ExpressionCompiler
	log      *zap.SugaredLogger

	// fieldMu serializes AddField so concurrent additions to one table do
	// not regenerate its schema block from stale definitions
	fieldMu sync.Mutex
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(store ports.CatalogStore, migrator ports.SchemaMigrator, compiler schema.ExpressionCompiler, log *zap.SugaredLogger) *CatalogService {
	return &CatalogService{store: store, migrator: migrator, compiler: compiler, log: log}
}

// CreateTable validates the request, records the table as pending, migrates
// the physical schema and then activates the table. A failed migration
// removes the pending entry again.
func (s *CatalogService) CreateTable(ctx context.Context, req schema.CreateTableRequest) (*schema.TableDefinition, error) {
	table, err := schema.PrepareTable(req, s.compiler)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, table.Name); err != nil {
		return nil, err
	}

	if err := s.store.InsertPendingTable(ctx, table); err != nil {
		return nil, err
	}
	s.log.Infow("📐 Creating table", "table", table.Name, "id", table.ID, "fields", len(table.Fields))

	if err := s.migrator.CreateTable(ctx, table); err != nil {
		if delErr := s.store.DeletePendingTable(context.WithoutCancel(ctx), table.ID); delErr != nil {
			s.log.Errorw("🔥 Could not remove pending table after failed migration",
				"table", table.Name, "id", table.ID, "error", delErr)
		}
		return nil, err
	}

	if err := s.store.ActivateTable(context.WithoutCancel(ctx), table.ID); err != nil {
		s.log.Errorw("❌ Table migrated but not activated; left for repair",
			"table", table.Name, "id", table.ID, "error", err)
		return nil, err
	}
	table.Status = schema.TableStatusActive

	s.log.Infow("✅ Table created", "table", table.Name, "id", table.ID)
	return table, nil
}

func (s *CatalogService) checkNameFree(ctx context.Context, name string) error {
	existing, err := s.store.FindTableByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewDuplicateNameError("table", name)
	}

	declared, err := s.migrator.DeclaredTables()
	if err != nil {
		return apperrors.NewMigrationFailedError("schema_file", "", err)
	}
	for _, d := range declared {
		if d == name {
			return apperrors.NewDuplicateNameError("table", name)
		}
	}
	return nil
}

// GetTable returns an active table with its fields
func (s *CatalogService) GetTable(ctx context.Context, id string) (*schema.TableDefinition, error) {
	return s.store.GetTable(ctx, id)
}

// ListTables returns all active tables, newest first
func (s *CatalogService) ListTables(ctx context.Context) ([]*schema.TableDefinition, error) {
	return s.store.ListTables(ctx)
}

// AddField adds a column to a user-created table. The physical column is
// migrated first; the catalog entry is only written once it exists.
func (s *CatalogService) AddField(ctx context.Context, tableID string, spec schema.FieldSpec) (*schema.FieldDefinition, error) {
	s.fieldMu.Lock()
	defer s.fieldMu.Unlock()

	table, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table.IsSystem {
		return nil, apperrors.NewValidationError("table", "fields of built-in tables are managed by the schema synchronizer")
	}

	field, err := schema.PrepareField(table, spec, s.compiler)
	if err != nil {
		return nil, err
	}

	updated := *table
	updated.Fields = append(append([]*schema.FieldDefinition(nil), table.Fields...), field)

	if err := s.migrator.AddColumn(ctx, &updated, field); err != nil {
		return nil, err
	}
	if err := s.store.InsertField(context.WithoutCancel(ctx), field); err != nil {
		s.log.Errorw("❌ Column migrated but field not recorded; verifier will report drift",
			"table", table.Name, "field", field.Name, "error", err)
		return nil, err
	}

	s.log.Infow("✅ Field added", "table", table.Name, "field", field.Name)
	return field, nil
}
