package services

import (
	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/config"
	"github.com/lendingops/backend/internal/infrastructure/database"
	"github.com/lendingops/backend/internal/infrastructure/migration"
	"github.com/lendingops/backend/internal/infrastructure/persistence"
	"github.com/lendingops/backend/pkg/expression"
)

// ServiceManager wires repositories, the migrator and all services
type ServiceManager struct {
	db       *database.Connection
	Migrator *migration.Migrator

	Catalog  *CatalogService
	Records  *RecordService
	Layouts  *LayoutService
	Sync     *SchemaSynchronizer
	Verifier *SchemaVerifier
	Repair   *RepairScheduler
}

// NewServiceManager creates a service manager with all dependencies wired
func NewServiceManager(db *database.Connection, migrator *migration.Migrator, cfg config.RepairConfig, log *zap.SugaredLogger) *ServiceManager {
	catalogRepo := persistence.NewCatalogRepository(db)
	recordRepo := persistence.NewRecordRepository(db)
	layoutRepo := persistence.NewLayoutRepository(db)
	inspector := persistence.NewSchemaInspector(db)
	engine := expression.NewEngine()

	sm := &ServiceManager{db: db, Migrator: migrator}
	sm.Catalog = NewCatalogService(catalogRepo, migrator, engine, log.Named("catalog"))
	sm.Records = NewRecordService(catalogRepo, recordRepo, engine, log.Named("records"))
	sm.Layouts = NewLayoutService(catalogRepo, layoutRepo)
	sm.Sync = NewSchemaSynchronizer(catalogRepo, log.Named("sync"))
	sm.Verifier = NewSchemaVerifier(catalogRepo, inspector, migrator, cfg.PendingGrace, log.Named("verifier"))
	sm.Repair = NewRepairScheduler(sm.Verifier, cfg.AutoRepair, log.Named("repair"))
	return sm
}

// DB returns the database connection
func (sm *ServiceManager) DB() *database.Connection {
	return sm.db
}
