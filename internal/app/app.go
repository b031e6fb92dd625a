// Package app assembles the runtime shared by the server and catalogctl:
// configuration-driven database and migrator setup, the service graph, and
// the startup bootstrap of built-in tables.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/application/services"
	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/config"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/infrastructure/database"
	"github.com/lendingops/backend/internal/infrastructure/migration"
	"github.com/lendingops/backend/internal/infrastructure/persistence"
)

// App is an opened runtime
type App struct {
	Config   *config.Config
	DB       *database.Connection
	Services *services.ServiceManager
	log      *zap.SugaredLogger
}

// Open connects to the database, recovers an interrupted schema file edit
// and wires every service
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Infow("✅ Database connection established", "driver", db.Dialect().Name())

	file := migration.NewSchemaFile(afero.NewOsFs(), cfg.Migration.SchemaPath)
	recovered, err := file.RecoverBackup()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to recover schema file backup: %w", err)
	}
	if recovered {
		log.Warnw("🔄 Restored schema file from an interrupted migration", "path", file.Path())
	}

	migrator := migration.NewMigrator(file, migration.ExecRunner{Dir: cfg.Migration.WorkDir},
		migration.NewValidator(db.Dialect()),
		migration.Options{
			Dialect: db.Dialect(),
			Tools: migration.Tools{
				Diff:     cfg.Migration.DiffCmd,
				Generate: cfg.Migration.GenerateCmd,
				Apply:    cfg.Migration.ApplyCmd,
			},
			LockTimeout: cfg.Migration.LockTimeout,
			StepTimeout: cfg.Migration.StepTimeout,
		}, log.Named("migrator"))

	return &App{
		Config:   cfg,
		DB:       db,
		Services: services.NewServiceManager(db, migrator, cfg.Repair, log),
		log:      log,
	}, nil
}

// builtinTables renders the compile-time models as table definitions
func builtinTables() []*schema.TableDefinition {
	tables := make([]*schema.TableDefinition, 0, len(bootstrap.Models))
	for _, m := range bootstrap.Models {
		tables = append(tables, m.ToTable())
	}
	return tables
}

// Seed creates the physical built-in tables and declares them in the schema
// description file
func (a *App) Seed(ctx context.Context) error {
	tables := builtinTables()
	if err := persistence.EnsureTables(ctx, a.DB, tables, a.log); err != nil {
		return err
	}
	added, err := a.Services.Migrator.EnsureDeclared(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to seed schema file: %w", err)
	}
	if len(added) > 0 {
		a.log.Infow("📐 Declared built-in tables in schema file", "tables", added)
	}
	return nil
}

// Sync reconciles the built-in models into the catalog
func (a *App) Sync(ctx context.Context) *services.SyncReport {
	return a.Services.Sync.Sync(ctx, bootstrap.Models)
}

// Close releases the database pool
func (a *App) Close() error {
	return a.DB.Close()
}
