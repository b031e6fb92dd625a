package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/ports"
)

// Models that belong to the migration tooling and never enter the catalog
var syncDenyList = map[string]struct{}{
	"Migration":           {},
	"MigrationLock":       {},
	"AtlasSchemaRevision": {},
}

// SyncReport summarizes one synchronization pass
type SyncReport struct {
	Created []string          `json:"created"`
	Updated []string          `json:"updated"`
	Skipped []string          `json:"skipped"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK reports whether every model was reconciled
func (r *SyncReport) OK() bool {
	return len(r.Errors) == 0
}

// SchemaSynchronizer reconciles the compile-time data model into the catalog
type SchemaSynchronizer struct {
	store ports.CatalogStore
	log   *zap.SugaredLogger
}

// NewSchemaSynchronizer creates a new SchemaSynchronizer
func NewSchemaSynchronizer(store ports.CatalogStore, log *zap.SugaredLogger) *SchemaSynchronizer {
	return &SchemaSynchronizer{store: store, log: log}
}

// Sync upserts one system table per model and replaces its fields. Failures
// are collected per model and do not stop the pass. User-created tables with
// the same name are never modified.
func (s *SchemaSynchronizer) Sync(ctx context.Context, models []bootstrap.ModelDescriptor) *SyncReport {
	report := &SyncReport{
		Created: make([]string, 0),
		Updated: make([]string, 0),
		Skipped: make([]string, 0),
	}
	fail := func(name string, err error) {
		if report.Errors == nil {
			report.Errors = make(map[string]string)
		}
		report.Errors[name] = err.Error()
		s.log.Errorw("❌ Model sync failed", "model", name, "error", err)
	}

	for _, m := range models {
		if _, denied := syncDenyList[m.Name]; denied {
			report.Skipped = append(report.Skipped, m.Name)
			continue
		}

		name := m.RelationName()
		existing, err := s.store.FindTableByName(ctx, name)
		if err != nil {
			fail(m.Name, err)
			continue
		}
		if existing != nil && !existing.IsSystem {
			s.log.Warnw("⚠️ Skipping model: a user-created table has the same name", "model", m.Name, "table", name)
			report.Skipped = append(report.Skipped, m.Name)
			continue
		}

		table := m.ToTable()
		if len(table.Fields) == 0 {
			fail(m.Name, fmt.Errorf("model has no fields"))
			continue
		}
		created, err := s.store.SaveSystemTable(ctx, table)
		if err != nil {
			fail(m.Name, err)
			continue
		}
		if created {
			report.Created = append(report.Created, name)
		} else {
			report.Updated = append(report.Updated, name)
		}
	}

	s.log.Infow("🔄 Schema sync finished",
		"created", len(report.Created), "updated", len(report.Updated),
		"skipped", len(report.Skipped), "failed", len(report.Errors))
	return report
}
