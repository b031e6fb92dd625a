package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lendingops/backend/internal/domain/ports"
	"github.com/lendingops/backend/internal/domain/schema"
)

// DriftKind classifies a mismatch between catalog and physical schema
type DriftKind string

const (
	DriftMissingTable     DriftKind = "missing_table"
	DriftMissingColumns   DriftKind = "missing_columns"
	DriftUnexpectedColumn DriftKind = "unexpected_columns"
)

// Drift is one catalog/physical mismatch
type Drift struct {
	TableID string    `json:"tableId"`
	Table   string    `json:"table"`
	Kind    DriftKind `json:"kind"`
	Columns []string  `json:"columns,omitempty"`
}

// RepairAction is what the verifier did to a stale pending table
type RepairAction string

const (
	RepairActivated RepairAction = "activated"
	RepairRemoved   RepairAction = "removed"
)

// Repair records one repaired pending table
type Repair struct {
	TableID string       `json:"tableId"`
	Table   string       `json:"table"`
	Action  RepairAction `json:"action"`
}

// VerifyReport is the outcome of one verification pass
type VerifyReport struct {
	Checked int      `json:"checked"`
	Drift   []Drift  `json:"drift"`
	Repairs []Repair `json:"repairs"`
	// StalePending lists pending tables past the grace period that were not
	// repaired in this pass
	StalePending []string `json:"stalePending"`
	// Orphans are tables declared in the schema file without a catalog entry
	Orphans []string `json:"orphans"`
}

// Clean reports whether nothing needs attention
func (r *VerifyReport) Clean() bool {
	return len(r.Drift) == 0 && len(r.StalePending) == 0 && len(r.Orphans) == 0
}

// SchemaVerifier compares the catalog with the live database and repairs
// table creations that were interrupted between migration and activation
type SchemaVerifier struct {
	store        ports.CatalogStore
	inspector    ports.SchemaInspector
	migrator     ports.SchemaMigrator
	pendingGrace time.Duration
	concurrency  int
	log          *zap.SugaredLogger
	now          func() time.Time
}

// NewSchemaVerifier creates a new SchemaVerifier. Pending tables younger
// than pendingGrace may still be migrating and are left alone.
func NewSchemaVerifier(store ports.CatalogStore, inspector ports.SchemaInspector, migrator ports.SchemaMigrator, pendingGrace time.Duration, log *zap.SugaredLogger) *SchemaVerifier {
	return &SchemaVerifier{
		store:        store,
		inspector:    inspector,
		migrator:     migrator,
		pendingGrace: pendingGrace,
		concurrency:  4,
		log:          log,
		now:          time.Now,
	}
}

// Verify checks every active table for drift. With repair set, stale pending
// tables are activated when their physical table matches, or removed when it
// does not exist. Orphaned schema file declarations are only reported.
func (v *SchemaVerifier) Verify(ctx context.Context, repair bool) (*VerifyReport, error) {
	report := &VerifyReport{
		Drift:        make([]Drift, 0),
		Repairs:      make([]Repair, 0),
		StalePending: make([]string, 0),
		Orphans:      make([]string, 0),
	}

	tables, err := v.store.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	report.Checked = len(tables)

	drift := make([][]Drift, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, t := range tables {
		g.Go(func() error {
			actual, err := v.inspector.TableColumns(gctx, t.Name)
			if err != nil {
				return err
			}
			drift[i] = compareColumns(t, actual)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, d := range drift {
		report.Drift = append(report.Drift, d...)
	}

	pending, err := v.store.ListPendingTables(ctx, v.now().UTC())
	if err != nil {
		return nil, err
	}
	cutoff := v.now().UTC().Add(-v.pendingGrace)
	for _, t := range pending {
		if !t.CreatedAt.Before(cutoff) {
			continue
		}
		if err := v.checkPending(ctx, t, repair, report); err != nil {
			return nil, err
		}
	}

	declared, err := v.migrator.DeclaredTables()
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(tables)+len(pending))
	for _, t := range tables {
		known[t.Name] = struct{}{}
	}
	for _, t := range pending {
		known[t.Name] = struct{}{}
	}
	for _, name := range declared {
		if _, ok := known[name]; !ok {
			report.Orphans = append(report.Orphans, name)
		}
	}

	if report.Clean() {
		v.log.Infow("✅ Schema verified", "tables", report.Checked, "repairs", len(report.Repairs))
	} else {
		v.log.Warnw("⚠️ Schema drift detected",
			"tables", report.Checked, "drift", len(report.Drift),
			"stalePending", len(report.StalePending), "orphans", report.Orphans)
	}
	return report, nil
}

func (v *SchemaVerifier) checkPending(ctx context.Context, t *schema.TableDefinition, repair bool, report *VerifyReport) error {
	actual, err := v.inspector.TableColumns(ctx, t.Name)
	if err != nil {
		return err
	}
	mismatch := compareColumns(t, actual)

	switch {
	case repair && len(mismatch) == 0:
		if err := v.store.ActivateTable(ctx, t.ID); err != nil {
			return err
		}
		report.Repairs = append(report.Repairs, Repair{TableID: t.ID, Table: t.Name, Action: RepairActivated})
		v.log.Infow("🔧 Activated pending table", "table", t.Name, "id", t.ID)
	case repair && len(actual) == 0:
		if err := v.store.DeletePendingTable(ctx, t.ID); err != nil {
			return err
		}
		report.Repairs = append(report.Repairs, Repair{TableID: t.ID, Table: t.Name, Action: RepairRemoved})
		v.log.Infow("🔧 Removed pending table without physical table", "table", t.Name, "id", t.ID)
	default:
		report.StalePending = append(report.StalePending, t.Name)
		report.Drift = append(report.Drift, mismatch...)
	}
	return nil
}

// compareColumns diffs the expected physical columns of t with the actual ones
func compareColumns(t *schema.TableDefinition, actual []string) []Drift {
	if len(actual) == 0 {
		return []Drift{{TableID: t.ID, Table: t.Name, Kind: DriftMissingTable}}
	}

	have := make(map[string]struct{}, len(actual))
	for _, c := range actual {
		have[strings.ToLower(c)] = struct{}{}
	}
	want := make(map[string]struct{})
	var missing []string
	for _, c := range t.PhysicalColumns() {
		want[c] = struct{}{}
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	var unexpected []string
	for c := range have {
		if _, ok := want[c]; !ok {
			unexpected = append(unexpected, c)
		}
	}
	sort.Strings(unexpected)

	var out []Drift
	if len(missing) > 0 {
		out = append(out, Drift{TableID: t.ID, Table: t.Name, Kind: DriftMissingColumns, Columns: missing})
	}
	if len(unexpected) > 0 {
		out = append(out, Drift{TableID: t.ID, Table: t.Name, Kind: DriftUnexpectedColumn, Columns: unexpected})
	}
	return out
}
