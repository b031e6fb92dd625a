package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/lendingops/backend/internal/domain/schema"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

// ErrLockTimeout is returned when another migration holds the lock for
// longer than the configured wait
var ErrLockTimeout = errors.New("timed out waiting for the migration lock")

// Plan is one schema change: a table block to append, or to replace when
// a column is added to an existing table.
type Plan struct {
	Name     string
	Table    string
	DDL      string
	Fragment string
	Columns  []string
	Replace  bool
}

// Result describes how an attempt ended
type Result struct {
	State  State
	Trace  []State
	Output string
}

// NewTablePlan renders the plan that creates a new table
func NewTablePlan(d query.Dialect, t *schema.TableDefinition) (Plan, error) {
	return newPlan(d, t, fmt.Sprintf("add_%s_table", t.Name), false)
}

// NewColumnPlan renders the plan that adds field to t. t must already
// include the field.
func NewColumnPlan(d query.Dialect, t *schema.TableDefinition, field *schema.FieldDefinition) (Plan, error) {
	return newPlan(d, t, fmt.Sprintf("add_%s_to_%s", field.Name, t.Name), true)
}

func newPlan(d query.Dialect, t *schema.TableDefinition, name string, replace bool) (Plan, error) {
	ddl, err := RenderTable(d, t, false)
	if err != nil {
		return Plan{}, err
	}
	fragment, err := RenderFragment(d, t)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Name:     name,
		Table:    t.Name,
		DDL:      ddl,
		Fragment: fragment,
		Columns:  t.PhysicalColumns(),
		Replace:  replace,
	}, nil
}

// Options configures a Migrator
type Options struct {
	Dialect     query.Dialect
	Tools       Tools
	LockTimeout time.Duration
	StepTimeout time.Duration
}

// Migrator applies schema changes one at a time: it writes the schema
// description file, runs the external tool steps, and restores the file
// when any step fails.
type Migrator struct {
	file      *SchemaFile
	runner    Runner
	validator FragmentValidator
	opts      Options
	lock      *semaphore.Weighted
	log       *zap.SugaredLogger
}

// NewMigrator creates a migrator. All callers must share one instance.
func NewMigrator(file *SchemaFile, runner Runner, validator FragmentValidator, opts Options, log *zap.SugaredLogger) *Migrator {
	if validator == nil {
		validator = nopValidator{}
	}
	if opts.Dialect == nil {
		opts.Dialect = query.MySQL
	}
	return &Migrator{
		file:      file,
		runner:    runner,
		validator: validator,
		opts:      opts,
		lock:      semaphore.NewWeighted(1),
		log:       log,
	}
}

// File returns the schema description file
func (m *Migrator) File() *SchemaFile {
	return m.file
}

func (m *Migrator) acquire(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, m.opts.LockTimeout)
	defer cancel()
	if err := m.lock.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrLockTimeout
	}
	return nil
}

// Apply runs a plan under the process-wide migration lock
func (m *Migrator) Apply(ctx context.Context, plan Plan) (Result, error) {
	if err := m.validator.Validate(plan.Table, plan.Columns, plan.DDL); err != nil {
		return Result{State: StatePending}, apperrors.NewMigrationFailedError("render", plan.DDL, err)
	}

	if err := m.acquire(ctx); err != nil {
		return Result{State: StatePending}, apperrors.NewMigrationFailedError("lock", "", err)
	}
	defer m.lock.Release(1)

	a := newAttempt(plan.Name)
	m.log.Infow("📐 Migration started", "migration", plan.Name, "table", plan.Table)

	declared, err := m.file.HasTable(plan.Table)
	if err != nil {
		return m.abort(a, "schema_file", "", fmt.Errorf("read schema file: %w", err))
	}
	if !plan.Replace && declared {
		_ = a.moveTo(StateRolledBack)
		return m.result(a, ""), apperrors.NewDuplicateNameError("table", plan.Table)
	}
	if plan.Replace && !declared {
		return m.abort(a, "schema_file", "", fmt.Errorf("table %s is not declared in the schema file", plan.Table))
	}

	existed, err := m.file.Backup()
	if err != nil {
		return m.abort(a, "schema_file", "", err)
	}
	a.backedUp, a.existed = true, existed

	if plan.Replace {
		err = m.file.ReplaceBlock(plan.Table, plan.Fragment)
	} else {
		err = m.file.Append(plan.Fragment)
	}
	if err != nil {
		return m.abort(a, "schema_file", "", err)
	}
	if err := a.moveTo(StateSchemaWritten); err != nil {
		return m.abort(a, "schema_file", "", err)
	}

	steps, err := m.opts.Tools.steps(plan.Name)
	if err != nil {
		return m.abort(a, "config", "", err)
	}

	// Steps are detached from the caller once the file is written.
	// StepTimeout still bounds each one.
	stepCtx := context.WithoutCancel(ctx)
	var output string
	for _, s := range steps {
		out, err := m.runStep(stepCtx, s)
		output = string(out)
		if err != nil {
			return m.abort(a, s.name, output, err)
		}
		m.log.Infow("✅ Migration step finished", "migration", plan.Name, "step", s.name)
	}
	if err := a.moveTo(StateToolsInvoked); err != nil {
		return m.abort(a, "state", output, err)
	}

	if err := m.file.RemoveBackup(); err != nil {
		m.log.Warnw("⚠️ Could not remove schema backup", "migration", plan.Name, "error", err)
	}
	_ = a.moveTo(StateCommitted)
	m.log.Infow("✅ Migration committed", "migration", plan.Name, "table", plan.Table)
	return m.result(a, output), nil
}

func (m *Migrator) runStep(ctx context.Context, s step) ([]byte, error) {
	stepCtx, cancel := context.WithTimeout(ctx, m.opts.StepTimeout)
	defer cancel()

	out, err := m.runner.Run(stepCtx, s.args)
	if err != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("step %s timed out after %s: %w", s.name, m.opts.StepTimeout, err)
	}
	return out, err
}

// abort restores the schema file if it was touched and reports the failure.
// A half-applied database migration is left for the operator.
func (m *Migrator) abort(a *attempt, stepName, output string, cause error) (Result, error) {
	if a.backedUp {
		if err := m.file.Restore(a.existed); err != nil {
			m.log.Errorw("🔥 Schema file restore failed", "migration", a.name, "error", err)
			cause = errors.Join(cause, err)
		} else if err := m.file.RemoveBackup(); err != nil {
			m.log.Warnw("⚠️ Could not remove schema backup", "migration", a.name, "error", err)
		}
	}
	_ = a.moveTo(StateRolledBack)
	m.log.Errorw("❌ Migration rolled back", "migration", a.name, "step", stepName, "error", cause, "output", output)
	return m.result(a, output), apperrors.NewMigrationFailedError(stepName, output, cause)
}

func (m *Migrator) result(a *attempt, output string) Result {
	return Result{State: a.state, Trace: append([]State(nil), a.trace...), Output: output}
}

// CreateTable renders and applies the plan for a new table
func (m *Migrator) CreateTable(ctx context.Context, t *schema.TableDefinition) error {
	plan, err := NewTablePlan(m.opts.Dialect, t)
	if err != nil {
		return apperrors.NewMigrationFailedError("render", "", err)
	}
	_, err = m.Apply(ctx, plan)
	return err
}

// AddColumn renders and applies the plan adding field to t
func (m *Migrator) AddColumn(ctx context.Context, t *schema.TableDefinition, field *schema.FieldDefinition) error {
	plan, err := NewColumnPlan(m.opts.Dialect, t, field)
	if err != nil {
		return apperrors.NewMigrationFailedError("render", "", err)
	}
	_, err = m.Apply(ctx, plan)
	return err
}

// DeclaredTables lists the tables in the schema description file
func (m *Migrator) DeclaredTables() ([]string, error) {
	return m.file.DeclaredTables()
}

// EnsureDeclared appends blocks for tables missing from the schema file
func (m *Migrator) EnsureDeclared(ctx context.Context, tables []*schema.TableDefinition) ([]string, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	defer m.lock.Release(1)

	var added []string
	for _, t := range tables {
		declared, err := m.file.HasTable(t.Name)
		if err != nil {
			return added, err
		}
		if declared {
			continue
		}
		fragment, err := RenderFragment(m.opts.Dialect, t)
		if err != nil {
			return added, err
		}
		if err := m.file.Append(fragment); err != nil {
			return added, err
		}
		added = append(added, t.Name)
	}
	return added, nil
}
