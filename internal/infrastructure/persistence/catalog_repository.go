package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/infrastructure/database"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

var tableColumns = []string{
	"id", "name", "label", "description", "is_system", "status", "created_at", "updated_at",
}

var fieldColumns = []string{
	"id", "table_id", "name", "label", "type", "required", "is_unique", "default_value",
	"description", "validation", "config", "sort_order", "created_at", "updated_at",
}

// CatalogRepository stores table and field definitions in the catalog relations
type CatalogRepository struct {
	db      *sql.DB
	dialect query.Dialect
	tx      *TransactionManager
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(conn *database.Connection) *CatalogRepository {
	return &CatalogRepository{
		db:      conn.DB(),
		dialect: conn.Dialect(),
		tx:      NewTransactionManager(conn.DB()),
	}
}

func (r *CatalogRepository) q(stmt string) string {
	return r.dialect.Rebind(stmt)
}

func (r *CatalogRepository) selectTables(where string) string {
	return r.q(fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(tableColumns, ", "), bootstrap.TableDefinitionsTable, where))
}

func (r *CatalogRepository) selectFields(where string) string {
	return r.q(fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(fieldColumns, ", "), bootstrap.FieldDefinitionsTable, where))
}

// =================================================================================
// Writes
// =================================================================================

// InsertPendingTable stores the table and its fields with status pending
func (r *CatalogRepository) InsertPendingTable(ctx context.Context, t *schema.TableDefinition) error {
	t.Status = schema.TableStatusPending
	err := r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.insertTable(ctx, tx, t); err != nil {
			return err
		}
		for _, f := range t.Fields {
			if err := r.insertField(ctx, tx, f); err != nil {
				return err
			}
		}
		return nil
	})
	if database.IsDuplicateKey(err) {
		return apperrors.NewDuplicateNameError("table", t.Name)
	}
	if err != nil {
		return apperrors.NewDatabaseError("insert table definition", err)
	}
	return nil
}

// ActivateTable flips a pending table to active
func (r *CatalogRepository) ActivateTable(ctx context.Context, id string) error {
	stmt := r.q(fmt.Sprintf("UPDATE %s SET status = ?, updated_at = ? WHERE id = ? AND status = ?", bootstrap.TableDefinitionsTable))
	res, err := r.db.ExecContext(ctx, stmt, string(schema.TableStatusActive), time.Now().UTC(), id, string(schema.TableStatusPending))
	if err != nil {
		return apperrors.NewDatabaseError("activate table", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("pending table", id)
	}
	return nil
}

// DeletePendingTable removes a pending table and its fields
func (r *CatalogRepository) DeletePendingTable(ctx context.Context, id string) error {
	err := r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			r.q(fmt.Sprintf("DELETE FROM %s WHERE id = ? AND status = ?", bootstrap.TableDefinitionsTable)),
			id, string(schema.TableStatusPending))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NewNotFoundError("pending table", id)
		}
		_, err = tx.ExecContext(ctx,
			r.q(fmt.Sprintf("DELETE FROM %s WHERE table_id = ?", bootstrap.FieldDefinitionsTable)), id)
		return err
	})
	if err != nil && !apperrors.IsNotFound(err) {
		return apperrors.NewDatabaseError("delete pending table", err)
	}
	return err
}

// InsertField appends a field to an existing table
func (r *CatalogRepository) InsertField(ctx context.Context, f *schema.FieldDefinition) error {
	err := r.insertField(ctx, r.db, f)
	if database.IsDuplicateKey(err) {
		return apperrors.NewDuplicateNameError("field", f.Name)
	}
	if err != nil {
		return apperrors.NewDatabaseError("insert field definition", err)
	}
	return nil
}

// SaveSystemTable creates or updates a built-in table and replaces its fields.
// A user-created table with the same name is never modified.
func (r *CatalogRepository) SaveSystemTable(ctx context.Context, t *schema.TableDefinition) (bool, error) {
	created := false
	err := r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existingID string
		var isSystem bool
		err := tx.QueryRowContext(ctx,
			r.q(fmt.Sprintf("SELECT id, is_system FROM %s WHERE name = ?", bootstrap.TableDefinitionsTable)),
			t.Name).Scan(&existingID, &isSystem)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
			t.Status = schema.TableStatusActive
			if err := r.insertTable(ctx, tx, t); err != nil {
				return err
			}
		case err != nil:
			return err
		case !isSystem:
			return apperrors.NewDuplicateNameError("table", t.Name)
		default:
			t.ID = existingID
			now := time.Now().UTC()
			t.UpdatedAt = now
			if _, err := tx.ExecContext(ctx,
				r.q(fmt.Sprintf("UPDATE %s SET label = ?, description = ?, updated_at = ? WHERE id = ?", bootstrap.TableDefinitionsTable)),
				t.Label, nullString(t.Description), now, t.ID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				r.q(fmt.Sprintf("DELETE FROM %s WHERE table_id = ?", bootstrap.FieldDefinitionsTable)), t.ID); err != nil {
				return err
			}
		}

		for _, f := range t.Fields {
			f.TableID = t.ID
			if err := r.insertField(ctx, tx, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !apperrors.IsDuplicateName(err) {
		return false, apperrors.NewDatabaseError("save system table", err)
	}
	return created, err
}

func (r *CatalogRepository) insertTable(ctx context.Context, exec Executor, t *schema.TableDefinition) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	stmt := r.q(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		bootstrap.TableDefinitionsTable, strings.Join(tableColumns, ", "), placeholders(len(tableColumns))))
	_, err := exec.ExecContext(ctx, stmt,
		t.ID, t.Name, t.Label, nullString(t.Description), t.IsSystem, string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *CatalogRepository) insertField(ctx context.Context, exec Executor, f *schema.FieldDefinition) error {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = now
	}

	var config any
	if f.Config != nil {
		raw, err := json.Marshal(f.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal field config: %w", err)
		}
		config = string(raw)
	}
	var defaultValue any
	if f.DefaultValue != nil {
		defaultValue = *f.DefaultValue
	}

	stmt := r.q(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		bootstrap.FieldDefinitionsTable, strings.Join(fieldColumns, ", "), placeholders(len(fieldColumns))))
	_, err := exec.ExecContext(ctx, stmt,
		f.ID, f.TableID, f.Name, f.Label, string(f.Type), f.Required, f.Unique, defaultValue,
		nullString(f.Description), nullString(f.Validation), config, f.SortOrder, f.CreatedAt, f.UpdatedAt)
	return err
}

// =================================================================================
// Reads
// =================================================================================

// GetTable returns an active table with its fields
func (r *CatalogRepository) GetTable(ctx context.Context, id string) (*schema.TableDefinition, error) {
	row := r.db.QueryRowContext(ctx, r.selectTables("WHERE id = ? AND status = ?"), id, string(schema.TableStatusActive))
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("table", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get table", err)
	}
	if t.Fields, err = r.fieldsFor(ctx, t.ID); err != nil {
		return nil, apperrors.NewDatabaseError("get table fields", err)
	}
	return t, nil
}

// FindTableByName returns the table in any status, or nil when absent
func (r *CatalogRepository) FindTableByName(ctx context.Context, name string) (*schema.TableDefinition, error) {
	row := r.db.QueryRowContext(ctx, r.selectTables("WHERE name = ?"), name)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find table", err)
	}
	if t.Fields, err = r.fieldsFor(ctx, t.ID); err != nil {
		return nil, apperrors.NewDatabaseError("get table fields", err)
	}
	return t, nil
}

// ListTables returns active tables, newest first, with their fields nested
func (r *CatalogRepository) ListTables(ctx context.Context) ([]*schema.TableDefinition, error) {
	tables, err := r.queryTables(ctx, r.selectTables("WHERE status = ? ORDER BY created_at DESC"), string(schema.TableStatusActive))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tables", err)
	}

	byID := make(map[string]*schema.TableDefinition, len(tables))
	for _, t := range tables {
		byID[strings.ToLower(t.ID)] = t
	}

	rows, err := r.db.QueryContext(ctx, r.selectFields("ORDER BY table_id, sort_order"))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list fields", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan field", err)
		}
		if t, ok := byID[strings.ToLower(f.TableID)]; ok {
			t.Fields = append(t.Fields, f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("list fields", err)
	}
	return tables, nil
}

// ListPendingTables returns pending tables created before the cutoff
func (r *CatalogRepository) ListPendingTables(ctx context.Context, createdBefore time.Time) ([]*schema.TableDefinition, error) {
	tables, err := r.queryTables(ctx,
		r.selectTables("WHERE status = ? AND created_at < ? ORDER BY created_at"),
		string(schema.TableStatusPending), createdBefore)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list pending tables", err)
	}
	for _, t := range tables {
		if t.Fields, err = r.fieldsFor(ctx, t.ID); err != nil {
			return nil, apperrors.NewDatabaseError("get table fields", err)
		}
	}
	return tables, nil
}

func (r *CatalogRepository) queryTables(ctx context.Context, stmt string, args ...any) ([]*schema.TableDefinition, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tables := make([]*schema.TableDefinition, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *CatalogRepository) fieldsFor(ctx context.Context, tableID string) ([]*schema.FieldDefinition, error) {
	rows, err := r.db.QueryContext(ctx, r.selectFields("WHERE table_id = ? ORDER BY sort_order"), tableID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	fields := make([]*schema.FieldDefinition, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}
