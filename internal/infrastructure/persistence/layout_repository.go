package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/infrastructure/database"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

// LayoutRepository stores table layouts
type LayoutRepository struct {
	db      *sql.DB
	dialect query.Dialect
	tx      *TransactionManager
}

// NewLayoutRepository creates a new LayoutRepository
func NewLayoutRepository(conn *database.Connection) *LayoutRepository {
	return &LayoutRepository{
		db:      conn.DB(),
		dialect: conn.Dialect(),
		tx:      NewTransactionManager(conn.DB()),
	}
}

// InsertLayout stores a layout; a default layout demotes the table's others
func (r *LayoutRepository) InsertLayout(ctx context.Context, l *schema.TableLayout) error {
	sections, err := json.Marshal(l.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal layout sections: %w", err)
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now

	err = r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if l.IsDefault {
			// Concurrent default inserts for one table queue on its catalog row.
			var locked string
			err := tx.QueryRowContext(ctx,
				r.dialect.Rebind(fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", bootstrap.TableDefinitionsTable)),
				l.TableID).Scan(&locked)
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFoundError("table", l.TableID)
			}
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				r.dialect.Rebind(fmt.Sprintf("UPDATE %s SET is_default = ?, updated_at = ? WHERE table_id = ? AND is_default = ?", bootstrap.TableLayoutsTable)),
				false, now, l.TableID, true); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			r.dialect.Rebind(fmt.Sprintf("INSERT INTO %s (id, table_id, name, label, is_default, sections, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", bootstrap.TableLayoutsTable)),
			l.ID, l.TableID, l.Name, l.Label, l.IsDefault, string(sections), l.CreatedAt, l.UpdatedAt)
		return err
	})
	if apperrors.IsNotFound(err) {
		return err
	}
	if err != nil {
		return apperrors.NewDatabaseError("insert layout", err)
	}
	return nil
}

// ListLayouts returns the layouts of a table, default first
func (r *LayoutRepository) ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error) {
	rows, err := r.db.QueryContext(ctx,
		r.dialect.Rebind(fmt.Sprintf("SELECT id, table_id, name, label, is_default, sections, created_at, updated_at FROM %s WHERE table_id = ? ORDER BY is_default DESC, created_at", bootstrap.TableLayoutsTable)),
		tableID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list layouts", err)
	}
	defer func() { _ = rows.Close() }()

	layouts := make([]*schema.TableLayout, 0)
	for rows.Next() {
		var l schema.TableLayout
		var sections sql.NullString
		if err := rows.Scan(&l.ID, &l.TableID, &l.Name, &l.Label, &l.IsDefault, &sections, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, apperrors.NewDatabaseError("scan layout", err)
		}
		l.Sections = make([]*schema.LayoutSection, 0)
		if sections.Valid && sections.String != "" {
			if err := json.Unmarshal([]byte(sections.String), &l.Sections); err != nil {
				return nil, apperrors.NewDatabaseError("decode layout sections", err)
			}
		}
		layouts = append(layouts, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("list layouts", err)
	}
	return layouts, nil
}
