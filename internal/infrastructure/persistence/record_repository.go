package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/infrastructure/database"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

// RecordRepository runs record statements against runtime-defined tables.
// Every identifier comes from a catalog-built query.Relation.
type RecordRepository struct {
	db      *sql.DB
	dialect query.Dialect
	tx      *TransactionManager
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(conn *database.Connection) *RecordRepository {
	return &RecordRepository{
		db:      conn.DB(),
		dialect: conn.Dialect(),
		tx:      NewTransactionManager(conn.DB()),
	}
}

// List returns every row of the relation, newest first
func (r *RecordRepository) List(ctx context.Context, rel *query.Relation) ([]query.Record, error) {
	b := query.Select(rel)
	if col, ok := rel.Column(schema.ColumnCreatedAt); ok {
		b.OrderBy(col, true)
	}
	q, err := b.Build(r.dialect)
	if err != nil {
		return nil, err
	}
	records, err := r.queryRecords(ctx, r.db, q)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list records", err)
	}
	return records, nil
}

// Get returns the row with the given id, or nil when there is none
func (r *RecordRepository) Get(ctx context.Context, rel *query.Relation, id string) (query.Record, error) {
	record, err := r.getByID(ctx, r.db, rel, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get record", err)
	}
	return record, nil
}

// Insert stores a row and returns it as persisted. PostgreSQL returns the
// row from the INSERT itself; MySQL re-reads it in the same transaction.
func (r *RecordRepository) Insert(ctx context.Context, rel *query.Relation, values map[string]any) (query.Record, error) {
	id, _ := values[schema.ColumnID].(string)
	if id == "" {
		return nil, fmt.Errorf("insert into %s without an id", rel.Name())
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	b := query.Insert(rel).Returning()
	for _, name := range names {
		col, ok := rel.Column(name)
		if !ok {
			return nil, apperrors.NewValidationError(name, fmt.Sprintf("unknown column for table %s", rel.Name()))
		}
		b.Set(col, values[name])
	}
	q, err := b.Build(r.dialect)
	if err != nil {
		return nil, err
	}

	var inserted query.Record
	if r.dialect.SupportsReturning() {
		records, qErr := r.queryRecords(ctx, r.db, q)
		err = qErr
		if err == nil && len(records) > 0 {
			inserted = records[0]
		}
	} else {
		err = r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, q.SQL, q.Params...); err != nil {
				return err
			}
			rec, err := r.getByID(ctx, tx, rel, id)
			inserted = rec
			return err
		})
	}

	if database.IsDuplicateKey(err) {
		return nil, apperrors.NewConflictError("record", "", "")
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert record", err)
	}
	if inserted == nil {
		return nil, apperrors.NewDatabaseError("insert record", fmt.Errorf("inserted row %s not found", id))
	}
	return inserted, nil
}

func (r *RecordRepository) getByID(ctx context.Context, exec Executor, rel *query.Relation, id string) (query.Record, error) {
	idCol, ok := rel.Column(schema.ColumnID)
	if !ok {
		return nil, fmt.Errorf("relation %s has no id column", rel.Name())
	}
	q, err := query.Select(rel).WhereUUID(idCol, id).Build(r.dialect)
	if err != nil {
		return nil, err
	}
	records, err := r.queryRecords(ctx, exec, q)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (r *RecordRepository) queryRecords(ctx context.Context, exec Executor, q query.QueryResult) ([]query.Record, error) {
	rows, err := exec.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return query.ScanRecords(rows)
}
