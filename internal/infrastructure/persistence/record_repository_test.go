package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendingops/backend/internal/infrastructure/database"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

const recordID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func newRecordRepo(t *testing.T, d query.Dialect) (*RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecordRepository(database.NewConnection(db, d)), mock
}

func contactsRelation(t *testing.T) *query.Relation {
	t.Helper()
	rel, err := query.NewRelation("contacts", []string{"id", "name", "email", "created_at", "updated_at"})
	require.NoError(t, err)
	return rel
}

func TestRecordRepository_List(t *testing.T) {
	repo, mock := newRecordRepo(t, query.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `contacts` ORDER BY `created_at` DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(recordID, []byte("Ada")).
			AddRow("other", "Grace"))

	records, err := repo.List(context.Background(), contactsRelation(t))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ada", records[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Get(t *testing.T) {
	t.Run("mysql casts the bound id", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.MySQL)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `contacts` WHERE `id` = CAST(? AS CHAR(36))")).
			WithArgs(recordID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(recordID, "Ada"))

		rec, err := repo.Get(context.Background(), contactsRelation(t), recordID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", rec["name"])
	})

	t.Run("postgres casts the bound id", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.Postgres)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contacts" WHERE "id" = $1::uuid`)).
			WithArgs(recordID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rec, err := repo.Get(context.Background(), contactsRelation(t), recordID)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestRecordRepository_Insert(t *testing.T) {
	values := map[string]any{"id": recordID, "name": "Ada", "email": "ada@example.com"}
	now := time.Now()

	t.Run("mysql re-reads the row in the same transaction", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.MySQL)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `contacts` (`email`, `id`, `name`) VALUES (?, ?, ?)")).
			WithArgs("ada@example.com", recordID, "Ada").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `contacts` WHERE `id` = CAST(? AS CHAR(36))")).
			WithArgs(recordID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
				AddRow(recordID, "Ada", "ada@example.com", now, now))
		mock.ExpectCommit()

		rec, err := repo.Insert(context.Background(), contactsRelation(t), values)
		require.NoError(t, err)
		assert.Equal(t, now, rec["created_at"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres uses RETURNING", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.Postgres)

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "contacts" ("email", "id", "name") VALUES ($1, $2, $3) RETURNING *`)).
			WithArgs("ada@example.com", recordID, "Ada").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(recordID, "Ada", "ada@example.com"))

		rec, err := repo.Insert(context.Background(), contactsRelation(t), values)
		require.NoError(t, err)
		assert.Equal(t, recordID, rec["id"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.MySQL)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `contacts`")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()

		_, err := repo.Insert(context.Background(), contactsRelation(t), values)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("postgres unique violation is a conflict", func(t *testing.T) {
		repo, mock := newRecordRepo(t, query.Postgres)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "contacts"`)).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Insert(context.Background(), contactsRelation(t), values)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown column", func(t *testing.T) {
		repo, _ := newRecordRepo(t, query.MySQL)
		_, err := repo.Insert(context.Background(), contactsRelation(t), map[string]any{"id": recordID, "nickname": "x"})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSchemaInspector_TableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	inspector := NewSchemaInspector(database.NewConnection(db, query.MySQL))

	mock.ExpectQuery(regexp.QuoteMeta("FROM INFORMATION_SCHEMA.COLUMNS")).
		WithArgs("contacts").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id").AddRow("name").AddRow("created_at"))

	cols, err := inspector.TableColumns(context.Background(), "contacts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "created_at"}, cols)
}
