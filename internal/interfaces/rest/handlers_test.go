package rest_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendingops/backend/internal/application/services"
	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/interfaces/rest"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
)

type fixture struct {
	router  *gin.Engine
	schema  *MockSchemaService
	records *MockRecordService
	layouts *MockLayoutService
	sync    *MockSyncService
	verify  *MockVerifyService
	db      *MockPinger
}

func newFixture(exposeTrace bool) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		router:  gin.New(),
		schema:  new(MockSchemaService),
		records: new(MockRecordService),
		layouts: new(MockLayoutService),
		sync:    new(MockSyncService),
		verify:  new(MockVerifyService),
		db:      new(MockPinger),
	}
	rest.RegisterRoutes(f.router, rest.Handlers{
		Schema:  rest.NewSchemaHandler(f.schema),
		Records: rest.NewRecordHandler(f.records),
		Layouts: rest.NewLayoutHandler(f.layouts),
		Admin:   rest.NewAdminHandler(f.sync, f.verify, f.db, bootstrap.Models),
	}, rest.RouteOptions{ExposeTrace: exposeTrace})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSchemaHandler_CreateTable(t *testing.T) {
	const body = `{"name":"Loan Applications","displayName":"Loan Applications","fields":[{"name":"applicant","type":"text","required":true}]}`

	t.Run("Success", func(t *testing.T) {
		f := newFixture(false)
		table := &schema.TableDefinition{ID: "t1", Name: "loan_applications", Label: "Loan Applications"}
		f.schema.On("CreateTable", mock.Anything, mock.MatchedBy(func(req schema.CreateTableRequest) bool {
			return req.Name == "Loan Applications" && len(req.Fields) == 1 && req.Fields[0].Required
		})).Return(table, nil)

		w := f.do(http.MethodPost, "/api/tables", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "loan_applications", resp["name"])
		assert.NotContains(t, resp, "status")
		f.schema.AssertExpectations(t)
	})

	t.Run("Malformed body", func(t *testing.T) {
		f := newFixture(false)
		w := f.do(http.MethodPost, "/api/tables", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
		f.schema.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		f := newFixture(false)
		f.schema.On("CreateTable", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDuplicateNameError("table", "loan_applications"))

		w := f.do(http.MethodPost, "/api/tables", body)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "DUPLICATE_NAME", resp["code"])
		assert.Nil(t, resp["data"])
		assert.Equal(t, resp["message"], resp["error"])
	})

	t.Run("Migration failure carries tool output", func(t *testing.T) {
		f := newFixture(false)
		f.schema.On("CreateTable", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewMigrationFailedError("diff", "Error: column type unknown", errors.New("exit status 1")))

		w := f.do(http.MethodPost, "/api/tables", body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "MIGRATION_FAILED", resp["code"])
		assert.Equal(t, "Error: column type unknown", resp["output"])
		assert.Equal(t, map[string]any{"step": "diff"}, resp["details"])
		assert.NotContains(t, resp, "trace")
	})

	t.Run("Trace in development", func(t *testing.T) {
		f := newFixture(true)
		f.schema.On("CreateTable", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDatabaseError("insert table", errors.New("connection reset")))

		w := f.do(http.MethodPost, "/api/tables", body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, []any{"database error during insert table: connection reset", "connection reset"}, decode(t, w)["trace"])
	})
}

func TestSchemaHandler_Reads(t *testing.T) {
	t.Run("GetTable not found", func(t *testing.T) {
		f := newFixture(false)
		f.schema.On("GetTable", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("table", "missing"))

		w := f.do(http.MethodGet, "/api/tables/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
	})

	t.Run("ListTables", func(t *testing.T) {
		f := newFixture(false)
		f.schema.On("ListTables", mock.Anything).Return([]*schema.TableDefinition{{ID: "t1", Name: "contacts"}}, nil)

		w := f.do(http.MethodGet, "/api/tables", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var tables []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
		require.Len(t, tables, 1)
		assert.Equal(t, "contacts", tables[0]["name"])
	})

	t.Run("AddField", func(t *testing.T) {
		f := newFixture(false)
		f.schema.On("AddField", mock.Anything, "t1", schema.FieldSpec{Name: "notes", Type: schema.FieldTypeTextArea}).
			Return(&schema.FieldDefinition{ID: "f1", Name: "notes"}, nil)

		w := f.do(http.MethodPost, "/api/tables/t1/fields", `{"name":"notes","type":"textarea"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "notes", decode(t, w)["name"])
	})
}

func TestRecordHandler(t *testing.T) {
	t.Run("CreateRecord keeps numbers exact", func(t *testing.T) {
		f := newFixture(false)
		f.records.On("CreateRecord", mock.Anything, "t1", mock.MatchedBy(func(p map[string]any) bool {
			return p["amount"] == json.Number("1500.50") && p["applicant"] == "Ada"
		})).Return(query.Record{"id": "r1", "applicant": "Ada"}, nil)

		w := f.do(http.MethodPost, "/api/tables/t1/records", `{"applicant":"Ada","amount":1500.50}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "r1", decode(t, w)["id"])
		f.records.AssertExpectations(t)
	})

	t.Run("CreateRecord requires an object", func(t *testing.T) {
		f := newFixture(false)
		w := f.do(http.MethodPost, "/api/tables/t1/records", `[1,2]`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.records.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing required fields are listed", func(t *testing.T) {
		f := newFixture(false)
		f.records.On("CreateRecord", mock.Anything, "t1", mock.Anything).
			Return(nil, apperrors.NewMissingFieldsError([]string{"applicant", "amount"}))

		w := f.do(http.MethodPost, "/api/tables/t1/records", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"missingFields": []any{"applicant", "amount"}}, decode(t, w)["details"])
	})

	t.Run("Conflict", func(t *testing.T) {
		f := newFixture(false)
		f.records.On("CreateRecord", mock.Anything, "t1", mock.Anything).
			Return(nil, apperrors.NewConflictError("record", "email", ""))

		w := f.do(http.MethodPost, "/api/tables/t1/records", `{"email":"a@b.c"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decode(t, w)["code"])
	})

	t.Run("ListRecords empty table", func(t *testing.T) {
		f := newFixture(false)
		f.records.On("ListRecords", mock.Anything, "t1").Return(nil, nil)

		w := f.do(http.MethodGet, "/api/tables/t1/records", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("GetRecord", func(t *testing.T) {
		f := newFixture(false)
		f.records.On("GetRecord", mock.Anything, "t1", "r1").Return(query.Record{"id": "r1"}, nil)

		w := f.do(http.MethodGet, "/api/tables/t1/records/r1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"r1"}`, w.Body.String())
	})
}

func TestLayoutHandler(t *testing.T) {
	f := newFixture(false)
	f.layouts.On("CreateLayout", mock.Anything, "t1", mock.MatchedBy(func(req schema.CreateLayoutRequest) bool {
		return req.Name == "underwriting" && req.IsDefault && len(req.Sections) == 1
	})).Return(&schema.TableLayout{ID: "l1", Name: "underwriting"}, nil)
	f.layouts.On("ListLayouts", mock.Anything, "t2").Return(nil, nil)

	w := f.do(http.MethodPost, "/api/tables/t1/layouts", `{"name":"underwriting","isDefault":true,"sections":[{"title":"Applicant"}]}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/tables/t2/layouts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminHandler(t *testing.T) {
	t.Run("Sync with failures", func(t *testing.T) {
		f := newFixture(false)
		f.sync.On("Sync", mock.Anything, bootstrap.Models).Return(&services.SyncReport{
			Updated: []string{"organizations"},
			Errors:  map[string]string{"Broken": "model has no fields"},
		})

		w := f.do(http.MethodPost, "/api/admin/sync", "")

		assert.Equal(t, http.StatusMultiStatus, w.Code)
		assert.Equal(t, map[string]any{"Broken": "model has no fields"}, decode(t, w)["errors"])
	})

	t.Run("Verify only reports", func(t *testing.T) {
		f := newFixture(false)
		f.verify.On("Verify", mock.Anything, false).Return(&services.VerifyReport{Checked: 3}, nil)

		w := f.do(http.MethodGet, "/api/admin/verify", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decode(t, w)["checked"])
	})

	t.Run("Repair", func(t *testing.T) {
		f := newFixture(false)
		f.verify.On("Verify", mock.Anything, true).Return(&services.VerifyReport{}, nil)

		w := f.do(http.MethodPost, "/api/admin/repair", "")

		assert.Equal(t, http.StatusOK, w.Code)
		f.verify.AssertExpectations(t)
	})

	t.Run("Health", func(t *testing.T) {
		f := newFixture(false)
		f.db.On("Ping", mock.Anything).Return(errors.New("dial tcp: refused")).Once()
		f.db.On("Ping", mock.Anything).Return(nil)

		w := f.do(http.MethodGet, "/api/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = f.do(http.MethodGet, "/api/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
