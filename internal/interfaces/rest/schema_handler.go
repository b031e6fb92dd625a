package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendingops/backend/internal/domain/schema"
)

// SchemaService defines the catalog operations exposed over HTTP
type SchemaService interface {
	CreateTable(ctx context.Context, req schema.CreateTableRequest) (*schema.TableDefinition, error)
	GetTable(ctx context.Context, id string) (*schema.TableDefinition, error)
	ListTables(ctx context.Context) ([]*schema.TableDefinition, error)
	AddField(ctx context.Context, tableID string, spec schema.FieldSpec) (*schema.FieldDefinition, error)
}

// SchemaHandler handles table definition endpoints
type SchemaHandler struct {
	svc SchemaService
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(svc SchemaService) *SchemaHandler {
	return &SchemaHandler{svc: svc}
}

// ListTables handles GET /api/tables
func (h *SchemaHandler) ListTables(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		return h.svc.ListTables(c.Request.Context())
	})
}

// GetTable handles GET /api/tables/:tableId
func (h *SchemaHandler) GetTable(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		return h.svc.GetTable(c.Request.Context(), c.Param("tableId"))
	})
}

// CreateTable handles POST /api/tables
func (h *SchemaHandler) CreateTable(c *gin.Context) {
	var req schema.CreateTableRequest
	if !BindJSON(c, &req) {
		return
	}

	table, err := h.svc.CreateTable(c.Request.Context(), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// AddField handles POST /api/tables/:tableId/fields
func (h *SchemaHandler) AddField(c *gin.Context) {
	var spec schema.FieldSpec
	if !BindJSON(c, &spec) {
		return
	}

	field, err := h.svc.AddField(c.Request.Context(), c.Param("tableId"), spec)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}
