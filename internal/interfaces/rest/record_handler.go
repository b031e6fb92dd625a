package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendingops/backend/pkg/query"
)

// RecordService defines record access on catalog tables
type RecordService interface {
	ListRecords(ctx context.Context, tableID string) ([]query.Record, error)
	GetRecord(ctx context.Context, tableID, recordID string) (query.Record, error)
	CreateRecord(ctx context.Context, tableID string, payload map[string]any) (query.Record, error)
}

// RecordHandler handles record endpoints of runtime tables
type RecordHandler struct {
	svc RecordService
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(svc RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// ListRecords handles GET /api/tables/:tableId/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		records, err := h.svc.ListRecords(c.Request.Context(), c.Param("tableId"))
		if records == nil && err == nil {
			records = []query.Record{}
		}
		return records, err
	})
}

// GetRecord handles GET /api/tables/:tableId/records/:recordId
func (h *RecordHandler) GetRecord(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		return h.svc.GetRecord(c.Request.Context(), c.Param("tableId"), c.Param("recordId"))
	})
}

// CreateRecord handles POST /api/tables/:tableId/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	payload, ok := BindRecord(c)
	if !ok {
		return
	}

	record, err := h.svc.CreateRecord(c.Request.Context(), c.Param("tableId"), payload)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
