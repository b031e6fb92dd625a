package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendingops/backend/internal/domain/schema"
)

// LayoutService defines layout operations
type LayoutService interface {
	CreateLayout(ctx context.Context, tableID string, req schema.CreateLayoutRequest) (*schema.TableLayout, error)
	ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error)
}

// LayoutHandler handles record view layout endpoints
type LayoutHandler struct {
	svc LayoutService
}

// NewLayoutHandler creates a new LayoutHandler
func NewLayoutHandler(svc LayoutService) *LayoutHandler {
	return &LayoutHandler{svc: svc}
}

// ListLayouts handles GET /api/tables/:tableId/layouts
func (h *LayoutHandler) ListLayouts(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		layouts, err := h.svc.ListLayouts(c.Request.Context(), c.Param("tableId"))
		if layouts == nil && err == nil {
			layouts = []*schema.TableLayout{}
		}
		return layouts, err
	})
}

// CreateLayout handles POST /api/tables/:tableId/layouts
func (h *LayoutHandler) CreateLayout(c *gin.Context) {
	var req schema.CreateLayoutRequest
	if !BindJSON(c, &req) {
		return
	}

	layout, err := h.svc.CreateLayout(c.Request.Context(), c.Param("tableId"), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, layout)
}
