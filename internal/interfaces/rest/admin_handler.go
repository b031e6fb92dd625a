package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendingops/backend/internal/application/services"
	"github.com/lendingops/backend/internal/bootstrap"
)

// SyncService reconciles built-in models into the catalog
type SyncService interface {
	Sync(ctx context.Context, models []bootstrap.ModelDescriptor) *services.SyncReport
}

// VerifyService checks the catalog against the live database
type VerifyService interface {
	Verify(ctx context.Context, repair bool) (*services.VerifyReport, error)
}

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler handles catalog maintenance and health endpoints
type AdminHandler struct {
	sync     SyncService
	verifier VerifyService
	db       Pinger
	models   []bootstrap.ModelDescriptor
}

// NewAdminHandler creates a new AdminHandler syncing the given models
func NewAdminHandler(sync SyncService, verifier VerifyService, db Pinger, models []bootstrap.ModelDescriptor) *AdminHandler {
	return &AdminHandler{sync: sync, verifier: verifier, db: db, models: models}
}

// Sync handles POST /api/admin/sync
func (h *AdminHandler) Sync(c *gin.Context) {
	report := h.sync.Sync(c.Request.Context(), h.models)
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}

// Verify handles GET /api/admin/verify
func (h *AdminHandler) Verify(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		return h.verifier.Verify(c.Request.Context(), false)
	})
}

// Repair handles POST /api/admin/repair. It verifies and repairs stale
// pending tables in one pass.
func (h *AdminHandler) Repair(c *gin.Context) {
	HandleGet(c, func() (any, error) {
		return h.verifier.Verify(c.Request.Context(), true)
	})
}

// Health handles GET /api/health
func (h *AdminHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
