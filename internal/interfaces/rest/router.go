package rest

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every handler mounted under /api
type Handlers struct {
	Schema  *SchemaHandler
	Records *RecordHandler
	Layouts *LayoutHandler
	Admin   *AdminHandler
}

// RouteOptions carries the middleware and switches applied to the routes
type RouteOptions struct {
	RequireAuth  gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
	// ExposeTrace adds the wrapped cause chain to error responses
	ExposeTrace bool
}

func passThrough(c *gin.Context) { c.Next() }

// RegisterRoutes mounts the API on the router. Reads need an authenticated
// caller; schema changes and maintenance need an administrator.
func RegisterRoutes(router gin.IRouter, h Handlers, opts RouteOptions) {
	requireAuth := opts.RequireAuth
	if requireAuth == nil {
		requireAuth = passThrough
	}
	requireAdmin := opts.RequireAdmin
	if requireAdmin == nil {
		requireAdmin = passThrough
	}

	api := router.Group("/api")
	if opts.ExposeTrace {
		api.Use(func(c *gin.Context) {
			c.Set(ContextKeyTrace, true)
			c.Next()
		})
	}

	api.GET("/health", h.Admin.Health)

	tables := api.Group("/tables")
	tables.Use(requireAuth)
	{
		tables.GET("", h.Schema.ListTables)
		tables.GET("/:tableId", h.Schema.GetTable)
		tables.POST("", requireAdmin, h.Schema.CreateTable)
		tables.POST("/:tableId/fields", requireAdmin, h.Schema.AddField)

		tables.GET("/:tableId/records", h.Records.ListRecords)
		tables.POST("/:tableId/records", h.Records.CreateRecord)
		tables.GET("/:tableId/records/:recordId", h.Records.GetRecord)

		tables.GET("/:tableId/layouts", h.Layouts.ListLayouts)
		tables.POST("/:tableId/layouts", requireAdmin, h.Layouts.CreateLayout)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, requireAdmin)
	{
		admin.POST("/sync", h.Admin.Sync)
		admin.GET("/verify", h.Admin.Verify)
		admin.POST("/repair", h.Admin.Repair)
	}
}
