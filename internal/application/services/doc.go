// Package services provides the business logic layer of the record engine.
//
// This package contains:
//   - Table and field definition management with physical migrations (CatalogService)
//   - Type-aware record access against runtime-defined tables (RecordService)
//   - Record view layouts (LayoutService)
//   - Reconciliation of built-in models into the catalog (SchemaSynchronizer)
//   - Drift detection and repair of interrupted table creations (SchemaVerifier)
//
// Services depend on the interfaces in internal/domain/ports and are wired
// together by ServiceManager.
package services
