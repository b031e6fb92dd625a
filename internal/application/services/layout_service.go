package services

import (
	"context"

	"github.com/lendingops/backend/internal/domain/ports"
	"github.com/lendingops/backend/internal/domain/schema"
)

// LayoutService manages record view layouts
type LayoutService struct {
	catalog ports.CatalogStore
	layouts ports.LayoutStore
}

// NewLayoutService creates a new LayoutService
func NewLayoutService(catalog ports.CatalogStore, layouts ports.LayoutStore) *LayoutService {
	return &LayoutService{catalog: catalog, layouts: layouts}
}

// CreateLayout validates a layout against its table and stores it
func (s *LayoutService) CreateLayout(ctx context.Context, tableID string, req schema.CreateLayoutRequest) (*schema.TableLayout, error) {
	table, err := s.catalog.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	layout, err := schema.PrepareLayout(table, req)
	if err != nil {
		return nil, err
	}
	if err := s.layouts.InsertLayout(ctx, layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// ListLayouts returns the layouts of an active table
func (s *LayoutService) ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error) {
	if _, err := s.catalog.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	return s.layouts.ListLayouts(ctx, tableID)
}
