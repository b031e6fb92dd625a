package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/pkg/query"
)

type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) InsertPendingTable(ctx context.Context, t *schema.TableDefinition) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockCatalogStore) ActivateTable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogStore) DeletePendingTable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogStore) GetTable(ctx context.Context, id string) (*schema.TableDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TableDefinition), args.Error(1)
}

func (m *MockCatalogStore) FindTableByName(ctx context.Context, name string) (*schema.TableDefinition, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TableDefinition), args.Error(1)
}

func (m *MockCatalogStore) ListTables(ctx context.Context) ([]*schema.TableDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.TableDefinition), args.Error(1)
}

func (m *MockCatalogStore) ListPendingTables(ctx context.Context, createdBefore time.Time) ([]*schema.TableDefinition, error) {
	args := m.Called(ctx, createdBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.TableDefinition), args.Error(1)
}

func (m *MockCatalogStore) InsertField(ctx context.Context, f *schema.FieldDefinition) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockCatalogStore) SaveSystemTable(ctx context.Context, t *schema.TableDefinition) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) CreateTable(ctx context.Context, t *schema.TableDefinition) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockMigrator) AddColumn(ctx context.Context, t *schema.TableDefinition, field *schema.FieldDefinition) error {
	return m.Called(ctx, t, field).Error(0)
}

func (m *MockMigrator) DeclaredTables() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) List(ctx context.Context, rel *query.Relation) ([]query.Record, error) {
	args := m.Called(ctx, rel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]query.Record), args.Error(1)
}

func (m *MockRecordStore) Insert(ctx context.Context, rel *query.Relation, values map[string]any) (query.Record, error) {
	args := m.Called(ctx, rel, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(query.Record), args.Error(1)
}

func (m *MockRecordStore) Get(ctx context.Context, rel *query.Relation, id string) (query.Record, error) {
	args := m.Called(ctx, rel, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(query.Record), args.Error(1)
}

type MockLayoutStore struct {
	mock.Mock
}

func (m *MockLayoutStore) InsertLayout(ctx context.Context, l *schema.TableLayout) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLayoutStore) ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.TableLayout), args.Error(1)
}

type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) TableColumns(ctx context.Context, table string) ([]string, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
