package rest_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lendingops/backend/internal/application/services"
	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/pkg/query"
)

// MockSchemaService is a mock implementation of rest.SchemaService
type MockSchemaService struct {
	mock.Mock
}

func (m *MockSchemaService) CreateTable(ctx context.Context, req schema.CreateTableRequest) (*schema.TableDefinition, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TableDefinition), args.Error(1)
}

func (m *MockSchemaService) GetTable(ctx context.Context, id string) (*schema.TableDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TableDefinition), args.Error(1)
}

func (m *MockSchemaService) ListTables(ctx context.Context) ([]*schema.TableDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.TableDefinition), args.Error(1)
}

func (m *MockSchemaService) AddField(ctx context.Context, tableID string, spec schema.FieldSpec) (*schema.FieldDefinition, error) {
	args := m.Called(ctx, tableID, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.FieldDefinition), args.Error(1)
}

// MockRecordService is a mock implementation of rest.RecordService
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) ListRecords(ctx context.Context, tableID string) ([]query.Record, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]query.Record), args.Error(1)
}

func (m *MockRecordService) GetRecord(ctx context.Context, tableID, recordID string) (query.Record, error) {
	args := m.Called(ctx, tableID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(query.Record), args.Error(1)
}

func (m *MockRecordService) CreateRecord(ctx context.Context, tableID string, payload map[string]any) (query.Record, error) {
	args := m.Called(ctx, tableID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(query.Record), args.Error(1)
}

// MockLayoutService is a mock implementation of rest.LayoutService
type MockLayoutService struct {
	mock.Mock
}

func (m *MockLayoutService) CreateLayout(ctx context.Context, tableID string, req schema.CreateLayoutRequest) (*schema.TableLayout, error) {
	args := m.Called(ctx, tableID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TableLayout), args.Error(1)
}

func (m *MockLayoutService) ListLayouts(ctx context.Context, tableID string) ([]*schema.TableLayout, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.TableLayout), args.Error(1)
}

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context, models []bootstrap.ModelDescriptor) *services.SyncReport {
	return m.Called(ctx, models).Get(0).(*services.SyncReport)
}

type MockVerifyService struct {
	mock.Mock
}

func (m *MockVerifyService) Verify(ctx context.Context, repair bool) (*services.VerifyReport, error) {
	args := m.Called(ctx, repair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerifyReport), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
