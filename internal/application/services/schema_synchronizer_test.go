package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/schema"
	"github.com/lendingops/backend/internal/logging"
)

var testModels = []bootstrap.ModelDescriptor{
	{
		Name: "LoanApplication",
		Fields: []bootstrap.FieldDescriptor{
			{Name: "id", Type: "String", IsID: true},
			{Name: "amountRequested", Type: "Decimal", IsRequired: true},
			{Name: "termMonths", Type: "Int"},
			{Name: "payload", Type: "Unsupported"},
		},
	},
	{Name: "Migration", Fields: []bootstrap.FieldDescriptor{{Name: "id", Type: "String", IsID: true}}},
	{
		Name:  "Organization",
		Table: "organizations",
		Fields: []bootstrap.FieldDescriptor{
			{Name: "id", Type: "String", IsID: true},
			{Name: "name", Type: "String", IsRequired: true},
		},
	},
	{Name: "Contact", Fields: []bootstrap.FieldDescriptor{{Name: "id", Type: "String", IsID: true}}},
	{Name: "Broken", Fields: []bootstrap.FieldDescriptor{{Name: "id", Type: "String", IsID: true}}},
}

func TestSchemaSynchronizer_Sync(t *testing.T) {
	ctx := context.Background()
	store := new(MockCatalogStore)

	var saved *schema.TableDefinition
	store.On("FindTableByName", ctx, "loanapplication").Return(nil, nil)
	store.On("SaveSystemTable", ctx, mock.MatchedBy(func(t *schema.TableDefinition) bool { return t.Name == "loanapplication" })).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*schema.TableDefinition) }).
		Return(true, nil)

	store.On("FindTableByName", ctx, "organizations").Return(&schema.TableDefinition{Name: "organizations", IsSystem: true}, nil)
	store.On("SaveSystemTable", ctx, mock.MatchedBy(func(t *schema.TableDefinition) bool { return t.Name == "organizations" })).Return(false, nil)

	store.On("FindTableByName", ctx, "contact").Return(&schema.TableDefinition{Name: "contact", IsSystem: false}, nil)

	store.On("FindTableByName", ctx, "broken").Return(nil, errors.New("connection refused"))

	report := NewSchemaSynchronizer(store, logging.Nop()).Sync(ctx, testModels)

	assert.Equal(t, []string{"loanapplication"}, report.Created)
	assert.Equal(t, []string{"organizations"}, report.Updated)
	assert.Equal(t, []string{"Migration", "Contact"}, report.Skipped)
	assert.Contains(t, report.Errors, "Broken")
	assert.False(t, report.OK())

	require.NotNil(t, saved)
	assert.True(t, saved.IsSystem)
	assert.Equal(t, "Loan Application", saved.Label)
	assert.Equal(t, "Loan Application table", saved.Description)
	types := map[string]schema.FieldType{}
	for _, f := range saved.Fields {
		types[f.Name] = f.Type
	}
	assert.Equal(t, map[string]schema.FieldType{
		"id":              schema.FieldTypeText,
		"amountrequested": schema.FieldTypeCurrency,
		"termmonths":      schema.FieldTypeNumber,
		"payload":         schema.FieldTypeText,
	}, types)

	store.AssertNotCalled(t, "SaveSystemTable", ctx, mock.MatchedBy(func(t *schema.TableDefinition) bool { return t.Name == "contact" }))
}

func TestSchemaSynchronizer_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := new(MockCatalogStore)
	store.On("FindTableByName", ctx, mock.Anything).Return(&schema.TableDefinition{IsSystem: true}, nil)
	store.On("SaveSystemTable", ctx, mock.Anything).Return(false, nil)

	sync := NewSchemaSynchronizer(store, logging.Nop())
	first := sync.Sync(ctx, bootstrap.Models)
	second := sync.Sync(ctx, bootstrap.Models)

	assert.True(t, first.OK())
	assert.Equal(t, first, second)
	assert.Len(t, first.Updated, len(bootstrap.Models))
}
