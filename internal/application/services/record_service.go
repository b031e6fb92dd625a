package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/domain/ports"
	"github.com/lendingops/backend/internal/domain/schema"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/query"
	"github.com/lendingops/backend/pkg/utils"
)

// RecordService performs type-aware record access against catalog tables
type RecordService struct {
	catalog ports.CatalogStore
	records ports.RecordStore
	eval    ports.ExpressionEvaluator
	log     *zap.SugaredLogger
}

// NewRecordService creates a new RecordService
func NewRecordService(catalog ports.CatalogStore, records ports.RecordStore, eval ports.ExpressionEvaluator, log *zap.SugaredLogger) *RecordService {
	return &RecordService{catalog: catalog, records: records, eval: eval, log: log}
}

func (s *RecordService) resolve(ctx context.Context, tableID string) (*schema.TableDefinition, *query.Relation, error) {
	table, err := s.catalog.GetTable(ctx, tableID)
	if err != nil {
		return nil, nil, err
	}
	if table.IsSystem && bootstrap.IsCatalogRelation(table.Name) {
		return nil, nil, apperrors.NewPermissionError("access records of", table.Name)
	}
	rel, err := table.Relation()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("table", err.Error())
	}
	return table, rel, nil
}

// ListRecords returns every row of a table
func (s *RecordService) ListRecords(ctx context.Context, tableID string) ([]query.Record, error) {
	_, rel, err := s.resolve(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, rel)
}

// GetRecord returns one row by id
func (s *RecordService) GetRecord(ctx context.Context, tableID, recordID string) (query.Record, error) {
	recordID, ok := utils.CanonicalUUID(recordID)
	if !ok {
		return nil, apperrors.NewValidationError(schema.ColumnID, "record id must be a UUID")
	}
	_, rel, err := s.resolve(ctx, tableID)
	if err != nil {
		return nil, err
	}
	record, err := s.records.Get(ctx, rel, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFoundError("record", recordID)
	}
	return record, nil
}

// CreateRecord validates, coerces and stores a payload, returning the row as
// persisted. Every missing required field is reported at once.
func (s *RecordService) CreateRecord(ctx context.Context, tableID string, payload map[string]any) (query.Record, error) {
	table, rel, err := s.resolve(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if err := checkUnknownFields(table, payload); err != nil {
		return nil, err
	}
	if missing := missingRequired(table, payload); len(missing) > 0 {
		return nil, apperrors.NewMissingFieldsError(missing)
	}

	values := make(map[string]any, len(table.Fields))
	for _, f := range table.Fields {
		if f.Type == schema.FieldTypeFormula || f.Name == schema.ColumnID {
			continue
		}
		raw, present := payload[f.Name]
		if !present {
			continue
		}
		v, err := coerceValue(f, raw)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}

	id, err := recordID(payload[schema.ColumnID])
	if err != nil {
		return nil, err
	}
	values[schema.ColumnID] = id

	if err := s.computeFormulas(table, values); err != nil {
		return nil, err
	}
	if err := s.runValidations(table, values); err != nil {
		return nil, err
	}

	record, err := s.records.Insert(ctx, rel, values)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.NewConflictError("record", uniqueFieldNames(table), "")
		}
		return nil, err
	}
	s.log.Debugw("✅ Record created", "table", table.Name, "id", id)
	return record, nil
}

func checkUnknownFields(table *schema.TableDefinition, payload map[string]any) error {
	var unknown []string
	for name := range payload {
		if _, ok := table.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &apperrors.ValidationError{Fields: unknown, Message: "unknown fields"}
}

// missingRequired lists required fields whose value is absent, null or a
// blank string. id is generated and formulas are computed, so both are exempt,
// as are fields the database fills from a default.
func missingRequired(table *schema.TableDefinition, payload map[string]any) []string {
	var missing []string
	for _, f := range table.Fields {
		if !f.Required || f.Name == schema.ColumnID || f.Type == schema.FieldTypeFormula {
			continue
		}
		v, present := payload[f.Name]
		if present && !isBlank(v) {
			continue
		}
		if !present && f.DefaultValue != nil {
			continue
		}
		missing = append(missing, f.Name)
	}
	return missing
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func recordID(raw any) (string, error) {
	if isBlank(raw) {
		return utils.GenerateID(), nil
	}
	s, _ := raw.(string)
	id, ok := utils.CanonicalUUID(s)
	if !ok {
		return "", apperrors.NewValidationError(schema.ColumnID, "id must be a UUID")
	}
	return id, nil
}

func (s *RecordService) computeFormulas(table *schema.TableDefinition, values map[string]any) error {
	for _, f := range table.Fields {
		if f.Type != schema.FieldTypeFormula || f.Config == nil {
			continue
		}
		result, err := s.eval.Evaluate(f.Config.Formula, recordEnv(values))
		if err != nil {
			return apperrors.NewValidationError(f.Name, "formula evaluation failed: "+err.Error())
		}
		if result != nil {
			result = fmt.Sprint(result)
		}
		values[f.Name] = result
	}
	return nil
}

func (s *RecordService) runValidations(table *schema.TableDefinition, values map[string]any) error {
	for _, f := range table.Fields {
		if f.Validation == "" {
			continue
		}
		v, present := values[f.Name]
		if !present || v == nil {
			continue
		}
		env := recordEnv(values)
		env["value"] = v
		ok, err := s.eval.EvaluateBool(f.Validation, env)
		if err != nil {
			return apperrors.NewValidationError(f.Name, "validation rule could not be evaluated: "+err.Error())
		}
		if !ok {
			return apperrors.NewValidationError(f.Name, fmt.Sprintf("value does not satisfy rule %q", f.Validation))
		}
	}
	return nil
}

func recordEnv(values map[string]any) map[string]any {
	record := make(map[string]any, len(values))
	for k, v := range values {
		record[k] = v
	}
	return map[string]any{"record": record}
}

func uniqueFieldNames(table *schema.TableDefinition) string {
	var names []string
	for _, f := range table.Fields {
		if f.Unique && f.Name != schema.ColumnID {
			names = append(names, f.Name)
		}
	}
	return strings.Join(names, ", ")
}
