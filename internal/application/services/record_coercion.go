package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lendingops/backend/internal/domain/schema"
	apperrors "github.com/lendingops/backend/pkg/errors"
	"github.com/lendingops/backend/pkg/utils"
)

// coerceValue converts a payload value to the Go type stored for the field.
// Values of types without a rule pass through unchanged.
func coerceValue(f *schema.FieldDefinition, raw any) (any, error) {
	if raw == nil || (isBlank(raw) && f.Type.Storage() != schema.StorageString) {
		return nil, nil
	}
	if s, ok := raw.(string); ok && f.Type.Storage() == schema.StorageString &&
		utf8.RuneCountInString(s) > schema.MaxStringLength {
		return nil, apperrors.NewValidationError(f.Name, fmt.Sprintf("must be at most %d characters", schema.MaxStringLength))
	}

	switch f.Type {
	case schema.FieldTypeNumber:
		n, err := toWholeNumber(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Name, err.Error())
		}
		return n, nil
	case schema.FieldTypeCurrency:
		n, err := utils.ToFloat64(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Name, fmt.Sprintf("%v is not a number", raw))
		}
		return n, nil
	case schema.FieldTypeBoolean:
		return utils.ToBool(raw), nil
	case schema.FieldTypeJSON:
		return toJSONText(f, raw)
	case schema.FieldTypeSelect:
		s := fmt.Sprint(raw)
		if f.Config != nil && len(f.Config.Options) > 0 && !containsString(f.Config.Options, s) {
			return nil, apperrors.NewValidationError(f.Name, fmt.Sprintf("%q is not one of the options", s))
		}
		return s, nil
	default:
		return raw, nil
	}
}

// toWholeNumber accepts integers, integral floats and numeric strings
func toWholeNumber(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%v is not a number", raw)
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return integral(f)
	default:
		f, err := utils.ToFloat64(raw)
		if err != nil {
			return 0, fmt.Errorf("%v is not a number", raw)
		}
		return integral(f)
	}
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

// toJSONText stores JSON values as text. Strings holding valid JSON are kept
// verbatim, other values are encoded.
func toJSONText(f *schema.FieldDefinition, raw any) (string, error) {
	if s, ok := raw.(string); ok && json.Valid([]byte(s)) {
		return s, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", apperrors.NewValidationError(f.Name, "value cannot be encoded as JSON")
	}
	return string(b), nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
