package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a table, record or layout that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid input. Fields lists every offending
// field when more than one is involved (e.g. missing required values).
type ValidationError struct {
	Field   string
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation error on fields [%s]: %s", strings.Join(e.Fields, ", "), e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

const missingFieldsMessage = "missing required fields"

// NewMissingFieldsError reports required fields absent from a payload
func NewMissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Fields: fields, Message: missingFieldsMessage}
}

// DuplicateNameError is returned when a table or field physical name collides
// with an existing one.
type DuplicateNameError struct {
	Resource string
	Name     string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Resource, e.Name)
}

func (e *DuplicateNameError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *DuplicateNameError) Code() string {
	return "DUPLICATE_NAME"
}

// NewDuplicateNameError creates a new DuplicateNameError
func NewDuplicateNameError(resource, name string) *DuplicateNameError {
	return &DuplicateNameError{Resource: resource, Name: name}
}

// MigrationFailedError carries the failing tool step and its raw output
type MigrationFailedError struct {
	Step   string
	Output string
	Cause  error
}

func (e *MigrationFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("migration failed at step %s: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("migration failed at step %s", e.Step)
}

func (e *MigrationFailedError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *MigrationFailedError) Code() string {
	return "MIGRATION_FAILED"
}

func (e *MigrationFailedError) Unwrap() error {
	return e.Cause
}

// NewMigrationFailedError creates a new MigrationFailedError
func NewMigrationFailedError(step, output string, cause error) *MigrationFailedError {
	return &MigrationFailedError{Step: step, Output: output, Cause: cause}
}

// DatabaseError wraps a failure reported by the database driver
type DatabaseError struct {
	Op    string
	Cause error
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database error during %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("database error during %s", e.Op)
}

func (e *DatabaseError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *DatabaseError) Code() string {
	return "DATABASE_ERROR"
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(op string, cause error) *DatabaseError {
	return &DatabaseError{Op: op, Cause: cause}
}

// ConflictError represents a record that violates a unique constraint
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	switch {
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	case e.Field != "":
		return fmt.Sprintf("%s conflicts with an existing value of %s", e.Resource, e.Field)
	default:
		return fmt.Sprintf("%s already exists", e.Resource)
	}
}

func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return "CONFLICT"
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// PermissionError represents insufficient permissions
type PermissionError struct {
	Action   string
	Resource string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s", e.Action, e.Resource)
}

func (e *PermissionError) HTTPStatus() int {
	return http.StatusForbidden
}

func (e *PermissionError) Code() string {
	return "PERMISSION_DENIED"
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(action, resource string) *PermissionError {
	return &PermissionError{Action: action, Resource: resource}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// IsDuplicateName checks if an error is a DuplicateNameError
func IsDuplicateName(err error) bool {
	var dup *DuplicateNameError
	return errors.As(err, &dup)
}

// IsMigrationFailed checks if an error is a MigrationFailedError
func IsMigrationFailed(err error) bool {
	var mig *MigrationFailedError
	return errors.As(err, &mig)
}

// IsDatabase checks if an error is a DatabaseError
func IsDatabase(err error) bool {
	var db *DatabaseError
	return errors.As(err, &db)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// Trace returns the messages of the wrapped error chain, outermost first
func Trace(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details any      `json:"details,omitempty"`
	Output  string   `json:"output,omitempty"`
	Trace   []string `json:"trace,omitempty"`
}

// ToResponse converts an error to an ErrorResponse. The wrapped cause chain is
// only included when withTrace is set.
func ToResponse(err error, withTrace bool) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}

	var validation *ValidationError
	if errors.As(err, &validation) && len(validation.Fields) > 0 {
		key := "fields"
		if validation.Message == missingFieldsMessage {
			key = "missingFields"
		}
		resp.Details = map[string]any{key: validation.Fields}
	}

	var mig *MigrationFailedError
	if errors.As(err, &mig) {
		resp.Details = map[string]any{"step": mig.Step}
		resp.Output = mig.Output
	}

	if withTrace {
		resp.Trace = Trace(err)
	}
	return resp
}
