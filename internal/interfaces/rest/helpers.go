package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lendingops/backend/pkg/errors"
)

// ContextKeyTrace marks requests whose error responses carry the cause chain
const ContextKeyTrace = "errorTrace"

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	resp := errors.ToResponse(err, c.GetBool(ContextKeyTrace))
	code := errors.GetHTTPStatus(err)

	if code >= 500 {
		zap.S().Errorw("❌ Request failed",
			"status", code, "method", c.Request.Method, "path", c.Request.URL.Path, "error", resp.Message)
	}

	body := gin.H{
		"error":   resp.Message, // Legacy
		"message": resp.Message,
		"code":    resp.Code,
		"data":    nil,
	}
	if resp.Details != nil {
		body["details"] = resp.Details
	}
	if resp.Output != "" {
		body["output"] = resp.Output
	}
	if resp.Trace != nil {
		body["trace"] = resp.Trace
	}
	c.JSON(code, body)
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// BindRecord decodes a record payload. Numbers are kept as json.Number so
// large integers survive until field coercion.
func BindRecord(c *gin.Context) (map[string]any, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		RespondAppError(c, errors.NewValidationError("body", "record body must be a JSON object"))
		return nil, false
	}
	if payload == nil {
		RespondAppError(c, errors.NewValidationError("body", "record body must be a JSON object"))
		return nil, false
	}
	return payload, true
}

// HandleGet executes a read action and writes its result as the response body
func HandleGet(c *gin.Context, action func() (any, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
