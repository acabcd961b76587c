package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/shopgateway/internal/operations"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// Catalog is the operation registry as seen by the HTTP layer.
// *operations.Registry satisfies it.
type Catalog interface {
	Operations() []operations.OperationInfo
	Invoke(ctx context.Context, name string, args map[string]any) operations.Result
	Resources() []operations.ResourceInfo
	ReadResource(ctx context.Context, uri string) operations.Result
	Prompts() []operations.PromptInfo
	GetPrompt(ctx context.Context, name string, args map[string]string) operations.Result
}

// statusFor maps a failed result onto an HTTP status. The body is always
// the structured result.
func statusFor(res operations.Result) int {
	if !res.IsError {
		return http.StatusOK
	}
	switch res.ErrorKind {
	case errors.KindValidation:
		return http.StatusUnprocessableEntity
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindUnauthorized:
		return http.StatusUnauthorized
	case errors.KindTransport, errors.KindFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bindArguments decodes an optional {"arguments": {...}} body. An empty
// body means no arguments.
func bindArguments(c *gin.Context, into interface{}) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	var req struct {
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return err
	}
	if len(req.Arguments) == 0 || string(req.Arguments) == "null" {
		return nil
	}
	return json.Unmarshal(req.Arguments, into)
}
