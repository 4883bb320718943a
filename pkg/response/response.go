package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request-id middleware fills.
const RequestIDKey = "request_id"

// APIResponse is the envelope of every JSON response. Data and Meta are set on
// success, Error carries field details on failure.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func Success[T any](c *gin.Context, status int, data T, message string, meta any) {
	resp := envelope[T](c, status, http.StatusOK, message)
	resp.Success = true
	resp.Data = data
	resp.Meta = meta
	c.JSON(resp.Status, resp)
}

func Error(c *gin.Context, status int, message string, details any) {
	resp := envelope[any](c, status, http.StatusBadRequest, message)
	resp.Error = details
	c.JSON(resp.Status, resp)
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string, details any) {
	resp := envelope[any](c, status, http.StatusBadRequest, message)
	resp.Error = details
	c.AbortWithStatusJSON(resp.Status, resp)
}

func envelope[T any](c *gin.Context, status, fallback int, message string) APIResponse[T] {
	if status == 0 {
		status = fallback
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(RequestIDKey),
		Message:   message,
	}
}
