package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Timestamp    string `json:"timestamp"`
	Path         string `json:"path"`
	ErrorMessage string `json:"error_message"`
}

// Response is the envelope of every reply.
type Response struct {
	StatusCode int          `json:"status_code"`
	IsSuccess  bool         `json:"is_success"`
	Data       any          `json:"data,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// OK sends a 200 OK response
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{StatusCode: http.StatusOK, IsSuccess: true, Data: data})
}

// Error sends an error response
func Error(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		StatusCode: statusCode,
		Error: &ErrorDetail{
			Timestamp:    time.Now().Format(time.RFC3339),
			Path:         c.Request.URL.Path,
			ErrorMessage: message,
		},
	})
}
