package response

import "github.com/gin-gonic/gin"

const (
	CodeOK              = 0
	CodeBadRequest      = 40000
	CodeUnsupportedFile = 40001
	CodeFileTooLarge    = 40002
	CodeMalformedReport = 42201
	CodeTooManyRequests = 42900
	CodeInternalServer  = 50000
)

type APIResponse struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:      CodeOK,
		Message:   "ok",
		RequestID: c.GetString(RequestIDKey),
		Data:      data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// RequestIDKey is the gin context key the request id middleware writes to.
const RequestIDKey = "request_id"
