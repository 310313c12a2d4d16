package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	if data == nil {
		data = gin.H{}
	}

	c.JSON(httpStatus, APIResponse{
		Success: true,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondError writes a failure envelope, optionally with error details.
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	if message == "" {
		message = http.StatusText(httpStatus)
	}
	if data == nil {
		data = gin.H{}
	}

	c.JSON(httpStatus, APIResponse{
		Success: false,
		Message: message,
		Code:    httpStatus,
		Data:    data,
	})
}

// RespondUnauthenticated writes the 401 bearer challenge used by all
// API routes that mandate identity.
func RespondUnauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	RespondError(c, http.StatusUnauthorized, "could not validate credentials", nil)
}
