package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform shape of every non-streaming response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func SuccessMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

func Error(c *gin.Context, status int, errMsg, message string) {
	c.JSON(status, Envelope{Success: false, Error: errMsg, Message: message})
}

func AbortError(c *gin.Context, status int, errMsg, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: errMsg, Message: message})
}

func BadRequest(c *gin.Context, errMsg string) {
	Error(c, http.StatusBadRequest, errMsg, "Bad Request")
}

func Unauthorized(c *gin.Context, errMsg string) {
	Error(c, http.StatusUnauthorized, errMsg, "Unauthorized")
}

func Forbidden(c *gin.Context, errMsg string) {
	Error(c, http.StatusForbidden, errMsg, "Forbidden")
}

func NotFound(c *gin.Context, errMsg string) {
	Error(c, http.StatusNotFound, errMsg, "Not Found")
}

func Internal(c *gin.Context, errMsg string) {
	Error(c, http.StatusInternalServerError, errMsg, "Internal Server Error")
}
