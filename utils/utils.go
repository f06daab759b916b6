package utils

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateDashlessUUID creates a new UUID v4 and returns its string representation
// with all dashes removed.
func GenerateDashlessUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// APIError is the body of every store and routing error response.
type APIError struct {
	Message string `json:"message"`
}

// GatewayErrorResponse is the body returned when a downstream Azure call fails.
type GatewayErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InternalErrorResponse is returned for unexpected failures (I/O, decoding).
type InternalErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// GinError sends a JSON error response with a specific status code.
// It logs the error server-side as well.
func GinError(c *gin.Context, statusCode int, message string) {
	log.Printf("ERROR: Request %s %s - Status %d - %s", c.Request.Method, c.Request.URL.Path, statusCode, message)
	c.AbortWithStatusJSON(statusCode, APIError{Message: message})
}

// GinBadRequest sends a 400 Bad Request error response.
func GinBadRequest(c *gin.Context, message string) {
	GinError(c, http.StatusBadRequest, message)
}

// GinUnauthorized sends a 401 Unauthorized error response.
func GinUnauthorized(c *gin.Context, message string) {
	GinError(c, http.StatusUnauthorized, message)
}

// GinNotFound sends a 404 Not Found error response.
func GinNotFound(c *gin.Context, message string) {
	GinError(c, http.StatusNotFound, message)
}

// GinInternalServerError sends a 500 with the generic message and the cause.
func GinInternalServerError(c *gin.Context, cause error) {
	log.Printf("ERROR: Request %s %s - Status 500 - %v", c.Request.Method, c.Request.URL.Path, cause)
	c.AbortWithStatusJSON(http.StatusInternalServerError, InternalErrorResponse{
		Message: "Internal Server Error",
		Error:   cause.Error(),
	})
}

// GinGatewayError sends an {error, details} body with the given status.
func GinGatewayError(c *gin.Context, statusCode int, message, details string) {
	log.Printf("ERROR: Request %s %s - Status %d - %s: %s", c.Request.Method, c.Request.URL.Path, statusCode, message, details)
	c.AbortWithStatusJSON(statusCode, GatewayErrorResponse{Error: message, Details: details})
}
