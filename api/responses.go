package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"matserver/db"
	"matserver/gateway"
	"matserver/models"
	"matserver/utils"
)

// UserResponse is returned by every endpoint that creates or changes a record.
type UserResponse struct {
	Message string      `json:"message" example:"Tenant saved successfully"`
	User    models.User `json:"user"`
}

// LoginResponse identifies the logged-in user. No token is issued.
type LoginResponse struct {
	Message string `json:"message" example:"Login successful"`
	Email   string `json:"email" example:"alice@example.com"`
}

// TenantsResponse lists a user's tenants.
type TenantsResponse struct {
	Tenants []models.Tenant `json:"tenants"`
}

// AssessmentsResponse lists a user's assessments.
type AssessmentsResponse struct {
	Assessments []models.Assessment `json:"assessments"`
}

// AssessmentResponse wraps a single assessment.
type AssessmentResponse struct {
	Assessment models.Assessment `json:"assessment"`
}

// respondUser writes a 201 with the (redacted) user.
func respondUser(c *gin.Context, message string, user models.User) {
	c.JSON(http.StatusCreated, UserResponse{Message: message, User: user.Redacted()})
}

// respondStoreError maps a store failure to its status code. Store errors carry
// the client-facing message; anything else is an internal failure.
func respondStoreError(c *gin.Context, err error) {
	var storeErr *db.Error
	if !errors.As(err, &storeErr) {
		utils.GinInternalServerError(c, err)
		return
	}
	switch {
	case errors.Is(err, db.ErrValidation), errors.Is(err, db.ErrConflict):
		utils.GinBadRequest(c, storeErr.Message)
	case errors.Is(err, db.ErrNotFound):
		utils.GinNotFound(c, storeErr.Message)
	case errors.Is(err, db.ErrAuth):
		utils.GinUnauthorized(c, storeErr.Message)
	default:
		utils.GinInternalServerError(c, err)
	}
}

// respondGatewayError writes {error, details}: 400 for caller mistakes, 500 otherwise.
func respondGatewayError(c *gin.Context, err error, fallback string) {
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		utils.GinGatewayError(c, http.StatusInternalServerError, fallback, err.Error())
		return
	}
	if errors.Is(err, gateway.ErrMissingParameter) {
		utils.GinGatewayError(c, http.StatusBadRequest, gwErr.Message, gwErr.Details)
		return
	}
	utils.GinGatewayError(c, http.StatusInternalServerError, gwErr.Message, gwErr.Details)
}

// bindBody decodes the JSON body into req, answering 400 itself on failure.
// An empty body leaves req zeroed so the store reports the missing fields.
func bindBody(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}
