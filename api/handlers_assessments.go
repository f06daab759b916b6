package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"matserver/db"
	"matserver/utils"
)

// AssessmentRequest is the body of /users/assessments.
type AssessmentRequest struct {
	Email      string `json:"email"`
	Type       string `json:"type" example:"OneDrive"`
	ReportName string `json:"reportName" example:"OneDrive Usage"`
	Status     string `json:"status" example:"Running"`
	Date       string `json:"date" example:"2024-05-01T12:00:00Z"`
}

// AddAssessmentHandler records an assessment run.
// @Summary      Save an Assessment
// @Description  An assessment with the same type and report name is kept as is; the request still succeeds.
// @Tags         Assessments
// @Accept       json
// @Produce      json
// @Param        assessment body AssessmentRequest true "All fields are required"
// @Success      201  {object}  UserResponse "Assessment saved successfully"
// @Failure      400  {object}  utils.APIError
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/assessments [post]
func AddAssessmentHandler(c *gin.Context, store *db.Store) {
	var req AssessmentRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.AddAssessment(c.Request.Context(), req.Email, req.Type, req.ReportName, req.Status, req.Date)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "Assessment saved successfully", user)
}

// BulkAssessmentsRequest is the body of /users/assessments/bulk. Items are
// kept raw so extra fields survive.
type BulkAssessmentsRequest struct {
	Email       string          `json:"email"`
	Assessments json.RawMessage `json:"assessments" swaggertype:"array,object"`
}

// AddAssessmentsBulkHandler records several assessments at once.
// @Summary      Save Assessments in Bulk
// @Description  Items whose type, reportName, status or date is missing, empty, 0, false or null are skipped, as are duplicates
// @Description  (same type and report name, including within the batch). Other values, and extra fields, are stored as sent.
// @Tags         Assessments
// @Accept       json
// @Produce      json
// @Param        assessments body BulkAssessmentsRequest true "Email and an array of assessments"
// @Success      201  {object}  UserResponse "Assessments saved successfully"
// @Failure      400  {object}  utils.APIError "Email and assessments array are required"
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/assessments/bulk [post]
func AddAssessmentsBulkHandler(c *gin.Context, store *db.Store) {
	var req BulkAssessmentsRequest
	if !bindBody(c, &req) {
		return
	}
	user, err := store.AddAssessmentsBulk(c.Request.Context(), req.Email, req.Assessments)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondUser(c, "Assessments saved successfully", user)
}

// GetAssessmentsHandler lists a user's assessments. Without query parameters
// every assessment is returned in creation order.
// @Summary      List Assessments
// @Description  Optionally filters with content_query, repeated and alternating conditions and "and"/"or",
// @Description  e.g. `?content_query=status equals Completed&content_query=and&content_query=date greaterThan 2024-01-01`.
// @Tags         Assessments
// @Produce      json
// @Param        email         path  string   true  "User email"
// @Param        content_query query []string false "Condition or logical operator" collectionFormat(multi)
// @Param        sort_by       query string   false "id, date, reportName, type or status; stored order when omitted"
// @Param        order         query string   false "asc (default) or desc"
// @Success      200  {object}  AssessmentsResponse
// @Failure      400  {object}  utils.APIError "Invalid content_query, sort_by or order"
// @Failure      404  {object}  utils.APIError "User not found"
// @Router       /users/assessments/{email} [get]
func GetAssessmentsHandler(c *gin.Context, store *db.Store) {
	assessments, err := store.QueryAssessments(c.Request.Context(), c.Param("email"), db.AssessmentQuery{
		ContentQuery: c.QueryArray("content_query"),
		SortBy:       c.Query("sort_by"),
		Order:        c.Query("order"),
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssessmentsResponse{Assessments: assessments})
}

// GetAssessmentHandler returns one assessment.
// @Summary      Get an Assessment
// @Tags         Assessments
// @Produce      json
// @Param        email path string true "User email"
// @Param        id    path int    true "Assessment id"
// @Success      200  {object}  AssessmentResponse
// @Failure      404  {object}  utils.APIError "User or assessment not found"
// @Router       /users/assessments/{email}/{id} [get]
func GetAssessmentHandler(c *gin.Context, store *db.Store) {
	assessment, err := store.GetAssessment(c.Request.Context(), c.Param("email"), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssessmentResponse{Assessment: assessment})
}

// DeleteAssessmentHandler removes one assessment.
// @Summary      Delete an Assessment
// @Tags         Assessments
// @Produce      json
// @Param        email path string true "User email"
// @Param        id    path int    true "Assessment id"
// @Success      200  {object}  utils.APIError "Assessment deleted successfully"
// @Failure      404  {object}  utils.APIError "User or assessment not found"
// @Router       /users/assessments/{email}/{id} [delete]
func DeleteAssessmentHandler(c *gin.Context, store *db.Store) {
	if err := store.DeleteAssessment(c.Request.Context(), c.Param("email"), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.APIError{Message: "Assessment deleted successfully"})
}
