package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"matserver/gateway"
)

// ReportRunner starts a report run and returns its job id.
type ReportRunner interface {
	Execute(ctx context.Context, req gateway.ReportRequest) (string, error)
}

// JobStatusGetter reports the status of a report job.
type JobStatusGetter interface {
	Status(ctx context.Context, jobID string) (string, error)
}

// DownloadLinker mints a time-limited read URL for a report blob.
type DownloadLinker interface {
	DownloadLink(ctx context.Context, account, container, blob string) (string, error)
}

// Gateways bundles the downstream Azure collaborators.
type Gateways struct {
	Reports ReportRunner
	Jobs    JobStatusGetter
	Blobs   DownloadLinker
}

// ExecuteReportResponse carries the started job's id.
type ExecuteReportResponse struct {
	JobID string `json:"jobId" example:"5c7f6b0e-1234-4c1e-9a7b-2f0e0f6d1a2b"`
}

// ReportStatusResponse carries a job's status.
type ReportStatusResponse struct {
	Status string `json:"status" example:"Completed"`
}

// DownloadLinkRequest is the body of /api/get-download-link.
type DownloadLinkRequest struct {
	StorageAccountName string `json:"storageAccountName"`
	ContainerName      string `json:"containerName"`
	BlobName           string `json:"blobName"`
}

// DownloadLinkResponse carries the signed URL.
type DownloadLinkResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// ExecuteReportHandler triggers the report runbook.
// @Summary      Run a Report
// @Description  Forwards the parameters to the automation webhook and returns the first job id it reports.
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        report body gateway.ReportRequest true "Runbook parameters"
// @Success      200  {object}  ExecuteReportResponse
// @Failure      500  {object}  utils.GatewayErrorResponse
// @Router       /api/execute-report [post]
func ExecuteReportHandler(c *gin.Context, reports ReportRunner) {
	var req gateway.ReportRequest
	if !bindBody(c, &req) {
		return
	}
	jobID, err := reports.Execute(c.Request.Context(), req)
	if err != nil {
		respondGatewayError(c, err, "Failed to start the report generation.")
		return
	}
	c.JSON(http.StatusOK, ExecuteReportResponse{JobID: jobID})
}

// ReportStatusHandler looks up a report job.
// @Summary      Get Report Status
// @Tags         Reports
// @Produce      json
// @Param        jobId path string true "Job id returned by /api/execute-report"
// @Success      200  {object}  ReportStatusResponse
// @Failure      500  {object}  utils.GatewayErrorResponse
// @Router       /api/report-status/{jobId} [get]
func ReportStatusHandler(c *gin.Context, jobs JobStatusGetter) {
	status, err := jobs.Status(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondGatewayError(c, err, "Failed to get job status.")
		return
	}
	c.JSON(http.StatusOK, ReportStatusResponse{Status: status})
}

// DownloadLinkHandler returns a signed, read-only URL for a report file.
// @Summary      Get a Download Link
// @Description  The link is read-only and expires after the configured validity (one hour by default).
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Param        blob body DownloadLinkRequest true "Storage account, container and blob"
// @Success      200  {object}  DownloadLinkResponse
// @Failure      400  {object}  utils.GatewayErrorResponse
// @Failure      500  {object}  utils.GatewayErrorResponse
// @Router       /api/get-download-link [post]
func DownloadLinkHandler(c *gin.Context, blobs DownloadLinker) {
	var req DownloadLinkRequest
	if !bindBody(c, &req) {
		return
	}
	link, err := blobs.DownloadLink(c.Request.Context(), req.StorageAccountName, req.ContainerName, req.BlobName)
	if err != nil {
		respondGatewayError(c, err, "Failed to generate download link.")
		return
	}
	c.JSON(http.StatusOK, DownloadLinkResponse{DownloadURL: link})
}
