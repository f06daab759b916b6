package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"

	"matserver/config"
)

const (
	msgReportStartFailed = "Failed to start the report generation."
	msgNoJobID           = "Failed to get Job ID from Azure."

	// Webhook responses are tiny; anything larger is not a job receipt.
	maxWebhookResponse = 1 << 20
)

// ReportRequest is the payload the report runbook expects. Field names are
// the runbook's parameter names.
type ReportRequest struct {
	TenantId           string `json:"TenantId"`
	ClientId           string `json:"ClientId"`
	CertificateName    string `json:"CertificateName"`
	StorageAccountName string `json:"StorageAccountName"`
	StorageAccountKey  string `json:"StorageAccountKey"`
	ContainerName      string `json:"ContainerName"`
}

// ReportTrigger posts report requests to the automation webhook.
type ReportTrigger struct {
	webhookURL string
	client     *http.Client
}

// NewReportTrigger builds a trigger for cfg.WebhookURL. TLS verification is
// only skipped when cfg.WebhookInsecureSkipVerify is set.
func NewReportTrigger(cfg *config.Config) *ReportTrigger {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.WebhookInsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	return &ReportTrigger{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Transport: transport, Timeout: cfg.WebhookTimeout},
	}
}

// Execute starts a report run and returns the first job id the webhook
// reports.
func (t *ReportTrigger) Execute(ctx context.Context, req ReportRequest) (string, error) {
	if t.webhookURL == "" {
		return "", &Error{Message: msgReportStartFailed, Details: "report webhook URL is not configured"}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", wrap(msgReportStartFailed, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return "", wrap(msgReportStartFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("INFO: Triggering report runbook for tenant %s", req.TenantId)
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", wrap(msgReportStartFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponse))
	if err != nil {
		return "", wrap(msgReportStartFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{
			Message: msgReportStartFailed,
			Details: fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	jobID := gjson.GetBytes(body, "JobIds.0")
	if !jobID.Exists() || jobID.String() == "" {
		log.Printf("ERROR: Failed to get Job ID from webhook response: %s", body)
		return "", &Error{Message: msgNoJobID, Err: errors.New("response carries no JobIds")}
	}
	log.Printf("INFO: Runbook triggered successfully. Job ID: %s", jobID.String())
	return jobID.String(), nil
}
