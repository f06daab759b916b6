package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"

	"matserver/config"
)

const msgJobStatusFailed = "Failed to get job status."

// jobGetter is the part of armautomation.JobClient the status lookup needs.
type jobGetter interface {
	Get(ctx context.Context, resourceGroupName string, automationAccountName string, jobName string, options *armautomation.JobClientGetOptions) (armautomation.JobClientGetResponse, error)
}

// JobStatusClient looks up Automation job status.
type JobStatusClient struct {
	jobs          jobGetter
	resourceGroup string
	account       string
	initErr       error
}

// NewJobStatusClient builds a client for the configured automation account.
// A missing subscription or credential is reported on every lookup rather
// than at startup so the rest of the service still runs.
func NewJobStatusClient(cfg *config.Config, cred azcore.TokenCredential) *JobStatusClient {
	c := &JobStatusClient{resourceGroup: cfg.AzureResourceGroup, account: cfg.AzureAutomationAccount}
	switch {
	case cfg.AzureSubscriptionID == "":
		c.initErr = errors.New("azure subscription id is not configured")
	case cred == nil:
		c.initErr = errors.New("no azure credential available")
	default:
		jobs, err := armautomation.NewJobClient(cfg.AzureSubscriptionID, cred, nil)
		if err != nil {
			c.initErr = fmt.Errorf("create automation job client: %w", err)
		} else {
			c.jobs = jobs
		}
	}
	if c.initErr != nil {
		log.Printf("WARN: Job status lookups disabled: %v", c.initErr)
	}
	return c
}

// Status returns the job's status as Azure Automation reports it
// (e.g. "Running", "Completed", "Failed").
func (c *JobStatusClient) Status(ctx context.Context, jobID string) (string, error) {
	if c.initErr != nil {
		return "", wrap(msgJobStatusFailed, c.initErr)
	}

	resp, err := c.jobs.Get(ctx, c.resourceGroup, c.account, jobID, nil)
	if err != nil {
		return "", wrap(msgJobStatusFailed, err)
	}
	if resp.Properties == nil || resp.Properties.Status == nil {
		return "", &Error{Message: msgJobStatusFailed, Details: "job has no status"}
	}
	return string(*resp.Properties.Status), nil
}
