package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matserver/config"
)

type fakeJobGetter struct {
	resp     armautomation.JobClientGetResponse
	err      error
	gotGroup string
	gotAcct  string
	gotJobID string
}

func (f *fakeJobGetter) Get(ctx context.Context, resourceGroupName string, automationAccountName string, jobName string, options *armautomation.JobClientGetOptions) (armautomation.JobClientGetResponse, error) {
	f.gotGroup, f.gotAcct, f.gotJobID = resourceGroupName, automationAccountName, jobName
	return f.resp, f.err
}

func TestJobStatusClient_Status(t *testing.T) {
	fake := &fakeJobGetter{resp: armautomation.JobClientGetResponse{Job: armautomation.Job{
		Properties: &armautomation.JobProperties{Status: to.Ptr(armautomation.JobStatusCompleted)},
	}}}
	client := &JobStatusClient{jobs: fake, resourceGroup: "rg", account: "acct"}

	status, err := client.Status(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Completed", status)
	assert.Equal(t, "rg", fake.gotGroup)
	assert.Equal(t, "acct", fake.gotAcct)
	assert.Equal(t, "job-1", fake.gotJobID)
}

func TestJobStatusClient_Status_Failures(t *testing.T) {
	t.Run("Lookup fails", func(t *testing.T) {
		client := &JobStatusClient{jobs: &fakeJobGetter{err: errors.New("job not found")}}
		_, err := client.Status(context.Background(), "job-1")
		var gwErr *Error
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, msgJobStatusFailed, gwErr.Message)
		assert.Equal(t, "job not found", gwErr.Details)
	})

	t.Run("No status", func(t *testing.T) {
		client := &JobStatusClient{jobs: &fakeJobGetter{}}
		_, err := client.Status(context.Background(), "job-1")
		require.Error(t, err)
	})

	t.Run("Not configured", func(t *testing.T) {
		client := NewJobStatusClient(&config.Config{}, nil)
		_, err := client.Status(context.Background(), "job-1")
		var gwErr *Error
		require.True(t, errors.As(err, &gwErr))
		assert.Contains(t, gwErr.Details, "subscription")
	})

	t.Run("Every failure is a lookup failure", func(t *testing.T) {
		fake := &fakeJobGetter{err: errors.New("job not found")}
		client := &JobStatusClient{jobs: fake, resourceGroup: "rg"}
		_, err := client.Status(context.Background(), "")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMissingParameter))
		assert.Equal(t, "rg", fake.gotGroup, "The lookup is always attempted")
	})
}
