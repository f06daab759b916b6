package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"matserver/config"
)

const (
	msgDownloadLinkFailed = "Failed to generate download link."
	msgDownloadLinkParams = "storageAccountName, containerName, and blobName are required."
)

// sasSigner returns the SAS query string for one blob, valid between start and expiry.
type sasSigner interface {
	Sign(ctx context.Context, serviceURL, container, blob string, start, expiry time.Time) (string, error)
}

// BlobLinker mints read-only, time-limited download URLs for report blobs.
type BlobLinker struct {
	urlFormat string
	validity  time.Duration
	signer    sasSigner
	now       func() time.Time
}

// NewBlobLinker signs links with a user delegation key obtained through cred.
func NewBlobLinker(cfg *config.Config, cred azcore.TokenCredential) *BlobLinker {
	return &BlobLinker{
		urlFormat: cfg.BlobServiceURLFormat,
		validity:  cfg.SASValidity,
		signer:    delegationSigner{cred: cred},
		now:       time.Now,
	}
}

// DownloadLink returns a signed HTTPS URL that allows reading the blob until
// the link expires.
func (l *BlobLinker) DownloadLink(ctx context.Context, account, container, blob string) (string, error) {
	if account == "" || container == "" || blob == "" {
		return "", &Error{Message: msgDownloadLinkParams, Err: ErrMissingParameter}
	}

	serviceURL := l.ServiceURL(account)
	start := l.now().UTC()
	query, err := l.signer.Sign(ctx, serviceURL, container, blob, start, start.Add(l.validity))
	if err != nil {
		return "", wrap(msgDownloadLinkFailed, err)
	}
	return blobURL(serviceURL, container, blob, query), nil
}

// ServiceURL is the blob endpoint of a storage account.
func (l *BlobLinker) ServiceURL(account string) string {
	return fmt.Sprintf(l.urlFormat, account)
}

// blobURL joins the service URL, container and blob path, escaping each
// path segment, and appends the SAS query.
func blobURL(serviceURL, container, blob, query string) string {
	segments := strings.Split(blob, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s?%s",
		strings.TrimRight(serviceURL, "/"), url.PathEscape(container), strings.Join(segments, "/"), query)
}

// delegationSigner asks the storage account for a user delegation key and
// signs a read-only blob SAS with it.
type delegationSigner struct {
	cred azcore.TokenCredential
}

func (s delegationSigner) Sign(ctx context.Context, serviceURL, container, blob string, start, expiry time.Time) (string, error) {
	if s.cred == nil {
		return "", fmt.Errorf("no azure credential available")
	}
	client, err := service.NewClient(serviceURL, s.cred, nil)
	if err != nil {
		return "", fmt.Errorf("create blob service client: %w", err)
	}

	keyInfo := service.KeyInfo{
		Start:  to.Ptr(start.UTC().Format(sas.TimeFormat)),
		Expiry: to.Ptr(expiry.UTC().Format(sas.TimeFormat)),
	}
	udc, err := client.GetUserDelegationCredential(ctx, keyInfo, nil)
	if err != nil {
		return "", fmt.Errorf("get user delegation key: %w", err)
	}

	params, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     start.UTC(),
		ExpiryTime:    expiry.UTC(),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: container,
		BlobName:      blob,
	}.SignWithUserDelegation(udc)
	if err != nil {
		return "", fmt.Errorf("sign blob SAS: %w", err)
	}
	return params.Encode(), nil
}
