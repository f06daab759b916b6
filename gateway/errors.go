// Package gateway relays report requests to Azure: the automation webhook that
// starts a report run, the Automation job lookup, and blob download links.
package gateway

import (
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// ErrMissingParameter marks a request the caller must fix (400).
// Any other gateway failure is a downstream problem (500).
var ErrMissingParameter = errors.New("missing parameter")

// Error is a failed downstream call. Message is the client-facing summary,
// Details the underlying cause.
type Error struct {
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(message string, err error) *Error {
	return &Error{Message: message, Details: err.Error(), Err: err}
}

// NewCredential returns the ambient Azure credential (environment, managed
// identity, Azure CLI ...) shared by the Automation and Blob gateways.
func NewCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return cred, nil
}
