package provisioner

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

// ProviderError wraps a failure communicating with or reported by Azure, at
// either the accept stage or the completion stage.
type ProviderError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "azure error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets callers match ProviderError against domain.ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == domain.ErrProvider
}

// newProviderError classifies an Azure SDK error, pulling the HTTP status
// and error code out of the management-plane response when present.
func newProviderError(message string, err error) *ProviderError {
	providerErr := &ProviderError{
		Message: message,
		Cause:   err,
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		providerErr.StatusCode = respErr.StatusCode
		if code := strings.TrimSpace(respErr.ErrorCode); code != "" {
			providerErr.Message = fmt.Sprintf("%s (%s)", message, code)
		}
	}

	return providerErr
}

// isNotFound reports whether err is Azure saying the resource does not exist,
// as opposed to a genuine communication failure.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
