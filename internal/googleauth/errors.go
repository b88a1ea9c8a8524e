package googleauth

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the Google OAuth client id, secret or
// redirect URI is missing
var ErrNotConfigured = errors.New("google oauth client is not configured")

// Error codes reported to the browser for upstream failures
const (
	CodeExchangeFailed  = "oauth_exchange_failed"
	CodeInvalidIdentity = "invalid_identity"
)

// UpstreamError is returned when Google rejects the code exchange or hands back
// an identity assertion this service does not accept. Detail is safe to show
// to the client.
type UpstreamError struct {
	Code   string
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func exchangeError(detail string, err error) *UpstreamError {
	return &UpstreamError{Code: CodeExchangeFailed, Detail: detail, Err: err}
}

func identityError(detail string, err error) *UpstreamError {
	return &UpstreamError{Code: CodeInvalidIdentity, Detail: detail, Err: err}
}
