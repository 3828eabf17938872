// Package api provides the HTTP client for the folder/file browse service.
package api

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a fetch failed.
type FailureKind int

const (
	// NetworkFailure means the request never produced a response.
	NetworkFailure FailureKind = iota
	// HTTPStatusFailure means the server answered with a non-2xx status.
	HTTPStatusFailure
	// ParseFailure means the body did not match the expected schema.
	ParseFailure
	// CredentialFailure means a private request had no token to send.
	CredentialFailure
)

func (k FailureKind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case HTTPStatusFailure:
		return "http_status"
	case ParseFailure:
		return "parse"
	case CredentialFailure:
		return "credential"
	default:
		return "unknown"
	}
}

// FetchError is returned by every Client fetch. Its Error() text is the
// message shown to the user.
type FetchError struct {
	Kind       FailureKind
	StatusCode int // set for HTTPStatusFailure
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case HTTPStatusFailure:
		return fmt.Sprintf("Error: %d", e.StatusCode)
	case ParseFailure:
		return fmt.Sprintf("Error: invalid response: %v", e.Err)
	default:
		return fmt.Sprintf("Error: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var (
	// ErrMissingBaseURL is returned by NewClient when no base URL is configured.
	ErrMissingBaseURL = errors.New("API base URL is empty")

	// ErrMissingToken is the cause of a CredentialFailure.
	ErrMissingToken = errors.New("no access token configured for private mode")
)

func networkError(err error) *FetchError {
	return &FetchError{Kind: NetworkFailure, Err: err}
}

func statusError(code int) *FetchError {
	return &FetchError{Kind: HTTPStatusFailure, StatusCode: code, Err: fmt.Errorf("unexpected status %d", code)}
}

func parseError(format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: ParseFailure, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the failure kind of err, or false if err is not a FetchError.
func KindOf(err error) (FailureKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsCredentialError reports whether err is a missing-credential failure.
func IsCredentialError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == CredentialFailure
}
