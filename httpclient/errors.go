package httpclient

import "fmt"

// CredentialError reports a failure in the credential layer: the token fetch
// failed or a request was submitted before any credential was available.
type CredentialError struct {
	Err error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("httpclient: credential error: %v", e.Err)
}

// Unwrap returns the underlying credential failure.
func (e *CredentialError) Unwrap() error {
	return e.Err
}

// ServiceError wraps a failure from the wrapped inner service, passed through
// unchanged but tagged so callers can tell it apart from credential failures.
type ServiceError struct {
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("httpclient: inner service error: %v", e.Err)
}

// Unwrap returns the inner service's error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
