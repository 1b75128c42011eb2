package keycloakclient

import "fmt"

// TokenEndpointError reports a non-success HTTP status from the token
// endpoint, distinguishing it from transport-level failures. It carries the
// status code and the raw response body.
type TokenEndpointError struct {
	StatusCode   int
	ResponseBody string

	err error
}

// Error implements the error interface.
func (e *TokenEndpointError) Error() string {
	return fmt.Sprintf("keycloakclient: server error when fetching token: status %d - %s", e.StatusCode, e.ResponseBody)
}

// Unwrap returns the underlying retrieval error.
func (e *TokenEndpointError) Unwrap() error {
	return e.err
}
