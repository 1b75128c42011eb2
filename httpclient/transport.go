package httpclient

import (
	"fmt"
	"net/http"

	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// KeycloakTransport is an http.RoundTripper that automatically adds a
// Keycloak bearer credential to outgoing HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and
// injects the Authorization header before each request. Unlike the
// non-blocking AuthService, RoundTrip waits for the credential to become
// ready, honoring the request context's cancellation and deadline.
type KeycloakTransport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Handle provides the bearer credential.
	Handle *keycloakauth.Handle
}

// RoundTrip implements the http.RoundTripper interface.
// It waits until a valid credential is available, stamps a clone of the
// request, and delegates to the base transport.
func (t *KeycloakTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Handle == nil {
		return nil, fmt.Errorf("httpclient: Handle is nil")
	}

	if err := t.Handle.WaitUntilReady(req.Context()); err != nil {
		return nil, fmt.Errorf("httpclient: failed to get credential: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	if err := t.Handle.Stamp(reqClone); err != nil {
		return nil, fmt.Errorf("httpclient: failed to stamp request: %w", err)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// NewKeycloakTransport creates a new KeycloakTransport with the given handle.
// The base transport defaults to http.DefaultTransport if not specified.
func NewKeycloakTransport(h *keycloakauth.Handle, base http.RoundTripper) *KeycloakTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &KeycloakTransport{
		Base:   base,
		Handle: h,
	}
}
