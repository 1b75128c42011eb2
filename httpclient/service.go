package httpclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// Service is a request/response service driven through a cooperative
// readiness protocol: callers probe Ready before submitting a request and
// back off while it reports not ready.
type Service interface {
	// Ready reports whether the service can accept a request right now.
	// (false, nil) means not yet; probe again later.
	Ready(ctx context.Context) (bool, error)

	// Do processes one request. Callers must have most recently observed
	// Ready reporting true.
	Do(req *http.Request) (*http.Response, error)
}

// AuthService wraps an inner Service and attaches a Keycloak bearer
// credential to every request passing through it.
//
// Ready reports true only when both the credential handle and the inner
// service agree; while a token fetch is in flight the middleware itself is
// not ready. No request is ever forwarded unstamped. Failures from the two
// layers stay distinguishable: credential failures surface as
// *CredentialError, inner failures as *ServiceError.
type AuthService struct {
	inner  Service
	handle *keycloakauth.Handle
}

// NewAuthService wraps inner with credential stamping from handle.
func NewAuthService(inner Service, handle *keycloakauth.Handle) *AuthService {
	return &AuthService{
		inner:  inner,
		handle: handle.Clone(),
	}
}

// Ready probes the credential handle first, then the inner service.
func (s *AuthService) Ready(ctx context.Context) (bool, error) {
	ready, err := s.handle.Ready(ctx)
	if err != nil {
		return false, &CredentialError{Err: err}
	}
	if !ready {
		return false, nil
	}

	ready, err = s.inner.Ready(ctx)
	if err != nil {
		return false, &ServiceError{Err: err}
	}
	return ready, nil
}

// Do stamps the request with the current credential and forwards it to the
// inner service. The caller's request is cloned, never mutated.
func (s *AuthService) Do(req *http.Request) (*http.Response, error) {
	reqClone := req.Clone(req.Context())
	if err := s.handle.Stamp(reqClone); err != nil {
		return nil, &CredentialError{Err: err}
	}

	resp, err := s.inner.Do(reqClone)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	return resp, nil
}

// ClientService adapts an *http.Client to the Service interface.
// It is always ready.
type ClientService struct {
	Client *http.Client
}

// Ready always reports true: an http.Client has no warm-up phase.
func (s *ClientService) Ready(ctx context.Context) (bool, error) {
	return true, nil
}

// Do sends the request through the underlying client.
func (s *ClientService) Do(req *http.Request) (*http.Response, error) {
	if s.Client == nil {
		return nil, errors.New("httpclient: ClientService has no client")
	}
	return s.Client.Do(req)
}
