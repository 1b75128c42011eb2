package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harscoet/go-keycloakauth/credential"
	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// staticSource is a TokenSource returning a fixed credential or error.
type staticSource struct {
	mu    sync.Mutex
	cred  *credential.Credential
	err   error
	calls int
}

func (s *staticSource) FetchToken(ctx context.Context) (*credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.cred, s.err
}

// recordingService is an inner Service capturing the requests it receives.
type recordingService struct {
	mu       sync.Mutex
	requests []*http.Request
	ready    bool
	readyErr error
	doErr    error
}

func (s *recordingService) Ready(ctx context.Context) (bool, error) {
	return s.ready, s.readyErr
}

func (s *recordingService) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.doErr != nil {
		return nil, s.doErr
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("ok")),
		Request:    req,
	}, nil
}

func newReadyHandle(tb testing.TB) *keycloakauth.Handle {
	tb.Helper()

	h := keycloakauth.New(&staticSource{
		cred: credential.New("Bearer", "abc123", time.Hour),
	})
	if err := h.WaitUntilReady(context.Background()); err != nil {
		tb.Fatalf("handle did not become ready: %v", err)
	}
	return h
}

func probeUntilReady(tb testing.TB, svc Service) error {
	tb.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		ready, err := svc.Ready(context.Background())
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			tb.Fatal("service did not become ready")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAuthServiceStampsRequests(t *testing.T) {
	inner := &recordingService{ready: true}
	svc := NewAuthService(inner, newReadyHandle(t))

	if err := probeUntilReady(t, svc); err != nil {
		t.Fatalf("unexpected readiness error: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := svc.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if len(inner.requests) != 1 {
		t.Fatalf("inner received %d requests, want 1", len(inner.requests))
	}
	if got, want := inner.requests[0].Header.Get("Authorization"), "Bearer abc123"; got != want {
		t.Errorf("Authorization = %q, want %q", got, want)
	}
	// The caller's request is cloned, never mutated.
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("original request was mutated: Authorization = %q", got)
	}
}

func TestAuthServiceReadyRequiresBothLayers(t *testing.T) {
	inner := &recordingService{ready: false}
	svc := NewAuthService(inner, newReadyHandle(t))

	ready, err := svc.Ready(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ready {
		t.Error("middleware reported ready while the inner service is not")
	}

	inner.ready = true
	ready, err = svc.Ready(context.Background())
	if err != nil || !ready {
		t.Errorf("Ready = (%v, %v), want (true, nil)", ready, err)
	}
}

func TestAuthServiceCredentialErrorTagged(t *testing.T) {
	fetchErr := errors.New("keycloak unreachable")
	svc := NewAuthService(&recordingService{ready: true}, keycloakauth.New(&staticSource{err: fetchErr}))

	err := probeUntilReady(t, svc)
	if err == nil {
		t.Fatal("expected credential failure")
	}

	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("error = %v, want *CredentialError", err)
	}
	if !errors.Is(err, fetchErr) {
		t.Errorf("error %v does not wrap the fetch failure", err)
	}
}

func TestAuthServiceInnerReadyErrorTagged(t *testing.T) {
	innerErr := errors.New("backend down")
	inner := &recordingService{readyErr: innerErr}
	svc := NewAuthService(inner, newReadyHandle(t))

	_, err := svc.Ready(context.Background())

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("error %v does not wrap the inner failure", err)
	}
}

func TestAuthServiceInnerDoErrorTagged(t *testing.T) {
	innerErr := errors.New("connection refused")
	inner := &recordingService{ready: true, doErr: innerErr}
	svc := NewAuthService(inner, newReadyHandle(t))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	_, err = svc.Do(req)

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("error %v does not wrap the inner failure", err)
	}
}

func TestAuthServiceDoBeforeReady(t *testing.T) {
	// No readiness probe has succeeded, so no credential exists and the
	// request must not reach the inner service unstamped.
	inner := &recordingService{ready: true}
	svc := NewAuthService(inner, keycloakauth.New(&staticSource{
		cred: credential.New("Bearer", "abc123", time.Hour),
	}))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	_, err = svc.Do(req)

	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("error = %v, want *CredentialError", err)
	}
	if !errors.Is(err, keycloakauth.ErrNoCredential) {
		t.Errorf("error %v does not wrap ErrNoCredential", err)
	}
	if len(inner.requests) != 0 {
		t.Errorf("inner received %d requests, want 0", len(inner.requests))
	}
}
