package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewLocalHTTPServer starts an HTTP server bound to IPv4 loopback only.
// The sandbox blocks IPv6 listeners, so force tcp4 to keep tests runnable.
func NewLocalHTTPServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	return server
}

// RoundTripFunc allows inlining http.RoundTripper implementations.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls the underlying function.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// TokenEndpoint simulates a Keycloak token endpoint without real sockets.
// It records requests (with their form bodies re-readable) and serves
// responses through a custom RoundTripper.
type TokenEndpoint struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	handler  RoundTripFunc
}

// NewTokenEndpoint builds a mock token endpoint backed by an in-memory
// RoundTripper. If handler is nil, it returns a default successful token
// response.
func NewTokenEndpoint(tb testing.TB, handler RoundTripFunc) *TokenEndpoint {
	tb.Helper()

	if handler == nil {
		handler = JSONResponse(http.StatusOK, TokenResponseJSON("mock-access-token", 3600))
	}

	return &TokenEndpoint{handler: handler}
}

// Client returns an *http.Client routing every request through the mock
// endpoint; pass it to keycloakclient.WithHTTPClient.
func (e *TokenEndpoint) Client() *http.Client {
	return &http.Client{Transport: RoundTripFunc(e.roundTrip)}
}

func (e *TokenEndpoint) roundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(b)
		req.Body = io.NopCloser(strings.NewReader(body))
	}

	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.bodies = append(e.bodies, body)
	handler := e.handler
	e.mu.Unlock()

	return handler(req)
}

// SetHandler swaps the response handler, e.g. to fail the next fetch.
func (e *TokenEndpoint) SetHandler(handler RoundTripFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

// Requests returns the recorded requests.
func (e *TokenEndpoint) Requests() []*http.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*http.Request(nil), e.requests...)
}

// RequestBodies returns the recorded request bodies.
func (e *TokenEndpoint) RequestBodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

// RequestCount returns how many requests the endpoint has served.
func (e *TokenEndpoint) RequestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// JSONResponse returns a RoundTripper that always responds with the provided
// status and JSON body.
func JSONResponse(status int, body string) RoundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: status,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

// FailingResponse returns a RoundTripper that always fails at the transport
// level, as if the connection could not be established.
func FailingResponse(err error) RoundTripFunc {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

// SequenceResponse returns a RoundTripper that serves the given handlers in
// order, repeating the last one once the sequence is exhausted.
func SequenceResponse(handlers ...RoundTripFunc) RoundTripFunc {
	var mu sync.Mutex
	next := 0
	return func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		handler := handlers[next]
		if next < len(handlers)-1 {
			next++
		}
		mu.Unlock()
		return handler(req)
	}
}

// TokenResponseJSON renders a successful token endpoint response body.
func TokenResponseJSON(accessToken string, expiresIn int) string {
	return fmt.Sprintf(`{
		"access_token": %q,
		"token_type": "Bearer",
		"expires_in": %d
	}`, accessToken, expiresIn)
}

// GenerateTestKey generates an RSA key for signing test access tokens.
func GenerateTestKey(tb testing.TB) *rsa.PrivateKey {
	tb.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatalf("failed to generate RSA key: %v", err)
	}

	return privateKey
}

// SignAccessToken mints an RS256 access token the way Keycloak issues them,
// with the realm URL as issuer and the client id as authorized party.
func SignAccessToken(tb testing.TB, privateKey *rsa.PrivateKey, realmURL, clientID string, expiresIn time.Duration) string {
	tb.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": realmURL,
		"azp": clientID,
		"sub": "service-account-" + clientID,
		"typ": "Bearer",
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	})
	token.Header["kid"] = "test-key-1"

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		tb.Fatalf("failed to sign token: %v", err)
	}

	return tokenString
}
