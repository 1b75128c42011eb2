package keycloakauth

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/harscoet/go-keycloakauth/keycloakclient"
)

// Logger is an interface for optional logging in Handle.
// Implementations can log credential lifecycle events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Handle manages one credential stream over a TokenSource and is the shared
// entry point for readiness probes and request stamping.
//
// One Handle owns one credential lifecycle; all services wrapping the same
// Handle share that lifecycle, which is what guarantees at most one token
// fetch is in flight no matter how many call sites observe an expired or
// missing credential at the same time. Handle is safe for concurrent use.
type Handle struct {
	mu        sync.RWMutex
	lifecycle lifecycle
}

// Option is a functional option for configuring Handle.
type Option func(*Handle)

// WithLogger sets a custom logger for credential lifecycle events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(h *Handle) {
		h.lifecycle.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(h *Handle) {
		h.lifecycle.logger = log.Default()
	}
}

// New creates a Handle over the given token source.
func New(source TokenSource, opts ...Option) *Handle {
	h := &Handle{
		lifecycle: lifecycle{
			state:  stateNotFetched,
			source: source,
			now:    time.Now,
		},
	}

	// Apply options
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// NewFromConfig creates a Handle backed by a keycloakclient.Client for the
// given Keycloak realm. It fails immediately if the derived token endpoint
// URL is invalid.
//
// Parameters:
//   - serverURL: Keycloak base URL (e.g., "https://keycloak.example.com")
//   - realm: Keycloak realm name
//   - clientID: OAuth2 client identifier
//   - clientSecret: OAuth2 client secret
func NewFromConfig(serverURL, realm, clientID, clientSecret string, opts ...Option) (*Handle, error) {
	client, err := keycloakclient.New(serverURL, realm, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	return New(client, opts...), nil
}

// Clone returns a handle sharing this handle's lifecycle. Every clone
// observes the same credential and the same in-flight fetch; cloning exists
// so each wrapped service can hold its own handle value while the
// single-flight guarantee spans all of them.
func (h *Handle) Clone() *Handle {
	return h
}

// Ready is the non-blocking readiness probe. It reports (true, nil) when a
// valid credential is installed, (false, nil) while a fetch or refresh is in
// flight, and (false, err) when a fetch failed. After a failure the lifecycle
// is reset, so the next probe starts a fresh fetch attempt.
//
// The fast path takes only a read lock; exclusive access is held for a single
// poll step, never for the duration of the network fetch.
func (h *Handle) Ready(ctx context.Context) (bool, error) {
	// Use background context if nil
	if ctx == nil {
		ctx = context.Background()
	}

	h.mu.RLock()
	skip := h.lifecycle.canSkipAdvance()
	h.mu.RUnlock()
	if skip {
		return true, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lifecycle.advance(ctx)
}

// WaitUntilReady blocks until Ready reports ready, the in-flight fetch fails,
// or ctx is done. Waiting happens on the fetch operation's completion signal
// outside any lock, so concurrent readiness probes are never stalled by a
// waiter.
func (h *Handle) WaitUntilReady(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		ready, err := h.Ready(ctx)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}

		h.mu.RLock()
		fetchDone := h.lifecycle.inFlight()
		h.mu.RUnlock()

		if fetchDone == nil {
			// The operation completed between the probe and the read; the
			// next probe observes the settled state.
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fetchDone:
		}
	}
}

// Stamp sets the request's Authorization header to the current credential's
// header value, overwriting any existing value.
//
// Stamp must only be called after Ready has most recently reported ready for
// this handle; it returns ErrNoCredential otherwise. During a refresh it
// stamps the previous, still-valid credential until the new one is installed.
func (h *Handle) Stamp(req *http.Request) error {
	value, err := h.HeaderValue()
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", value)
	return nil
}

// HeaderValue returns the Authorization header value of the credential Stamp
// would use, without touching a request. It returns ErrNoCredential when no
// credential has been fetched yet.
func (h *Handle) HeaderValue() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cred, err := h.lifecycle.peekCredential()
	if err != nil {
		return "", err
	}

	return cred.HeaderValue(), nil
}
