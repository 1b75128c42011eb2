package keycloakclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/harscoet/go-keycloakauth/credential"
)

// Logger is an interface for optional logging in Client.
// Implementations can log token fetch retries if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Client fetches bearer credentials from a Keycloak realm using the OAuth2
// client-credentials grant.
//
// Each fetch POSTs grant_type=client_credentials to the realm's token
// endpoint with the client id and secret as HTTP basic auth, and retries
// transient failures with bounded exponential backoff. Client is safe for
// concurrent use.
type Client struct {
	config     *clientcredentials.Config
	tokenURL   *url.URL
	httpClient *http.Client
	timeout    time.Duration
	attempts   uint
	retryDelay time.Duration
	logger     Logger // optional logger
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for token requests.
// If not set, a default client is used and the per-attempt timeout applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout for token requests.
// Default is 2 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxAttempts sets the total number of token request attempts
// (first try included). Default is 3.
func WithMaxAttempts(attempts uint) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithScopes sets optional OAuth2 scopes requested with the
// client-credentials grant (space-separated, e.g., "openid profile").
func WithScopes(scopes string) Option {
	return func(c *Client) {
		c.config.Scopes = strings.Fields(scopes)
	}
}

// WithLogger sets a custom logger for fetch retry events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(c *Client) {
		c.logger = log.Default()
	}
}

// New creates a Keycloak token client for the client-credentials flow.
//
// The token endpoint is derived from the server URL and realm as
// {serverURL}/realms/{realm}/protocol/openid-connect/token and validated
// here: a malformed or non-absolute server URL fails immediately, it is
// never retried.
//
// Parameters:
//   - serverURL: Keycloak base URL (e.g., "https://keycloak.example.com")
//   - realm: Keycloak realm name
//   - clientID: OAuth2 client identifier
//   - clientSecret: OAuth2 client secret
//   - opts: Optional configuration (WithTimeout, WithMaxAttempts, WithScopes, ...)
func New(serverURL, realm, clientID, clientSecret string, opts ...Option) (*Client, error) {
	if realm == "" {
		return nil, errors.New("keycloakclient: realm is required")
	}
	if clientID == "" {
		return nil, errors.New("keycloakclient: client id is required")
	}

	tokenURL, err := deriveTokenURL(serverURL, realm)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL.String(),
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		tokenURL:   tokenURL,
		timeout:    2 * time.Second,
		attempts:   3,
		retryDelay: 100 * time.Millisecond,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// TokenURL returns the derived token endpoint.
func (c *Client) TokenURL() string {
	return c.tokenURL.String()
}

// FetchToken requests a fresh credential from the token endpoint.
//
// Transient failures (transport errors, HTTP 429 and 5xx) are retried with
// exponential backoff up to the attempt limit; other non-2xx responses fail
// immediately as *TokenEndpointError carrying the status code and response
// body. The returned error is always the last failure, never a retry
// aggregate.
func (c *Client) FetchToken(ctx context.Context) (*credential.Credential, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	tok, err := retry.NewWithData[*oauth2.Token](
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if c.logger != nil {
				c.logger.Printf("keycloakclient: token fetch attempt %d failed, retrying: %v", n+1, err)
			}
		}),
	).Do(func() (*oauth2.Token, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.config.Token(attemptCtx)
	})
	if err != nil {
		return nil, wrapFetchError(err)
	}

	return credential.FromToken(tok)
}

// deriveTokenURL builds and validates the realm's OpenID Connect token endpoint.
func deriveTokenURL(serverURL, realm string) (*url.URL, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("keycloakclient: invalid server URL %q: %w", serverURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("keycloakclient: server URL %q must be absolute", serverURL)
	}

	return base.JoinPath("realms", realm, "protocol", "openid-connect", "token"), nil
}

// isTransient classifies a token fetch failure for the retry policy.
// Only transport failures and retriable status classes count as transient;
// terminal statuses like 400 or 401 fail without further attempts.
func isTransient(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response == nil {
			return true
		}
		code := re.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	// No HTTP response at all: transport-level failure.
	return true
}

// wrapFetchError maps the final fetch failure into the package error taxonomy.
func wrapFetchError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &TokenEndpointError{
			StatusCode:   re.Response.StatusCode,
			ResponseBody: string(re.Body),
			err:          re,
		}
	}
	return fmt.Errorf("keycloakclient: token request failed: %w", err)
}
