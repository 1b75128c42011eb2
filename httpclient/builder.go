package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// Builder provides a fluent interface for constructing HTTP clients with
// automatic Keycloak authentication and TLS/mTLS support.
type Builder struct {
	// Keycloak configuration
	handle          *keycloakauth.Handle
	keycloakEnabled bool
	serverURL       string
	realm           string
	clientID        string
	clientSecret    string

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsSkipVerify bool

	// HTTP client configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
}

// NewBuilder creates a new HTTP client builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         30 * time.Second, // Default 30s timeout
		followRedirects: true,
	}
}

// WithHandle sets an existing credential handle for automatic authentication.
// Sharing one handle across several clients keeps them on a single token
// stream with a single in-flight fetch.
func (b *Builder) WithHandle(h *keycloakauth.Handle) *Builder {
	b.handle = h
	return b
}

// WithKeycloak enables Keycloak client-credentials authentication by
// creating a new credential handle at Build time.
//
// Parameters:
//   - serverURL: Keycloak base URL (e.g., "https://keycloak.example.com")
//   - realm: Keycloak realm name
//   - clientID: OAuth2 client identifier
//   - clientSecret: OAuth2 client secret
func (b *Builder) WithKeycloak(serverURL, realm, clientID, clientSecret string) *Builder {
	b.keycloakEnabled = true
	b.serverURL = serverURL
	b.realm = realm
	b.clientID = clientID
	b.clientSecret = clientSecret
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (optional, uses system roots if empty)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification (NOT RECOMMENDED for production).
// This should only be used for testing or development purposes.
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tlsSkipVerify = true
	return b
}

// WithTimeout sets the request timeout for the HTTP client.
// Default is 30 seconds if not specified.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport.
// This is useful for adding custom middleware or using a custom connection pool.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
// By default, the client follows up to 10 redirects.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// Build constructs the HTTP client with the configured options.
//
// Returns:
//   - *http.Client: Configured HTTP client
//   - error: Error if configuration is invalid (e.g., a malformed Keycloak URL)
func (b *Builder) Build() (*http.Client, error) {
	handle := b.handle
	if handle == nil && b.keycloakEnabled {
		h, err := keycloakauth.NewFromConfig(b.serverURL, b.realm, b.clientID, b.clientSecret)
		if err != nil {
			return nil, fmt.Errorf("httpclient: Keycloak config failed: %w", err)
		}
		handle = h
	}

	transport := b.baseTransport
	if transport == nil {
		httpTransport, ok := http.DefaultTransport.(*http.Transport)
		if ok {
			httpTransport = httpTransport.Clone()
			tlsConfig, err := b.buildTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
			}
			httpTransport.TLSClientConfig = tlsConfig
			transport = httpTransport
		} else {
			// Fallback to whatever default transport is configured (e.g., a test stub)
			transport = http.DefaultTransport
		}
	}

	// Wrap with the stamping transport if a handle is configured
	if handle != nil {
		transport = NewKeycloakTransport(handle, transport)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// buildTLSConfig constructs the TLS configuration for the HTTP client.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: b.tlsSkipVerify, // #nosec G402
	}

	if !b.tlsEnabled {
		return tlsConfig, nil
	}

	// Load CA certificate for server verification
	if b.tlsCAFile != "" {
		caCert, err := os.ReadFile(b.tlsCAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = certPool
	}

	// Load client certificate for mTLS (if both cert and key are provided)
	if b.tlsCertFile != "" && b.tlsKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(b.tlsCertFile, b.tlsKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	} else if b.tlsCertFile != "" || b.tlsKeyFile != "" {
		return nil, errors.New("both TLS cert and key files must be provided for mTLS")
	}

	return tlsConfig, nil
}

// NewHTTPClient is a convenience function that creates a simple HTTP client
// with Keycloak authentication. For more configuration options, use Builder.
//
// Example:
//
//	handle, err := keycloakauth.NewFromConfig(serverURL, realm, clientID, clientSecret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := httpclient.NewHTTPClient(handle)
//	resp, err := client.Get("https://api.example.com/data")
func NewHTTPClient(h *keycloakauth.Handle) *http.Client {
	return &http.Client{
		Transport: NewKeycloakTransport(h, nil),
		Timeout:   30 * time.Second,
	}
}
