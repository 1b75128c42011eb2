package grpcclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/harscoet/go-keycloakauth/keycloakauth"
)

// Builder provides a fluent interface for constructing gRPC client
// connections with automatic Keycloak authentication and TLS/mTLS support.
type Builder struct {
	address string

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
	tlsServerName string

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAddress sets the server address (e.g., "server.example.com:9090").
func (b *Builder) WithAddress(address string) *Builder {
	b.address = address
	return b
}

// WithHandle sets an existing credential handle for automatic authentication.
// Sharing one handle across HTTP and gRPC clients keeps them on a single
// token stream with a single in-flight fetch.
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
//   - caFile: Path to CA certificate for server verification (required)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
//   - serverName: Expected server name for TLS verification (optional, overrides SNI)
func (b *Builder) WithTLS(caFile, certFile, keyFile, serverName string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	b.tlsServerName = serverName
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after authentication and TLS options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
//
// Returns:
//   - *grpc.ClientConn: Established gRPC connection
//   - error: Error if configuration is invalid or the dial fails
func (b *Builder) Build() (*grpc.ClientConn, error) {
	if b.address == "" {
		return nil, errors.New("grpcclient: server address is required")
	}

	var opts []grpc.DialOption

	// Add credential interceptors if enabled
	handle := b.handle
	if handle == nil && b.keycloakEnabled {
		h, err := keycloakauth.NewFromConfig(b.serverURL, b.realm, b.clientID, b.clientSecret)
		if err != nil {
			return nil, fmt.Errorf("grpcclient: Keycloak config failed: %w", err)
		}
		handle = h
	}
	if handle != nil {
		opts = append(opts,
			grpc.WithUnaryInterceptor(UnaryClientInterceptor(handle)),
			grpc.WithStreamInterceptor(StreamClientInterceptor(handle)),
		)
	}

	// Add TLS credentials if enabled
	if b.tlsEnabled {
		tlsConfig, err := b.buildTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("grpcclient: TLS config failed: %w", err)
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		// Default to TLS with system roots to avoid accidental plaintext connections.
		// Set MinVersion to TLS 1.2 for secure defaults.
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})))
	}

	// Add custom dial options
	opts = append(opts, b.dialOpts...)

	conn, err := grpc.NewClient(b.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}

	return conn, nil
}

// buildTLSConfig constructs the TLS configuration for the gRPC connection.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
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

	// Set server name override if provided
	if b.tlsServerName != "" {
		tlsConfig.ServerName = b.tlsServerName
	}

	return tlsConfig, nil
}
