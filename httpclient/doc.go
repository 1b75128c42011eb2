// Package httpclient attaches Keycloak bearer credentials to outgoing HTTP
// requests.
//
// It offers two integration styles over one keycloakauth.Handle: AuthService,
// a non-blocking middleware speaking the readiness protocol (probe Ready,
// then Do), and KeycloakTransport, a blocking http.RoundTripper for plain
// *http.Client use. A fluent Builder assembles clients with automatic token
// injection, TLS/mTLS, timeouts, and redirect handling.
//
// # Features
//
//   - AuthService middleware: ready-probe protocol, tagged error taxonomy
//     (CredentialError vs ServiceError), requests never forwarded unstamped
//   - KeycloakTransport for drop-in http.Client authentication
//   - Fluent builder with TLS 1.2+ defaults, custom CA/mTLS, timeouts,
//     base transport override, and redirect disabling
//
// # Quick Start
//
//	client, err := httpclient.NewBuilder().
//	    WithKeycloak(
//	        "https://keycloak.example.com",
//	        "my-realm",
//	        "client-id",
//	        "client-secret",
//	    ).
//	    WithTimeout(60 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get("https://api.example.com/data")
//
// # Middleware Composition
//
//	handle, err := keycloakauth.NewFromConfig(serverURL, realm, clientID, clientSecret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := httpclient.NewAuthService(&httpclient.ClientService{Client: http.DefaultClient}, handle)
//
// All components are safe for concurrent use; services wrapping the same
// handle share one credential stream and one in-flight token fetch.
package httpclient
