// Package keycloakclient performs OAuth2 client-credentials token fetches
// against a Keycloak realm.
//
// It derives the realm's OpenID Connect token endpoint from the server URL,
// authenticates with the client id and secret via HTTP basic auth, and
// retries transient failures (transport errors, HTTP 429/5xx) with bounded
// exponential backoff. Terminal non-2xx responses surface as
// TokenEndpointError with the status code and response body.
//
// # Features
//
//   - Token endpoint derived and validated at construction time
//   - Client-credentials grant via golang.org/x/oauth2/clientcredentials
//   - Bounded exponential-backoff retry for transient failures only
//   - Structured TokenEndpointError for non-success responses
//   - Optional logging of retry attempts (WithLogger, WithLoggingEnabled)
//
// # Quick Start
//
//	client, err := keycloakclient.New(
//	    "https://keycloak.example.com",
//	    "my-realm",
//	    "client-id",
//	    "client-secret",
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cred, err := client.FetchToken(ctx)
//
// Client implements keycloakauth.TokenSource and is usually consumed through
// a keycloakauth.Handle rather than called directly.
package keycloakclient
