// Package testutil provides test helpers for go-keycloakauth packages.
//
// It includes an in-memory mock of a Keycloak token endpoint (no real
// sockets; records requests and form bodies, serves scriptable responses),
// IPv4-only local HTTP servers for sandboxed environments, and helpers to
// mint realistic RS256 access tokens.
//
// # Utilities
//
//   - NewTokenEndpoint: stub token endpoints and capture requests
//   - JSONResponse / FailingResponse / SequenceResponse: scripted replies
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - GenerateTestKey / SignAccessToken: Keycloak-shaped JWT access tokens
//
// These helpers are designed for tests only.
package testutil
