// Package credential defines the immutable bearer credential value shared by
// the keycloakauth lifecycle and the request-stamping middleware.
//
// A Credential pairs a precomputed Authorization header value with the
// absolute instant the underlying token expires. Expiry checks apply a fixed
// ExpiryDelta buffer so credentials are refreshed slightly before their real
// expiry and never expire mid-flight of a request that is about to be
// stamped.
package credential
