package credential

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryDelta is the safety window applied before a credential's real expiry.
// A credential with less than this much lifetime left is reported expired so
// it is refreshed before it can expire mid-flight of a request it was just
// attached to.
const ExpiryDelta = 10 * time.Second

// Credential is a bearer token ready to attach to outgoing requests.
//
// It holds the precomputed Authorization header value ("<tokenType> <accessToken>")
// and the absolute instant the token expires. A Credential is immutable after
// construction: a refresh produces a new Credential and never mutates an
// existing one, so concurrent readers may keep using a superseded Credential
// until the replacement is installed.
type Credential struct {
	headerValue string
	expiresAt   time.Time
}

// New builds a Credential from a token endpoint response.
// The expiry instant is computed as now + expiresIn.
func New(tokenType, accessToken string, expiresIn time.Duration) *Credential {
	return &Credential{
		headerValue: tokenType + " " + accessToken,
		expiresAt:   time.Now().Add(expiresIn),
	}
}

// FromToken builds a Credential from an x/oauth2 token.
//
// The token must carry an access token and a known expiry; client-credentials
// responses without expires_in cannot be cached safely and are rejected.
func FromToken(tok *oauth2.Token) (*Credential, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, errors.New("credential: token response has no access token")
	}
	if tok.Expiry.IsZero() {
		return nil, errors.New("credential: token response has no expiry")
	}

	return &Credential{
		headerValue: tok.Type() + " " + tok.AccessToken,
		expiresAt:   tok.Expiry,
	}, nil
}

// HeaderValue returns the precomputed Authorization header value.
func (c *Credential) HeaderValue() string {
	return c.headerValue
}

// ExpiresAt returns the absolute expiry instant.
func (c *Credential) ExpiresAt() time.Time {
	return c.expiresAt
}

// IsExpired reports whether the credential should no longer be attached to
// requests as of now.
//
// It is true once less than ExpiryDelta of lifetime remains. Any ambiguity
// (nil credential, unknown expiry, clock skew putting the expiry in the past)
// is treated as expired, never as valid.
func (c *Credential) IsExpired(now time.Time) bool {
	if c == nil || c.expiresAt.IsZero() {
		return true
	}
	return c.expiresAt.Sub(now) < ExpiryDelta
}
