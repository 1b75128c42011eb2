package credential

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewRendersHeaderValue(t *testing.T) {
	cred := New("Bearer", "abc123", 300*time.Second)

	if got, want := cred.HeaderValue(), "Bearer abc123"; got != want {
		t.Errorf("HeaderValue() = %q, want %q", got, want)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "well before expiry",
			expiresAt: now.Add(300 * time.Second),
			want:      false,
		},
		{
			name:      "just outside the buffer",
			expiresAt: now.Add(ExpiryDelta + time.Second),
			want:      false,
		},
		{
			name:      "inside the buffer",
			expiresAt: now.Add(ExpiryDelta - time.Second),
			want:      true,
		},
		{
			name:      "exactly at the buffer boundary",
			expiresAt: now.Add(ExpiryDelta),
			want:      false,
		},
		{
			name:      "already elapsed",
			expiresAt: now.Add(-time.Minute),
			want:      true,
		},
		{
			name:      "unknown expiry",
			expiresAt: time.Time{},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := &Credential{headerValue: "Bearer x", expiresAt: tt.expiresAt}
			if got := cred.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExpiredNilCredential(t *testing.T) {
	var cred *Credential
	if !cred.IsExpired(time.Now()) {
		t.Error("nil credential should be expired")
	}
}

func TestNewFreshCredentialNotExpired(t *testing.T) {
	cred := New("Bearer", "abc123", 300*time.Second)

	if cred.IsExpired(time.Now()) {
		t.Error("freshly issued 300s credential should not be expired")
	}
	if !cred.IsExpired(cred.ExpiresAt().Add(-5 * time.Second)) {
		t.Error("credential with 5s remaining should be expired")
	}
}

func TestNewShortLivedCredentialImmediatelyExpired(t *testing.T) {
	// A token lifetime shorter than the buffer is expired from the start.
	cred := New("Bearer", "abc123", time.Second)

	if !cred.IsExpired(time.Now()) {
		t.Error("1s credential should be inside the 10s expiry buffer")
	}
}

func TestFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		token   *oauth2.Token
		wantErr bool
		want    string
	}{
		{
			name:  "bearer token",
			token: &oauth2.Token{AccessToken: "abc123", TokenType: "Bearer", Expiry: expiry},
			want:  "Bearer abc123",
		},
		{
			name: "empty token type defaults to Bearer",
			token: &oauth2.Token{
				AccessToken: "abc123",
				Expiry:      expiry,
			},
			want: "Bearer abc123",
		},
		{
			name:    "nil token",
			token:   nil,
			wantErr: true,
		},
		{
			name:    "missing access token",
			token:   &oauth2.Token{TokenType: "Bearer", Expiry: expiry},
			wantErr: true,
		},
		{
			name:    "missing expiry",
			token:   &oauth2.Token{AccessToken: "abc123", TokenType: "Bearer"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := FromToken(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cred.HeaderValue(); got != tt.want {
				t.Errorf("HeaderValue() = %q, want %q", got, tt.want)
			}
			if !cred.ExpiresAt().Equal(expiry) {
				t.Errorf("ExpiresAt() = %v, want %v", cred.ExpiresAt(), expiry)
			}
		})
	}
}
