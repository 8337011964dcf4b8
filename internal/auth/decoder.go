package auth

import (
	"context"
	"net/http"
	"strings"
)

// Decoder resolves bearer tokens into claims using an explicit priority
// chain: local signature verification first, then the identity
// provider. A nil result from both means the request carries no usable
// credential.
type Decoder struct {
	secret   string
	identity *IdentityClient
}

// NewDecoder creates a decoder. secret may be empty (local strategy
// disabled); identity may be nil or unconfigured (remote strategy
// disabled).
func NewDecoder(secret string, identity *IdentityClient) *Decoder {
	return &Decoder{secret: secret, identity: identity}
}

// Decode attempts local verification, then remote. Returns nil when
// neither strategy accepts the token.
func (d *Decoder) Decode(ctx context.Context, token string) *Claims {
	if claims := verifyLocal(token, d.secret); claims != nil {
		return claims
	}

	if user := d.identity.VerifyToken(ctx, token); user != nil {
		return &Claims{
			Sub:         user.ID,
			Email:       user.Email,
			Roles:       []string{},
			Permissions: []string{},
			Source:      SourceRemote,
		}
	}

	return nil
}

// Identity exposes the remote verification client for flows that verify
// tokens without the local strategy (the auth/me route).
func (d *Decoder) Identity() *IdentityClient {
	return d.identity
}

// ExtractBearer extracts the bearer token from a request's Authorization
// header. Returns an empty string when the header is absent or uses a
// different scheme.
func ExtractBearer(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return ""
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
