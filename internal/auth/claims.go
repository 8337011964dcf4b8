// Package auth decodes bearer credentials into claims.
//
// Two strategies are supported: local HS256 signature verification
// against a shared secret, and remote verification against the identity
// provider's current-user endpoint. Both degrade to "no credential"
// rather than surfacing errors; the resolver layer decides what an
// absent credential means for a request.
package auth

import "github.com/golang-jwt/jwt/v5"

// Source identifies which strategy produced a set of claims.
type Source int

const (
	// SourceLocal means the token's signature was verified locally.
	SourceLocal Source = iota
	// SourceRemote means the identity provider vouched for the token.
	SourceRemote
)

// Claims is the decoded credential payload. Remote-verified tokens only
// carry a subject (and possibly an email); tenant, roles and permissions
// are present only when the token was decoded locally and the issuer put
// them there.
type Claims struct {
	Sub         string
	TenantID    string
	Roles       []string
	Permissions []string
	Email       string
	Source      Source
}

// tokenClaims is the wire shape of a locally-verified token payload.
type tokenClaims struct {
	TenantID    string   `json:"tenant_id,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}
