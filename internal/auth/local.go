package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// verifyLocal verifies a token's HS256 signature against the shared
// secret and returns its claims, or nil on any parse, signature,
// algorithm or expiry failure. Verification never returns an error to
// the caller; an unusable token and a missing token are the same thing.
func verifyLocal(token, secret string) *Claims {
	if secret == "" {
		return nil
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil
	}

	claims := &Claims{
		Sub:         tc.Subject,
		TenantID:    tc.TenantID,
		Roles:       tc.Roles,
		Permissions: tc.Permissions,
		Source:      SourceLocal,
	}
	if claims.Roles == nil {
		claims.Roles = []string{}
	}
	if claims.Permissions == nil {
		claims.Permissions = []string{}
	}
	return claims
}
