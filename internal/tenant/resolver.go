package tenant

import (
	"net/http"

	"github.com/brightops/bright-gateway/internal/auth"
)

// Header names consumed by the resolver.
const (
	HeaderTenantID = "X-Tenant-Id"
	HeaderUserID   = "X-User-Id"
)

// Resolver combines a decoded credential with request headers to
// produce a tenant context. The priority chain, first success wins:
//
//  1. bearer token with a tenant claim (header as tenant fallback)
//  2. bearer token with only a subject; tenant comes from the
//     X-Tenant-Id header and may be empty, so downstream tenant gates
//     must treat an empty TenantID as "no tenant"
//  3. headers only, for trusted internal and webhook-adjacent calls
//  4. nil: the request is unauthenticated
type Resolver struct {
	decoder *auth.Decoder
}

// NewResolver creates a resolver over the given credential decoder.
func NewResolver(decoder *auth.Decoder) *Resolver {
	return &Resolver{decoder: decoder}
}

// Resolve runs the priority chain against one request. No network call
// is made unless the decoder's remote strategy is needed.
func (rs *Resolver) Resolve(r *http.Request) *Context {
	if token := auth.ExtractBearer(r); token != "" {
		if claims := rs.decoder.Decode(r.Context(), token); claims != nil {
			tenantID := claims.TenantID
			if tenantID == "" {
				tenantID = r.Header.Get(HeaderTenantID)
			}
			if tenantID != "" {
				return &Context{
					TenantID:    tenantID,
					UserID:      claims.Sub,
					Roles:       orEmpty(claims.Roles),
					Permissions: orEmpty(claims.Permissions),
				}
			}
			if claims.Sub != "" {
				// Deliberately permissive: the caller authenticated via
				// bearer token but resolves tenant via header, which may
				// be empty. RequireTenant rejects the empty case.
				return &Context{
					TenantID:    r.Header.Get(HeaderTenantID),
					UserID:      claims.Sub,
					Roles:       orEmpty(claims.Roles),
					Permissions: orEmpty(claims.Permissions),
				}
			}
		}
	}

	if tenantID := r.Header.Get(HeaderTenantID); tenantID != "" {
		return &Context{
			TenantID:    tenantID,
			UserID:      r.Header.Get(HeaderUserID),
			Roles:       []string{},
			Permissions: []string{},
		}
	}

	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
