// Package tenant resolves an authenticated principal into a
// tenant-scoped security context from bearer credentials and request
// headers, with graceful degradation between credential sources.
package tenant

import (
	"context"
	"net/http"
)

// Context is the tenant-scoped security context for one request. It is
// ephemeral: constructed at most once per request and never persisted.
// TenantID is load-bearing for every row-level filter downstream; an
// empty TenantID means the request is not tenant-resolved even when a
// user is known.
type Context struct {
	TenantID    string
	UserID      string
	Roles       []string
	Permissions []string
}

// holder memoizes the resolution result for the lifetime of one
// request. Requests are handled by a single goroutine, so no locking.
type holder struct {
	resolver *Resolver
	resolved bool
	ctx      *Context
}

type holderKey struct{}

// Middleware installs a lazy resolution holder into the request context
// so that FromRequest resolves at most once per request.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), holderKey{}, &holder{resolver: resolver})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Peek returns the tenant context only if a handler already resolved
// it. It never triggers resolution itself; trailing log stages use it
// so that unauthenticated routes stay unresolved.
func Peek(r *http.Request) *Context {
	h, ok := r.Context().Value(holderKey{}).(*holder)
	if !ok || !h.resolved {
		return nil
	}
	return h.ctx
}

// FromRequest returns the request's tenant context, resolving it on
// first call and returning the identical value on every later call
// within the same request. Returns nil when no holder middleware is
// installed or resolution fails.
func FromRequest(r *http.Request) *Context {
	h, ok := r.Context().Value(holderKey{}).(*holder)
	if !ok {
		return nil
	}
	if !h.resolved {
		h.ctx = h.resolver.Resolve(r)
		h.resolved = true
	}
	return h.ctx
}
