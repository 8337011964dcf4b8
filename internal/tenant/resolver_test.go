package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brightops/bright-gateway/internal/auth"
)

const testSecret = "resolver-test-secret"

type signedClaims struct {
	TenantID    string   `json:"tenant_id,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

func signToken(t *testing.T, claims signedClaims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newResolver() *Resolver {
	// No identity client: remote strategy stays disabled in these tests.
	return NewResolver(auth.NewDecoder(testSecret, auth.NewIdentityClient("", "")))
}

func TestResolve_TenantFromClaims(t *testing.T) {
	token := signToken(t, signedClaims{
		TenantID: "tenant-a",
		Roles:    []string{"leader"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		},
	})

	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	ctx := newResolver().Resolve(r)
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.TenantID != "tenant-a" {
		t.Errorf("TenantID = %q, want tenant-a", ctx.TenantID)
	}
	if ctx.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", ctx.UserID)
	}
	if len(ctx.Roles) != 1 || ctx.Roles[0] != "leader" {
		t.Errorf("Roles = %v, want [leader]", ctx.Roles)
	}
}

func TestResolve_ClaimWithoutTenantFallsBackToHeader(t *testing.T) {
	token := signToken(t, signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set(HeaderTenantID, "tenant-b")

	ctx := newResolver().Resolve(r)
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.TenantID != "tenant-b" {
		t.Errorf("TenantID = %q, want tenant-b", ctx.TenantID)
	}
	if ctx.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", ctx.UserID)
	}
}

// Regression guard for the resolved-looking-but-empty-tenant hazard: a
// valid subject with no tenant claim and no tenant header still yields
// a context, with an empty TenantID that tenant gates must reject.
func TestResolve_SubjectOnlyYieldsEmptyTenant(t *testing.T) {
	token := signToken(t, signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	ctx := newResolver().Resolve(r)
	if ctx == nil {
		t.Fatal("Resolve returned nil, want a context with empty TenantID")
	}
	if ctx.TenantID != "" {
		t.Errorf("TenantID = %q, want empty", ctx.TenantID)
	}
	if ctx.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", ctx.UserID)
	}
}

func TestResolve_HeadersOnly(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set(HeaderTenantID, "tenant-c")
	r.Header.Set(HeaderUserID, "svc-user")

	ctx := newResolver().Resolve(r)
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.TenantID != "tenant-c" {
		t.Errorf("TenantID = %q, want tenant-c", ctx.TenantID)
	}
	if ctx.UserID != "svc-user" {
		t.Errorf("UserID = %q, want svc-user", ctx.UserID)
	}
	if len(ctx.Roles) != 0 {
		t.Errorf("Roles = %v, want empty", ctx.Roles)
	}
}

func TestResolve_NothingYieldsNil(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	if ctx := newResolver().Resolve(r); ctx != nil {
		t.Errorf("Resolve = %+v, want nil", ctx)
	}
}

func TestResolve_InvalidBearerFallsBackToHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	r.Header.Set(HeaderTenantID, "tenant-d")

	ctx := newResolver().Resolve(r)
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.TenantID != "tenant-d" {
		t.Errorf("TenantID = %q, want tenant-d", ctx.TenantID)
	}
}

func TestFromRequest_Memoization(t *testing.T) {
	resolver := newResolver()

	var first, second *Context
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = FromRequest(r)
		second = FromRequest(r)
	})

	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set(HeaderTenantID, "tenant-a")
	rec := httptest.NewRecorder()

	Middleware(resolver)(handler).ServeHTTP(rec, r)

	if first == nil {
		t.Fatal("FromRequest returned nil inside middleware")
	}
	if first != second {
		t.Error("FromRequest returned different pointers across calls within one request")
	}
}

func TestFromRequest_NoMiddleware(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.Header.Set(HeaderTenantID, "tenant-a")
	if ctx := FromRequest(r); ctx != nil {
		t.Errorf("FromRequest without middleware = %+v, want nil", ctx)
	}
}

func TestRoleAccess(t *testing.T) {
	ra := DefaultRoleAccess()
	leader := ra.PermissionsFor("leader")
	if len(leader) != 7 {
		t.Errorf("leader permissions = %v, want 7 sections", leader)
	}
	if got := ra.PermissionsFor("unknown"); len(got) != 0 {
		t.Errorf("unknown role permissions = %v, want empty", got)
	}
}
