package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestVerifyLocal_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, tokenClaims{
		TenantID: "tenant-a",
		Roles:    []string{"leader"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims := verifyLocal(token, testSecret)
	if claims == nil {
		t.Fatal("verifyLocal returned nil for a valid token")
	}
	if claims.Sub != "user-1" {
		t.Errorf("Sub = %q, want user-1", claims.Sub)
	}
	if claims.TenantID != "tenant-a" {
		t.Errorf("TenantID = %q, want tenant-a", claims.TenantID)
	}
	if claims.Source != SourceLocal {
		t.Errorf("Source = %v, want SourceLocal", claims.Source)
	}
}

func TestVerifyLocal_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	if claims := verifyLocal(token, testSecret); claims != nil {
		t.Errorf("verifyLocal accepted an expired token: %+v", claims)
	}
}

func TestVerifyLocal_NoExpiry(t *testing.T) {
	// A token without exp is accepted; only a past exp rejects.
	token := signToken(t, testSecret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
	})

	claims := verifyLocal(token, testSecret)
	if claims == nil {
		t.Fatal("verifyLocal rejected a token without exp")
	}
	if claims.Sub != "user-2" {
		t.Errorf("Sub = %q, want user-2", claims.Sub)
	}
}

func TestVerifyLocal_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	if verifyLocal(token, testSecret) != nil {
		t.Error("verifyLocal accepted a token signed with the wrong secret")
	}
}

func TestVerifyLocal_WrongAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if verifyLocal(signed, testSecret) != nil {
		t.Error("verifyLocal accepted a non-HS256 token")
	}
}

func TestVerifyLocal_MalformedToken(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if verifyLocal(token, testSecret) != nil {
			t.Errorf("verifyLocal accepted malformed token %q", token)
		}
	}
}

func TestVerifyLocal_NoSecretConfigured(t *testing.T) {
	token := signToken(t, testSecret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	if verifyLocal(token, "") != nil {
		t.Error("verifyLocal accepted a token with no secret configured")
	}
}

func TestIdentityClient_VerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("apikey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"remote-user","email":"u@example.com"}`))
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, "anon-key")

	user := client.VerifyToken(context.Background(), "remote-token")
	if user == nil {
		t.Fatal("VerifyToken returned nil for an accepted token")
	}
	if user.ID != "remote-user" {
		t.Errorf("ID = %q, want remote-user", user.ID)
	}
	if user.Email != "u@example.com" {
		t.Errorf("Email = %q, want u@example.com", user.Email)
	}

	if got := client.VerifyToken(context.Background(), "bad-token"); got != nil {
		t.Errorf("VerifyToken returned %+v for a rejected token, want nil", got)
	}
}

func TestIdentityClient_Unconfigured(t *testing.T) {
	client := NewIdentityClient("", "")
	if client.VerifyToken(context.Background(), "token") != nil {
		t.Error("unconfigured client verified a token")
	}
}

func TestDecoder_LocalFirstThenRemote(t *testing.T) {
	remoteCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"remote-user"}`))
	}))
	defer srv.Close()

	decoder := NewDecoder(testSecret, NewIdentityClient(srv.URL, "anon-key"))

	// Locally-verifiable token never reaches the identity provider.
	local := signToken(t, testSecret, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "local-user"},
	})
	claims := decoder.Decode(context.Background(), local)
	if claims == nil || claims.Sub != "local-user" {
		t.Fatalf("Decode(local) = %+v, want local-user", claims)
	}
	if remoteCalls != 0 {
		t.Errorf("remote strategy was invoked %d times for a local token", remoteCalls)
	}

	// Unverifiable token falls through to the identity provider.
	claims = decoder.Decode(context.Background(), "opaque-token")
	if claims == nil || claims.Sub != "remote-user" {
		t.Fatalf("Decode(remote) = %+v, want remote-user", claims)
	}
	if claims.Source != SourceRemote {
		t.Errorf("Source = %v, want SourceRemote", claims.Source)
	}
}

func TestDecoder_BothStrategiesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	decoder := NewDecoder(testSecret, NewIdentityClient(srv.URL, "anon-key"))
	if claims := decoder.Decode(context.Background(), "nope"); claims != nil {
		t.Errorf("Decode = %+v, want nil", claims)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := ExtractBearer(r); got != tt.want {
				t.Errorf("ExtractBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
