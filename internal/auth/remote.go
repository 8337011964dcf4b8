package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteUser is the identity provider's view of a verified token holder.
type RemoteUser struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// IdentityClientOption configures the identity client.
type IdentityClientOption func(*IdentityClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) IdentityClientOption {
	return func(c *IdentityClient) {
		c.httpClient = httpClient
	}
}

// IdentityClient talks to the identity provider's current-user endpoint
// to verify bearer tokens the gateway cannot verify locally.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewIdentityClient creates an identity client. baseURL is the provider
// root; apiKey is the provider's project key sent alongside the user's
// bearer token.
func NewIdentityClient(baseURL, apiKey string, opts ...IdentityClientOption) *IdentityClient {
	c := &IdentityClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has enough configuration to
// attempt remote verification at all.
func (c *IdentityClient) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// VerifyToken forwards the bearer token to the provider's current-user
// endpoint. A 200 yields the user's id and email; any non-200 status,
// network failure or unparseable body yields nil.
func (c *IdentityClient) VerifyToken(ctx context.Context, token string) *RemoteUser {
	if !c.Configured() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var user RemoteUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil
	}
	if user.ID == "" {
		user.ID = user.Sub
	}
	if user.ID == "" {
		return nil
	}
	return &user
}
