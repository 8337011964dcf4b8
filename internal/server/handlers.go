package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightops/bright-gateway/internal/ai"
	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/auth"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
	"github.com/brightops/bright-gateway/internal/tenant"
)

type handlers struct {
	logger   *slog.Logger
	store    *storage.Store
	recorder *audit.Recorder
	identity *auth.IdentityClient
	ai       *ai.Service
	roles    tenant.RoleAccess
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// requireTenant resolves the tenant context and rejects requests that
// yield no tenant id. The resolver may return a half-resolved context
// with a known user but an empty tenant; that still counts as "no
// tenant" here, centrally, so handlers never see an empty TenantID.
func (h *handlers) requireTenant(w http.ResponseWriter, r *http.Request) (*tenant.Context, bool) {
	tc := tenant.FromRequest(r)
	if tc == nil || tc.TenantID == "" {
		envelope.Failure(w, r, http.StatusUnauthorized, "TENANT_REQUIRED", "Tenant context topilmadi.")
		return nil, false
	}
	AddLogField(r.Context(), "tenant_id", tc.TenantID)
	return tc, true
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *handlers) authMe(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractBearer(r)
	if token == "" {
		envelope.Failure(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Token talab qilinadi.")
		return
	}

	user := h.identity.VerifyToken(r.Context(), token)
	if user == nil {
		envelope.Failure(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "Token noto'g'ri yoki muddati tugagan.")
		return
	}

	memberships, err := h.store.ListMemberships(r.Context(), user.ID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Profil yuklashda xatolik.")
		return
	}

	type tenantView struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Plan        string   `json:"plan"`
		Role        string   `json:"role"`
		FullName    string   `json:"fullName"`
		Permissions []string `json:"permissions"`
	}

	tenants := make([]tenantView, 0, len(memberships))
	for _, m := range memberships {
		name := m.TenantName
		if name == "" {
			name = m.TenantID
		}
		plan := m.Plan
		if plan == "" {
			plan = "Pro"
		}
		tenants = append(tenants, tenantView{
			ID:          m.TenantID,
			Name:        name,
			Plan:        plan,
			Role:        m.Role,
			FullName:    m.FullName,
			Permissions: h.roles.PermissionsFor(m.Role),
		})
	}

	var defaultTenant any
	if len(tenants) > 0 {
		defaultTenant = tenants[0]
	}

	envelope.Success(w, r, map[string]any{
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
		},
		"tenants":       tenants,
		"defaultTenant": defaultTenant,
	})
}

func (h *handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	tenantID := chi.URLParam(r, "id")
	if tenantID != tc.TenantID {
		envelope.Failure(w, r, http.StatusForbidden, "FORBIDDEN", "Boshqa tenant a'zolariga kirish mumkin emas.")
		return
	}

	members, err := h.store.ListMembers(r.Context(), tenantID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "A'zolar yuklashda xatolik.")
		return
	}
	envelope.Success(w, r, members)
}
