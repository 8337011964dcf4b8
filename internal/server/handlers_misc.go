package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightops/bright-gateway/internal/ai"
	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
)

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	if tc.UserID == "" {
		envelope.Success(w, r, []any{})
		return
	}

	notifications, err := h.store.ListNotifications(r.Context(), tc.TenantID, tc.UserID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Bildirishnomalar yuklashda xatolik.")
		return
	}
	envelope.Success(w, r, notifications)
}

func (h *handlers) readNotification(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	if tc.UserID == "" {
		envelope.Failure(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "Tizimga kirish kerak.")
		return
	}

	n, err := h.store.MarkNotificationRead(r.Context(), tc.UserID, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Bildirishnoma topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Bildirishnoma yangilashda xatolik.")
		return
	}
	envelope.Success(w, r, n)
}

func (h *handlers) aiChat(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body ai.ChatRequest
	_ = decodeJSON(r, &body)

	result, err := h.ai.Chat(r.Context(), tc, body)
	if errors.Is(err, ai.ErrEmptyMessage) {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "message majburiy.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "AI javobida xatolik.")
		return
	}
	envelope.Success(w, r, result)
}

func (h *handlers) aiTools(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTenant(w, r); !ok {
		return
	}
	envelope.Success(w, r, ai.Registry())
}

func (h *handlers) hrCases(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTenant(w, r); !ok {
		return
	}
	envelope.Success(w, r, seedHRCases())
}

func (h *handlers) submitSurvey(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body struct {
		Score   *float64 `json:"score"`
		Comment string   `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Score == nil {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "score majburiy.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "hr_survey_submit",
		EntityType: "hr_survey",
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"score": *body.Score, "comment": body.Comment},
	})

	envelope.Success(w, r, map[string]any{"status": "received"})
}

func (h *handlers) listIntegrations(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTenant(w, r); !ok {
		return
	}
	envelope.Success(w, r, seedIntegrations())
}

func (h *handlers) updateIntegration(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	payload := map[string]any{}
	_ = decodeJSON(r, &payload)
	payload["id"] = id

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "integration_update",
		EntityType: "integration",
		EntityID:   id,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    payload,
	})

	envelope.Success(w, r, map[string]any{"id": id, "status": "saved"})
}
