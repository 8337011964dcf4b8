package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
)

func (h *handlers) listInbox(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	items, err := h.store.ListInbox(r.Context(), tc.TenantID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Inbox yuklashda xatolik.")
		return
	}
	if len(items) == 0 {
		envelope.Success(w, r, seedInbox())
		return
	}
	envelope.Success(w, r, items)
}

func (h *handlers) ingestInbox(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body struct {
		Source          string          `json:"source"`
		Sender          *storage.Sender `json:"sender"`
		Subject         string          `json:"subject"`
		Preview         string          `json:"preview"`
		Timestamp       *time.Time      `json:"timestamp"`
		Category        string          `json:"category"`
		Priority        string          `json:"priority"`
		Tags            []string        `json:"tags"`
		SourceMessageID string          `json:"source_message_id"`
	}
	if err := decodeJSON(r, &body); err != nil || body.SourceMessageID == "" {
		envelope.Failure(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "source_message_id talab qilinadi.")
		return
	}

	// Idempotency: a repeated source message returns the stored item.
	if existing, err := h.store.FindInboxBySourceMessageID(r.Context(), tc.TenantID, body.SourceMessageID); err == nil {
		envelope.SuccessMeta(w, r, existing, map[string]any{"idempotent": true})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Inbox saqlashda xatolik.")
		return
	}

	item := &storage.InboxItem{
		TenantID:        tc.TenantID,
		Source:          orDefault(body.Source, "email"),
		Subject:         orDefault(body.Subject, "(no subject)"),
		Preview:         body.Preview,
		Timestamp:       time.Now().UTC(),
		Category:        orDefault(body.Category, "General"),
		Priority:        orDefault(body.Priority, "Medium"),
		Tags:            body.Tags,
		SourceMessageID: body.SourceMessageID,
	}
	if body.Sender != nil {
		item.Sender = *body.Sender
	} else {
		item.Sender = storage.Sender{Name: "Unknown"}
	}
	if body.Timestamp != nil {
		item.Timestamp = *body.Timestamp
	}

	if err := h.store.InsertInboxItem(r.Context(), item); err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Inbox saqlashda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "inbox_ingest",
		EntityType: "inbox_item",
		EntityID:   item.ID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"source_message_id": item.SourceMessageID, "source": item.Source},
	})

	envelope.SuccessMeta(w, r, item, map[string]any{"idempotent": false})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
