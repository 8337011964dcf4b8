package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
)

func (h *handlers) listDocs(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	docs, err := h.store.ListDocuments(r.Context(), tc.TenantID, q, 50)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Docs list xatoligi.")
		return
	}

	type docView struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Owner     string `json:"owner"`
		Status    string `json:"status"`
		UpdatedAt string `json:"updated_at"`
		Content   string `json:"content"`
	}
	views := make([]docView, 0, len(docs))
	for _, doc := range docs {
		owner := "Legal"
		if v, ok := doc.Metadata["owner"].(string); ok && v != "" {
			owner = v
		}
		status := "draft"
		if v, ok := doc.Metadata["status"].(string); ok && v != "" {
			status = v
		}
		views = append(views, docView{
			ID:        doc.ID,
			Title:     doc.Title,
			Owner:     owner,
			Status:    status,
			UpdatedAt: doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Content:   doc.Content,
		})
	}
	envelope.Success(w, r, views)
}

func (h *handlers) getDoc(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	doc, err := h.store.GetDocument(r.Context(), tc.TenantID, chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Document topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Document yuklashda xatolik.")
		return
	}
	envelope.Success(w, r, doc)
}

type docPayload struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

func (h *handlers) indexDoc(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body docPayload
	if err := decodeJSON(r, &body); err != nil || body.Title == "" || body.Content == "" {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title va content majburiy.")
		return
	}

	doc := &storage.Document{
		TenantID: tc.TenantID,
		Title:    body.Title,
		Content:  body.Content,
		Metadata: body.Metadata,
	}
	if err := h.store.CreateDocument(r.Context(), doc); err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Document saqlashda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "doc_index",
		EntityType: "document",
		EntityID:   doc.ID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"document_id": doc.ID, "title": doc.Title},
	})

	envelope.Success(w, r, map[string]any{
		"document_id": doc.ID,
		"chunks":      len(storage.SplitChunks(doc.Content)),
	})
}

func (h *handlers) updateDoc(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var body docPayload
	_ = decodeJSON(r, &body)
	if body.Title == "" && body.Content == "" && body.Metadata == nil {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title/content/metadata dan biri majburiy.")
		return
	}

	var up storage.DocumentUpdate
	if body.Title != "" {
		up.Title = &body.Title
	}
	if body.Content != "" {
		up.Content = &body.Content
	}
	if body.Metadata != nil {
		up.Metadata = body.Metadata
	}

	doc, err := h.store.UpdateDocument(r.Context(), tc.TenantID, id, up)
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Document topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Document yangilashda xatolik.")
		return
	}

	chunks := 0
	if up.Content != nil {
		chunks = len(storage.SplitChunks(*up.Content))
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "doc_update",
		EntityType: "document",
		EntityID:   id,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"document_id": id, "title": doc.Title},
	})

	envelope.Success(w, r, map[string]any{"document_id": id, "chunks": chunks})
}

func (h *handlers) deleteDoc(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	err := h.store.DeleteDocument(r.Context(), tc.TenantID, id)
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Document topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Document o'chirishda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "doc_delete",
		EntityType: "document",
		EntityID:   id,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"document_id": id},
	})

	envelope.Success(w, r, map[string]any{"document_id": id})
}

func (h *handlers) searchDocs(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Query == "" {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "query majburiy.")
		return
	}

	limit := body.TopK
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	results, err := h.store.SearchChunks(r.Context(), tc.TenantID, body.Query, limit)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Search xatoligi.")
		return
	}

	envelope.Success(w, r, map[string]any{
		"query":   body.Query,
		"results": results,
	})
}
