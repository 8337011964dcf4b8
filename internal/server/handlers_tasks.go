package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
	"github.com/brightops/bright-gateway/internal/tenant"
)

var (
	allowedTaskStatuses   = map[string]bool{"todo": true, "in_progress": true, "review": true, "done": true}
	allowedTaskPriorities = map[string]bool{"high": true, "medium": true, "low": true}
)

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), tc.TenantID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Tasks yuklashda xatolik.")
		return
	}
	if len(tasks) == 0 {
		envelope.Success(w, r, seedTasks())
		return
	}
	envelope.Success(w, r, tasks)
}

type taskPayload struct {
	Title    *string           `json:"title"`
	Status   *string           `json:"status"`
	Priority *string           `json:"priority"`
	Assignee *storage.Assignee `json:"assignee"`
	DueDate  *time.Time        `json:"dueDate"`
	Tags     []string          `json:"tags"`
}

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var body taskPayload
	if err := decodeJSON(r, &body); err != nil || body.Title == nil || *body.Title == "" {
		envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title majburiy.")
		return
	}
	status := "todo"
	if body.Status != nil {
		if !allowedTaskStatuses[*body.Status] {
			envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status noto'g'ri.")
			return
		}
		status = *body.Status
	}
	priority := "medium"
	if body.Priority != nil {
		if !allowedTaskPriorities[*body.Priority] {
			envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority noto'g'ri.")
			return
		}
		priority = *body.Priority
	}

	task := &storage.Task{
		TenantID: tc.TenantID,
		Title:    *body.Title,
		Status:   status,
		Priority: priority,
		Assignee: body.Assignee,
		DueDate:  body.DueDate,
		Tags:     body.Tags,
	}
	if err := h.store.CreateTask(r.Context(), task); err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Task saqlashda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "task_create",
		EntityType: "task",
		EntityID:   task.ID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"task_id": task.ID, "title": task.Title},
	})

	if task.Assignee != nil && task.Assignee.ID != "" {
		h.notifyAssignment(r, tc, task.Assignee.ID, task.ID, task.Title)
	}

	envelope.Success(w, r, task)
}

func (h *handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	taskID := chi.URLParam(r, "id")

	var raw map[string]json.RawMessage
	_ = decodeJSON(r, &raw)

	var up storage.TaskUpdate
	var assigneeID string
	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err == nil {
			up.Title = &title
		}
	}
	if v, ok := raw["status"]; ok {
		var status string
		if err := json.Unmarshal(v, &status); err != nil || !allowedTaskStatuses[status] {
			envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status noto'g'ri.")
			return
		}
		up.Status = &status
	}
	if v, ok := raw["priority"]; ok {
		var priority string
		if err := json.Unmarshal(v, &priority); err != nil || !allowedTaskPriorities[priority] {
			envelope.Failure(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority noto'g'ri.")
			return
		}
		up.Priority = &priority
	}
	if v, ok := raw["assignee"]; ok {
		up.AssigneeSet = true
		var assignee *storage.Assignee
		if err := json.Unmarshal(v, &assignee); err == nil && assignee != nil {
			up.Assignee = assignee
			assigneeID = assignee.ID
		}
	}
	if v, ok := raw["dueDate"]; ok {
		up.DueDateSet = true
		var due *time.Time
		if err := json.Unmarshal(v, &due); err == nil {
			up.DueDate = due
		}
	}
	if v, ok := raw["tags"]; ok {
		up.TagsSet = true
		var tags []string
		if err := json.Unmarshal(v, &tags); err == nil {
			up.Tags = tags
		}
	}

	if up.Empty() {
		envelope.Failure(w, r, http.StatusBadRequest, "INVALID_PAYLOAD", "Yangilash maydonlari yo'q.")
		return
	}

	task, err := h.store.UpdateTask(r.Context(), tc.TenantID, taskID, up)
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Task topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Task yangilashda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "task_update",
		EntityType: "task",
		EntityID:   task.ID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"task_id": task.ID},
	})

	if assigneeID != "" {
		h.notifyAssignment(r, tc, assigneeID, task.ID, task.Title)
	}

	envelope.Success(w, r, task)
}

func (h *handlers) acknowledgeTask(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	if tc.UserID == "" {
		envelope.Failure(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "Tasdiqlash uchun tizimga kirish kerak.")
		return
	}
	taskID := chi.URLParam(r, "id")

	task, err := h.store.GetTask(r.Context(), tc.TenantID, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Task topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Tasdiqlashda xatolik.")
		return
	}

	if task.Assignee == nil || task.Assignee.ID != tc.UserID {
		envelope.Failure(w, r, http.StatusForbidden, "FORBIDDEN", "Faqat mas'ul tasdiqlashi mumkin.")
		return
	}

	acked, err := h.store.AcknowledgeTask(r.Context(), tc.TenantID, taskID, time.Now().UTC())
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Tasdiqlashda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "task_acknowledge",
		EntityType: "task",
		EntityID:   taskID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"task_id": taskID},
	})

	envelope.Success(w, r, acked)
}

func (h *handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}
	taskID := chi.URLParam(r, "id")

	err := h.store.DeleteTask(r.Context(), tc.TenantID, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		envelope.Failure(w, r, http.StatusNotFound, "NOT_FOUND", "Task topilmadi.")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Task o'chirishda xatolik.")
		return
	}

	h.recorder.LogAudit(r.Context(), &audit.AuditLogEntry{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		EventType:  "task_delete",
		EntityType: "task",
		EntityID:   taskID,
		TraceID:    envelope.TraceID(r.Context()),
		Payload:    map[string]any{"task_id": taskID},
	})

	envelope.Success(w, r, map[string]any{"deleted": true})
}

// notifyAssignment writes a task-assignment notification. Failures are
// swallowed; a missed notification must not fail the task mutation.
func (h *handlers) notifyAssignment(r *http.Request, tc *tenant.Context, assigneeID, taskID, title string) {
	err := h.store.InsertNotification(r.Context(), &storage.Notification{
		TenantID: tc.TenantID,
		UserID:   assigneeID,
		Type:     "task_assigned",
		Title:    "Yangi vazifa biriktirildi",
		Message:  fmt.Sprintf("%q vazifasi sizga biriktirildi. Statusni tasdiqlang.", title),
		TaskID:   taskID,
	})
	if err != nil {
		h.logger.Error("assignment notification failed",
			"task_id", taskID, "assignee_id", assigneeID, "error", err)
	}
}
