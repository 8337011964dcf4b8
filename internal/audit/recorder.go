package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is the durable sink for log entries. Implemented by the SQL
// store; tests substitute fakes.
type Store interface {
	InsertRequestLog(ctx context.Context, entry *RequestLogEntry) error
	InsertAuditLog(ctx context.Context, entry *AuditLogEntry) error
	InsertAIInteraction(ctx context.Context, entry *AIInteractionEntry) error
}

// Recorder performs fire-and-forget durable writes. A failed write is
// reported on the diagnostic logger and never propagated to the caller:
// observability must not be able to break the feature it observes.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// LogRequest writes one request log entry. Errors are swallowed.
func (r *Recorder) LogRequest(ctx context.Context, entry *RequestLogEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := r.store.InsertRequestLog(ctx, entry); err != nil {
		r.logger.Error("request_log insert failed",
			slog.String("trace_id", entry.TraceID),
			slog.String("error", err.Error()),
		)
		return
	}
	r.logger.Info("request logged",
		slog.String("category", "request"),
		slog.String("trace_id", entry.TraceID),
		slog.String("method", entry.Method),
		slog.String("path", entry.Path),
		slog.Int("status_code", entry.StatusCode),
		slog.Int64("duration_ms", entry.DurationMS),
	)
}

// LogAudit writes one audit entry. Errors are swallowed.
func (r *Recorder) LogAudit(ctx context.Context, entry *AuditLogEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := r.store.InsertAuditLog(ctx, entry); err != nil {
		r.logger.Error("audit_log insert failed",
			slog.String("trace_id", entry.TraceID),
			slog.String("event_type", entry.EventType),
			slog.String("error", err.Error()),
		)
		return
	}
	r.logger.Info(entry.EventType,
		slog.String("category", "audit"),
		slog.String("trace_id", entry.TraceID),
		slog.String("tenant_id", entry.TenantID),
		slog.String("entity_type", entry.EntityType),
		slog.String("entity_id", entry.EntityID),
	)
}

// LogAIInteraction writes one AI interaction entry, truncating excerpts
// first. Errors are swallowed.
func (r *Recorder) LogAIInteraction(ctx context.Context, entry *AIInteractionEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.InputExcerpt = Truncate(entry.InputExcerpt, ExcerptLimit)
	entry.OutputExcerpt = Truncate(entry.OutputExcerpt, ExcerptLimit)

	if err := r.store.InsertAIInteraction(ctx, entry); err != nil {
		r.logger.Error("ai_interaction insert failed",
			slog.String("trace_id", entry.TraceID),
			slog.String("error", err.Error()),
		)
		return
	}
	status := "ok"
	if !entry.SuccessFlag {
		status = "error"
	}
	r.logger.Info("AI "+entry.PromptName+" "+status,
		slog.String("category", "ai"),
		slog.String("trace_id", entry.TraceID),
		slog.String("tenant_id", entry.TenantID),
		slog.Int64("latency_ms", entry.LatencyMS),
		slog.Bool("success", entry.SuccessFlag),
	)
}
