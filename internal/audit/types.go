// Package audit defines the gateway's durable observability records:
// one request log entry per request, one audit entry per privileged
// mutation, and one AI interaction entry per chat exchange. All three
// tables are append-only; nothing in the gateway updates or deletes
// them.
package audit

import "time"

// RequestLogEntry records one inbound request. Written exactly once per
// request in a trailing stage, regardless of outcome.
type RequestLogEntry struct {
	TraceID    string    `db:"trace_id"`
	Method     string    `db:"method"`
	Path       string    `db:"path"`
	StatusCode int       `db:"status_code"`
	DurationMS int64     `db:"duration_ms"`
	TenantID   string    `db:"tenant_id"`
	UserID     string    `db:"user_id"`
	IP         string    `db:"ip"`
	UserAgent  string    `db:"user_agent"`
	CreatedAt  time.Time `db:"created_at"`
}

// AuditLogEntry records one privileged domain event, written
// synchronously after the underlying mutation succeeds, never before.
type AuditLogEntry struct {
	TenantID   string         `db:"tenant_id"`
	UserID     string         `db:"user_id"`
	EventType  string         `db:"event_type"`
	EntityType string         `db:"entity_type"`
	EntityID   string         `db:"entity_id"`
	TraceID    string         `db:"trace_id"`
	Payload    map[string]any `db:"-"`
	CreatedAt  time.Time      `db:"created_at"`
}

// ToolUse describes one tool invocation (real or synthetic) within an
// AI exchange.
type ToolUse struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
}

// AIInteractionEntry records one AI chat exchange. Kept separate from
// the audit log because AI exchanges have different retention and
// inspection semantics. Input and output excerpts are truncated before
// storage; the full conversation is never persisted.
type AIInteractionEntry struct {
	TenantID      string    `db:"tenant_id"`
	UserID        string    `db:"user_id"`
	Role          string    `db:"role"`
	PromptName    string    `db:"prompt_name"`
	PromptVersion string    `db:"prompt_version"`
	Locale        string    `db:"locale"`
	InputExcerpt  string    `db:"input_excerpt"`
	OutputExcerpt string    `db:"output_excerpt"`
	ToolsUsed     []ToolUse `db:"-"`
	SuccessFlag   bool      `db:"success_flag"`
	ErrorCode     string    `db:"error_code"`
	LatencyMS     int64     `db:"latency_ms"`
	TokensIn      int       `db:"tokens_in"`
	TokensOut     int       `db:"tokens_out"`
	TraceID       string    `db:"trace_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// ExcerptLimit bounds stored prompt and reply excerpts.
const ExcerptLimit = 500

// Truncate bounds s to at most max characters, rune-safe.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
