package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightops/bright-gateway/internal/audit"
)

// Ensure Store implements the recorder's sink.
var _ audit.Store = (*Store)(nil)

// InsertRequestLog appends one request log row.
func (s *Store) InsertRequestLog(ctx context.Context, entry *audit.RequestLogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_logs (trace_id, method, path, status_code, duration_ms, tenant_id, user_id, ip, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TraceID, entry.Method, entry.Path, entry.StatusCode, entry.DurationMS,
		nullable(entry.TenantID), nullable(entry.UserID), nullable(entry.IP), nullable(entry.UserAgent),
		entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}
	return nil
}

// InsertAuditLog appends one audit row.
func (s *Store) InsertAuditLog(ctx context.Context, entry *audit.AuditLogEntry) error {
	payload := entry.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (tenant_id, user_id, event_type, entity_type, entity_id, trace_id, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TenantID, nullable(entry.UserID), entry.EventType,
		nullable(entry.EntityType), nullable(entry.EntityID), entry.TraceID,
		string(payloadJSON), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// InsertAIInteraction appends one AI interaction row.
func (s *Store) InsertAIInteraction(ctx context.Context, entry *audit.AIInteractionEntry) error {
	tools := entry.ToolsUsed
	if tools == nil {
		tools = []audit.ToolUse{}
	}
	toolsJSON, err := json.Marshal(tools)
	if err != nil {
		return fmt.Errorf("failed to marshal tools_used: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ai_interactions (tenant_id, user_id, role, prompt_name, prompt_version, locale,
		 input_excerpt, output_excerpt, tools_used, success_flag, error_code, latency_ms, tokens_in, tokens_out, trace_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TenantID, nullable(entry.UserID), entry.Role, entry.PromptName, entry.PromptVersion, entry.Locale,
		entry.InputExcerpt, entry.OutputExcerpt, string(toolsJSON), entry.SuccessFlag,
		nullable(entry.ErrorCode), entry.LatencyMS, entry.TokensIn, entry.TokensOut, entry.TraceID,
		entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ai interaction: %w", err)
	}
	return nil
}

// nullable maps an empty string to NULL so optional columns stay NULL
// instead of storing empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
