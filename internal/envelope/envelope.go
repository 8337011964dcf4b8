// Package envelope builds the uniform {data, meta} response wrapper
// returned by every route, and carries the request-scoped trace id used
// to correlate responses with log entries.
package envelope

import (
	"context"
	"encoding/json"
	"net/http"
)

type traceIDKey struct{}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID retrieves the trace id from context.
// Returns an empty string if no trace id is set.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Error is a single entry in a failure envelope's errors array.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Envelope is the wire shape shared by success and failure responses.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta"`
}

// Success writes a 200 envelope with the given data.
func Success(w http.ResponseWriter, r *http.Request, data any) {
	SuccessMeta(w, r, data, nil)
}

// SuccessMeta writes a 200 envelope with extra meta keys merged in
// alongside success and trace_id.
func SuccessMeta(w http.ResponseWriter, r *http.Request, data any, extra map[string]any) {
	meta := map[string]any{
		"success":  true,
		"trace_id": TraceID(r.Context()),
	}
	for k, v := range extra {
		meta[k] = v
	}
	writeJSON(w, http.StatusOK, Envelope{Data: data, Meta: meta})
}

// Failure writes an error envelope with the given status and a single
// errors entry.
func Failure(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	FailureFields(w, r, status, code, message, nil)
}

// FailureFields writes an error envelope carrying field-level detail.
func FailureFields(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]any) {
	meta := map[string]any{
		"success":  false,
		"trace_id": TraceID(r.Context()),
		"errors":   []Error{{Code: code, Message: message, Fields: fields}},
	}
	writeJSON(w, status, Envelope{Data: nil, Meta: meta})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a map of JSON-safe values cannot fail; ignore the error
	// like the status code already committed to the client.
	_ = json.NewEncoder(w).Encode(body)
}
