package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeStore struct {
	requests     []*RequestLogEntry
	audits       []*AuditLogEntry
	interactions []*AIInteractionEntry
	err          error
}

func (f *fakeStore) InsertRequestLog(ctx context.Context, e *RequestLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, e)
	return nil
}

func (f *fakeStore) InsertAuditLog(ctx context.Context, e *AuditLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.audits = append(f.audits, e)
	return nil
}

func (f *fakeStore) InsertAIInteraction(ctx context.Context, e *AIInteractionEntry) error {
	if f.err != nil {
		return f.err
	}
	f.interactions = append(f.interactions, e)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 2000)
	if got := Truncate(long, ExcerptLimit); len([]rune(got)) != 500 {
		t.Errorf("Truncate(2000 chars) length = %d, want 500", len([]rune(got)))
	}
	if got := Truncate("short", ExcerptLimit); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	// Rune-safe: multi-byte characters are not split.
	uz := strings.Repeat("o'", 600)
	got := Truncate(uz, ExcerptLimit)
	if len([]rune(got)) != 500 {
		t.Errorf("Truncate(runes) length = %d, want 500", len([]rune(got)))
	}
}

func TestLogRequest(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, discardLogger())

	rec.LogRequest(context.Background(), &RequestLogEntry{
		TraceID: "t-1", Method: "GET", Path: "/v1/tasks", StatusCode: 200, DurationMS: 12,
	})

	if len(store.requests) != 1 {
		t.Fatalf("stored %d request entries, want 1", len(store.requests))
	}
	if store.requests[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestLogRequest_WriteFailureSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	rec := NewRecorder(store, discardLogger())

	// Must not panic or propagate.
	rec.LogRequest(context.Background(), &RequestLogEntry{TraceID: "t-1"})
	rec.LogAudit(context.Background(), &AuditLogEntry{TraceID: "t-1", EventType: "task_create"})
	rec.LogAIInteraction(context.Background(), &AIInteractionEntry{TraceID: "t-1"})
}

func TestLogAIInteraction_TruncatesExcerpts(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, discardLogger())

	rec.LogAIInteraction(context.Background(), &AIInteractionEntry{
		TraceID:       "t-1",
		InputExcerpt:  strings.Repeat("a", 2000),
		OutputExcerpt: strings.Repeat("b", 600),
	})

	if len(store.interactions) != 1 {
		t.Fatalf("stored %d interactions, want 1", len(store.interactions))
	}
	got := store.interactions[0]
	if len(got.InputExcerpt) != 500 {
		t.Errorf("InputExcerpt length = %d, want 500", len(got.InputExcerpt))
	}
	if len(got.OutputExcerpt) != 500 {
		t.Errorf("OutputExcerpt length = %d, want 500", len(got.OutputExcerpt))
	}
}
