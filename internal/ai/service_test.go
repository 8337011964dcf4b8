package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/provider/openai"
	"github.com/brightops/bright-gateway/internal/tenant"
)

type fakeStore struct {
	interactions []*audit.AIInteractionEntry
}

func (f *fakeStore) InsertRequestLog(ctx context.Context, e *audit.RequestLogEntry) error { return nil }
func (f *fakeStore) InsertAuditLog(ctx context.Context, e *audit.AuditLogEntry) error    { return nil }
func (f *fakeStore) InsertAIInteraction(ctx context.Context, e *audit.AIInteractionEntry) error {
	f.interactions = append(f.interactions, e)
	return nil
}

type fakeCompleter struct {
	configured bool
	resp       *openai.Response
	err        error
	calls      int
}

func (f *fakeCompleter) Configured() bool { return f.configured }
func (f *fakeCompleter) CreateResponse(ctx context.Context, req *openai.ResponseRequest) (*openai.Response, error) {
	f.calls++
	return f.resp, f.err
}

func newService(completer Completer, store *fakeStore) *Service {
	logger := slog.New(slog.DiscardHandler)
	return NewService(completer, "gpt-4o-mini", audit.NewRecorder(store, logger))
}

func testTenant() *tenant.Context {
	return &tenant.Context{TenantID: "t1", UserID: "user-1"}
}

func TestChatEmptyMessage(t *testing.T) {
	svc := newService(&fakeCompleter{}, &fakeStore{})
	_, err := svc.Chat(context.Background(), testTenant(), ChatRequest{})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestChatFallbackWithoutProvider(t *testing.T) {
	store := &fakeStore{}
	completer := &fakeCompleter{configured: false}
	svc := newService(completer, store)

	res, err := svc.Chat(context.Background(), testTenant(), ChatRequest{Message: "Qancha xarajat bo'ldi?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if completer.calls != 0 {
		t.Errorf("provider calls = %d, want 0", completer.calls)
	}
	if !strings.Contains(res.Reply, "xarajatlari") {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.ToolUsed == nil || !strings.Contains(res.ToolUsed.Name, "budget") {
		t.Errorf("toolUsed = %+v", res.ToolUsed)
	}
	if res.Warning != "" {
		t.Errorf("warning = %q, want empty", res.Warning)
	}

	if len(store.interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(store.interactions))
	}
	entry := store.interactions[0]
	if !entry.SuccessFlag {
		t.Error("success_flag = false, want true")
	}
	if entry.Role != "AI_COO" || entry.PromptName != "ai_coo" || entry.PromptVersion != "v1" {
		t.Errorf("unexpected prompt identity: %+v", entry)
	}
	if entry.Locale != "uz" {
		t.Errorf("locale = %q, want uz", entry.Locale)
	}
	if entry.TokensIn == 0 || entry.TokensOut == 0 {
		t.Errorf("tokens = %d/%d, want estimated counts", entry.TokensIn, entry.TokensOut)
	}
}

func TestChatProviderFailureDegradesSilently(t *testing.T) {
	store := &fakeStore{}
	completer := &fakeCompleter{configured: true, err: errors.New("API error (status 500): upstream down")}
	svc := newService(completer, store)

	res, err := svc.Chat(context.Background(), testTenant(), ChatRequest{Message: "budget holati?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Warning != WarningProviderError {
		t.Errorf("warning = %q, want %q", res.Warning, WarningProviderError)
	}
	if !strings.Contains(res.Reply, "xarajatlari") {
		t.Errorf("reply = %q, want fallback text", res.Reply)
	}
	if res.ToolUsed == nil || res.ToolUsed.Name != "Provider" || res.ToolUsed.Success {
		t.Errorf("toolUsed = %+v", res.ToolUsed)
	}

	entry := store.interactions[0]
	if entry.SuccessFlag {
		t.Error("success_flag = true, want false")
	}
	if entry.ErrorCode == "" {
		t.Error("expected error_code to be recorded")
	}
}

func TestChatProviderReplacesReply(t *testing.T) {
	store := &fakeStore{}
	completer := &fakeCompleter{
		configured: true,
		resp: &openai.Response{
			Output: []openai.OutputItem{
				{Type: "function_call", Name: "check_budget", Status: "completed"},
				{Type: "message", Content: []openai.ContentPart{{Type: "output_text", Text: "Byudjet yaxshi holatda."}}},
			},
			Usage: &openai.Usage{InputTokens: 25, OutputTokens: 8},
		},
	}
	svc := newService(completer, store)

	res, err := svc.Chat(context.Background(), testTenant(), ChatRequest{Message: "budget?", Locale: "en"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Reply != "Byudjet yaxshi holatda." {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.ToolUsed == nil || res.ToolUsed.Name != "check_budget" || !res.ToolUsed.Success {
		t.Errorf("toolUsed = %+v", res.ToolUsed)
	}

	entry := store.interactions[0]
	if entry.TokensIn != 25 || entry.TokensOut != 8 {
		t.Errorf("tokens = %d/%d, want 25/8", entry.TokensIn, entry.TokensOut)
	}
	if entry.Locale != "en" {
		t.Errorf("locale = %q, want en", entry.Locale)
	}
}

func TestChatEmptyProviderOutputKeepsFallback(t *testing.T) {
	store := &fakeStore{}
	completer := &fakeCompleter{configured: true, resp: &openai.Response{}}
	svc := newService(completer, store)

	res, err := svc.Chat(context.Background(), testTenant(), ChatRequest{Message: "vazifa bormi?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(res.Reply, "vazifa") {
		t.Errorf("reply = %q, want fallback text", res.Reply)
	}
	if res.ToolUsed == nil || res.ToolUsed.Name != "TaskPlanner.list_priorities" {
		t.Errorf("toolUsed = %+v", res.ToolUsed)
	}
	if res.Warning != "" {
		t.Errorf("warning = %q, want empty", res.Warning)
	}
}

func TestChatCarriesTraceID(t *testing.T) {
	store := &fakeStore{}
	svc := newService(&fakeCompleter{}, store)

	ctx := envelope.WithTraceID(context.Background(), "trace-7")
	if _, err := svc.Chat(ctx, testTenant(), ChatRequest{Message: "salom"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if store.interactions[0].TraceID != "trace-7" {
		t.Errorf("trace_id = %q", store.interactions[0].TraceID)
	}
}

func TestFallbackCategories(t *testing.T) {
	tests := []struct {
		message  string
		wantTool string
	}{
		{"Qancha xarajat bo'ldi?", "ShadowCFO.check_budget"},
		{"What is our EXPENSE rate?", "ShadowCFO.check_budget"},
		{"vazifalarim qanday?", "TaskPlanner.list_priorities"},
		{"oylik hisobot kerak", "ReportGenerator.generate"},
		{"salom", ""},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply, tool := fallbackReply(tt.message)
			if reply == "" {
				t.Fatal("empty reply")
			}
			if tt.wantTool == "" {
				if tool != nil {
					t.Errorf("tool = %+v, want nil", tool)
				}
				return
			}
			if tool == nil || tool.Name != tt.wantTool {
				t.Errorf("tool = %+v, want %q", tool, tt.wantTool)
			}
		})
	}
}

func TestRegistryShape(t *testing.T) {
	tools := Registry()
	if len(tools) != 3 {
		t.Fatalf("tools = %d, want 3", len(tools))
	}
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.ToolName] = true
		if tool.Handler == "" || tool.InputSchema == nil || tool.OutputSchema == nil {
			t.Errorf("incomplete tool %q", tool.ToolName)
		}
	}
	for _, want := range []string{"classify_inbox", "create_task", "search_docs"} {
		if !names[want] {
			t.Errorf("missing tool %q", want)
		}
	}
}
