package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path = %q, want /responses", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		var req ResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(Response{
			ID: "resp_1",
			Output: []OutputItem{
				{Type: "reasoning"},
				{Type: "message", Content: []ContentPart{
					{Type: "output_text", Text: "Salom,"},
					{Type: "output_text", Text: "dunyo"},
				}},
			},
			Usage: &Usage{InputTokens: 10, OutputTokens: 4},
		})
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	resp, err := client.CreateResponse(context.Background(), &ResponseRequest{
		Model: "gpt-4o-mini",
		Input: []InputMessage{
			{Role: "system", Content: "You are an assistant."},
			{Role: "user", Content: "salom"},
		},
	})
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if got := resp.Text(); got != "Salom,\ndunyo" {
		t.Errorf("text = %q", got)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 10 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestCreateResponseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := client.CreateResponse(context.Background(), &ResponseRequest{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestConfigured(t *testing.T) {
	if NewClient("").Configured() {
		t.Error("empty key should not be configured")
	}
	if !NewClient("sk").Configured() {
		t.Error("non-empty key should be configured")
	}
}
