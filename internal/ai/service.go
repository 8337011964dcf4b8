// Package ai orchestrates the chat endpoint: a deterministic keyword
// fallback always computed first, one optional provider attempt, and an
// interaction record written regardless of outcome. The endpoint's
// availability contract is "always answer something": a provider
// failure degrades to the fallback reply and surfaces only as a warning
// field, never as an HTTP error.
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/provider/openai"
	"github.com/brightops/bright-gateway/internal/tenant"
)

// WarningProviderError is the warning value attached to a chat response
// when the provider attempt failed and the fallback reply was used.
const WarningProviderError = "PROVIDER_ERROR"

const systemInstruction = "Sen AI Business Concierge. Javoblar qisqa, amaliy va foydali bo'lsin."

// ErrEmptyMessage rejects chat requests without a message.
var ErrEmptyMessage = errors.New("message is required")

// Completer is the provider surface the service needs. Satisfied by
// *openai.Client; tests substitute fakes.
type Completer interface {
	Configured() bool
	CreateResponse(ctx context.Context, req *openai.ResponseRequest) (*openai.Response, error)
}

// ChatRequest is one inbound chat message.
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

// ChatResult is the chat payload returned to the caller.
type ChatResult struct {
	Reply    string         `json:"reply"`
	ToolUsed *audit.ToolUse `json:"toolUsed"`
	Warning  string         `json:"warning,omitempty"`
}

// Service runs chat exchanges.
type Service struct {
	completer Completer
	model     string
	recorder  *audit.Recorder
	counter   *TokenCounter
}

// NewService creates the chat service. completer may be unconfigured;
// the service then answers from the fallback alone.
func NewService(completer Completer, model string, recorder *audit.Recorder) *Service {
	return &Service{
		completer: completer,
		model:     model,
		recorder:  recorder,
		counter:   NewTokenCounter(),
	}
}

// Chat answers one message. The fallback draft is computed first and
// survives unless the provider returns non-empty output. Every exchange
// is recorded, including failed provider attempts.
func (s *Service) Chat(ctx context.Context, tc *tenant.Context, req ChatRequest) (*ChatResult, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	locale := req.Locale
	if locale == "" {
		locale = "uz"
	}

	start := time.Now()
	reply, toolUsed := fallbackReply(req.Message)

	var providerErr string
	tokensIn, tokensOut := 0, 0

	if s.completer != nil && s.completer.Configured() {
		resp, err := s.completer.CreateResponse(ctx, &openai.ResponseRequest{
			Model: s.model,
			Input: []openai.InputMessage{
				{Role: "system", Content: systemInstruction},
				{Role: "user", Content: req.Message},
			},
		})
		if err != nil {
			providerErr = err.Error()
			toolUsed = &audit.ToolUse{Name: "Provider", Success: false, ErrorCode: providerErr}
		} else {
			if text := resp.Text(); text != "" {
				reply = text
			}
			if call, ok := resp.FirstToolCall(); ok {
				name := call.Name
				if name == "" {
					name = "unknown"
				}
				toolUsed = &audit.ToolUse{
					Name:      name,
					Success:   call.Status == "completed" || call.Status == "success",
					ErrorCode: call.Error,
				}
			}
			if resp.Usage != nil {
				tokensIn = resp.Usage.InputTokens
				tokensOut = resp.Usage.OutputTokens
			}
		}
	}

	if tokensIn == 0 {
		tokensIn = s.counter.Count(s.model, systemInstruction+"\n"+req.Message)
	}
	if tokensOut == 0 {
		tokensOut = s.counter.Count(s.model, reply)
	}

	toolsUsed := []audit.ToolUse{}
	if toolUsed != nil {
		toolsUsed = append(toolsUsed, *toolUsed)
	}

	s.recorder.LogAIInteraction(ctx, &audit.AIInteractionEntry{
		TenantID:      tc.TenantID,
		UserID:        tc.UserID,
		Role:          "AI_COO",
		PromptName:    "ai_coo",
		PromptVersion: "v1",
		Locale:        locale,
		InputExcerpt:  req.Message,
		OutputExcerpt: reply,
		ToolsUsed:     toolsUsed,
		SuccessFlag:   providerErr == "",
		ErrorCode:     providerErr,
		LatencyMS:     time.Since(start).Milliseconds(),
		TokensIn:      tokensIn,
		TokensOut:     tokensOut,
		TraceID:       envelope.TraceID(ctx),
	})

	result := &ChatResult{Reply: reply, ToolUsed: toolUsed}
	if providerErr != "" {
		result.Warning = WarningProviderError
	}
	return result, nil
}
