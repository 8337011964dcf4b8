package openai

import "strings"

// InputMessage is one message in a Responses API request.
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseRequest is the Responses API request body.
type ResponseRequest struct {
	Model string         `json:"model"`
	Input []InputMessage `json:"input"`
}

// Response is the subset of the Responses API reply the gateway reads.
type Response struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []OutputItem `json:"output"`
	Usage  *Usage       `json:"usage,omitempty"`
}

// OutputItem is one entry in the response output array.
type OutputItem struct {
	Type    string        `json:"type"`
	Content []ContentPart `json:"content,omitempty"`
	// Set on type "function_call" items.
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ContentPart is one piece of message content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage reports token counts when the API returns them.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text joins every non-empty text part in the output, newline separated.
func (r *Response) Text() string {
	var parts []string
	for _, item := range r.Output {
		for _, part := range item.Content {
			if part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// FirstToolCall returns the first function_call output item, if any.
func (r *Response) FirstToolCall() (OutputItem, bool) {
	for _, item := range r.Output {
		if item.Type == "function_call" {
			return item, true
		}
	}
	return OutputItem{}, false
}
