// Package completion defines the port for one-shot chat completion calls.
package completion

import "context"

// Message is a single chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a stateless, one-shot completion request. All conversational
// context travels explicitly in Messages; the service holds no session state.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response carries the model's text output and token usage.
type Response struct {
	Content   string `json:"content"`
	TokensIn  int    `json:"tokens_in"`
	TokensOut int    `json:"tokens_out"`
}

// Service is the port interface for the completion provider.
type Service interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
