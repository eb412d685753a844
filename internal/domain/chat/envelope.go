// Package chat defines the response envelope assembled once per chat turn.
package chat

import "strings"

// Envelope is the uniform result of one orchestration call. It is an
// internal type, not a wire format; handlers decide how to serialize it.
type Envelope struct {
	FinalText  string `json:"final_text"`
	UserIntent string `json:"user_intent"`
	UserQuery  string `json:"user_query"`
	TokensIn   int    `json:"tokens_in"`
	TokensOut  int    `json:"tokens_out"`
}

// NewEnvelope builds an envelope with all three text fields trimmed.
func NewEnvelope(finalText, userIntent, userQuery string) *Envelope {
	return &Envelope{
		FinalText:  strings.TrimSpace(finalText),
		UserIntent: strings.TrimSpace(userIntent),
		UserQuery:  strings.TrimSpace(userQuery),
	}
}

// AddUsage accumulates token counters from a completion call.
func (e *Envelope) AddUsage(tokensIn, tokensOut int) {
	e.TokensIn += tokensIn
	e.TokensOut += tokensOut
}
