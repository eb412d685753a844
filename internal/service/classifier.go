package service

import (
	"context"
	"fmt"

	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/intent"
	"github.com/solvik/agenthub/internal/port/completion"
)

// classifierData provides data for the intent classifier prompt template.
type classifierData struct {
	AgentName string
}

// IntentClassifier labels a user message with one of the closed set of
// intents via a single-shot completion call.
type IntentClassifier struct {
	llm completion.Service
}

// NewIntentClassifier creates an IntentClassifier.
func NewIntentClassifier(llm completion.Service) *IntentClassifier {
	return &IntentClassifier{llm: llm}
}

// Classify returns the intent of message, given the recent conversation
// history for multi-turn context. Empty or unparseable model output is a
// propagated error: no routing decision can be made without a label, so
// this step never degrades silently.
func (c *IntentClassifier) Classify(ctx context.Context, profile *agent.Profile, history []conversation.Turn, message string) (intent.Intent, *completion.Response, error) {
	systemPrompt, err := renderPrompt("intent_classifier.tmpl", classifierData{AgentName: profile.Name})
	if err != nil {
		return "", nil, fmt.Errorf("render classifier prompt: %w", err)
	}

	resp, err := c.llm.Complete(ctx, completion.Request{
		Messages:    promptMessages(systemPrompt, history, message),
		Temperature: 0, // deterministic labels
		MaxTokens:   16,
	})
	if err != nil {
		return "", nil, fmt.Errorf("classify intent: %w", err)
	}

	label, err := intent.Parse(resp.Content)
	if err != nil {
		return "", nil, fmt.Errorf("classify intent: %w (output: %q)", err, truncate(resp.Content, 80))
	}

	return label, resp, nil
}
