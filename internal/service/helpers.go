// Package service contains the agent orchestration and retrieval engine:
// intent classification, skill routing, tool resolution, knowledge
// ingestion/retrieval, and the availability watcher.
package service

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/port/completion"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// promptTemplates holds the parsed prompt templates for all skills.
var promptTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// renderPrompt executes the named template with data.
func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// promptMessages builds the message sequence for a completion call: the
// rendered system prompt, the recent conversation turns, then the user's
// latest message.
func promptMessages(systemPrompt string, history []conversation.Turn, message string) []completion.Message {
	messages := make([]completion.Message, 0, len(history)+2)
	messages = append(messages, completion.Message{Role: "system", Content: systemPrompt})
	for _, t := range history {
		messages = append(messages, completion.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, completion.Message{Role: "user", Content: sanitizePromptInput(message)})
	return messages
}

// sanitizePromptInput strips control characters from user-supplied text
// before it is embedded in an LLM prompt (newlines and tabs are kept).
func sanitizePromptInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncate shortens s to at most maxLen bytes, backing up so the cut never
// splits a multi-byte rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
