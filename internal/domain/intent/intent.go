// Package intent defines the closed set of user intents the classifier may
// produce and the parsing rule that rejects everything else at the boundary.
package intent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid indicates classifier output that is empty or outside the
// closed intent set.
var ErrInvalid = errors.New("invalid intent label")

// Intent is the classified purpose of a user message.
type Intent string

const (
	Greeting        Intent = "GREETING"
	StructuredQuery Intent = "STRUCTURED_QUERY"
	KnowledgeQuery  Intent = "KNOWLEDGE_QUERY"
	Unclear         Intent = "UNCLEAR"
)

// All lists every known intent, in classifier prompt order.
func All() []Intent {
	return []Intent{Greeting, StructuredQuery, KnowledgeQuery, Unclear}
}

// Valid reports whether i is a member of the closed intent set.
func Valid(i Intent) bool {
	switch i {
	case Greeting, StructuredQuery, KnowledgeQuery, Unclear:
		return true
	}
	return false
}

// Parse normalizes raw classifier output (trim, upper-case) and matches it
// against the closed intent set. Empty or unknown output is an error, not
// Unclear: no routing decision can be made without a definite label.
func Parse(raw string) (Intent, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty classifier output: %w", ErrInvalid)
	}
	i := Intent(s)
	if !Valid(i) {
		return "", fmt.Errorf("unknown intent %q: %w", s, ErrInvalid)
	}
	return i, nil
}
