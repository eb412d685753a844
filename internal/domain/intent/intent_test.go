package intent_test

import (
	"errors"
	"testing"

	"github.com/solvik/agenthub/internal/domain/intent"
)

func TestParseNormalizes(t *testing.T) {
	cases := map[string]intent.Intent{
		"GREETING":           intent.Greeting,
		"greeting":           intent.Greeting,
		"  Structured_Query\n": intent.StructuredQuery,
		"knowledge_query":    intent.KnowledgeQuery,
		"UNCLEAR":            intent.Unclear,
	}
	for raw, want := range cases {
		got, err := intent.Parse(raw)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseEmptyIsError(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		if _, err := intent.Parse(raw); !errors.Is(err, intent.ErrInvalid) {
			t.Errorf("Parse(%q) expected ErrInvalid, got %v", raw, err)
		}
	}
}

func TestParseUnknownIsError(t *testing.T) {
	for _, raw := range []string{"BANTER", "GREETING PLEASE", "greetings"} {
		if _, err := intent.Parse(raw); !errors.Is(err, intent.ErrInvalid) {
			t.Errorf("Parse(%q) expected ErrInvalid, got %v", raw, err)
		}
	}
}

func TestValidCoversClosedSet(t *testing.T) {
	for _, i := range intent.All() {
		if !intent.Valid(i) {
			t.Errorf("expected %q valid", i)
		}
	}
	if intent.Valid(intent.Intent("OTHER")) {
		t.Error("expected OTHER invalid")
	}
}
