package conversation_test

import (
	"testing"

	"github.com/solvik/agenthub/internal/domain/conversation"
)

func TestRecentReturnsLastTurns(t *testing.T) {
	h := &conversation.History{}
	for i := 0; i < 5; i++ {
		h.Turns = append(h.Turns, conversation.Turn{Content: string(rune('a' + i))})
	}

	got := h.Recent(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Content != "d" || got[1].Content != "e" {
		t.Errorf("expected last two turns oldest first, got %v", got)
	}
}

func TestRecentShortHistory(t *testing.T) {
	h := &conversation.History{Turns: []conversation.Turn{{Content: "only"}}}
	if got := h.Recent(10); len(got) != 1 {
		t.Errorf("expected full history, got %d turns", len(got))
	}
}

func TestRecentNonPositive(t *testing.T) {
	h := &conversation.History{Turns: []conversation.Turn{{Content: "a"}, {Content: "b"}}}
	if got := h.Recent(0); len(got) != 2 {
		t.Errorf("expected all turns for n<=0, got %d", len(got))
	}
}
