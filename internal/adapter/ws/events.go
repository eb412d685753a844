package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Event type constants for WebSocket messages.
const (
	EventChatResponse      = "chat.response"
	EventAgentAvailability = "agent.availability"
	EventKnowledgeIngested = "knowledge.ingested"
)

// ChatResponseEvent is broadcast when an agent answers a chat turn.
type ChatResponseEvent struct {
	AgentID    string `json:"agent_id"`
	UserName   string `json:"user_name"`
	UserIntent string `json:"user_intent"`
	FinalText  string `json:"final_text"`
}

// AgentAvailabilityEvent is broadcast when the availability flag transitions.
type AgentAvailabilityEvent struct {
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeIngestedEvent is broadcast when a document finishes ingestion.
type KnowledgeIngestedEvent struct {
	AgentID    string `json:"agent_id"`
	ChunkCount int    `json:"chunk_count"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
