// Package conversation defines the conversation history domain model.
package conversation

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	ID             string    `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// History is the ordered message history for one user.
type History struct {
	ID             string    `json:"id"`
	UserName       string    `json:"user_name"`
	Turns          []Turn    `json:"turns"`
	Active         bool      `json:"active"`
	LastModifiedOn time.Time `json:"last_modified_on"`
}

// Recent returns the last n turns, oldest first. It returns all turns when
// the history is shorter than n.
func (h *History) Recent(n int) []Turn {
	if n <= 0 || len(h.Turns) <= n {
		return h.Turns
	}
	return h.Turns[len(h.Turns)-n:]
}

// SendMessageRequest holds the input for a chat turn.
type SendMessageRequest struct {
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}
