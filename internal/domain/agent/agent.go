// Package agent defines the agent profile domain model.
package agent

import (
	"errors"
	"time"
)

// Profile represents a registered agent: a name, a behavior prompt steering
// the completion model, and an optional external tool server.
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	BehaviorPrompt  string    `json:"behavior_prompt"`
	ApplicationName string    `json:"application_name"`
	ToolServerURL   string    `json:"tool_server_url,omitempty"`
	Private         bool      `json:"private"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRequest holds the input for registering an agent.
type CreateRequest struct {
	Name            string `json:"name"`
	BehaviorPrompt  string `json:"behavior_prompt"`
	ApplicationName string `json:"application_name"`
	ToolServerURL   string `json:"tool_server_url,omitempty"`
	Private         bool   `json:"private"`
}

// Validate checks that a CreateRequest is well-formed.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.BehaviorPrompt == "" {
		return errors.New("behavior_prompt is required")
	}
	return nil
}

// UpdateRequest holds the input for updating an agent profile.
type UpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	BehaviorPrompt *string `json:"behavior_prompt,omitempty"`
	ToolServerURL  *string `json:"tool_server_url,omitempty"`
	Private        *bool   `json:"private,omitempty"`
}
