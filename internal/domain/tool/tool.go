// Package tool defines tool descriptors discovered from external catalogs
// and the parsing of a completion model's tool selection output.
package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Descriptor advertises an externally invocable capability. Descriptors are
// fetched from the agent's tool server per call and never persisted.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Selection is the parsed result of asking the completion model to pick a
// tool and its arguments.
type Selection struct {
	ToolName  string            `json:"tool_name"`
	Arguments map[string]string `json:"arguments"`
}

// RenderCatalog formats descriptors as a human-readable list for embedding
// into a selection prompt, one "- name: description" line each.
func RenderCatalog(descriptors []Descriptor) string {
	var b strings.Builder
	for _, d := range descriptors {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
	}
	return b.String()
}

// ParseSelection extracts a Selection from raw model output. The output may
// wrap the JSON object in markdown fences or surrounding prose; anything
// that still fails to parse, or names no tool, is a parse error the caller
// is expected to degrade on.
func ParseSelection(raw string) (*Selection, error) {
	var sel Selection
	if err := json.Unmarshal([]byte(extractJSON(raw)), &sel); err != nil {
		return nil, fmt.Errorf("unmarshal tool selection: %w", err)
	}
	if sel.ToolName == "" {
		return nil, fmt.Errorf("tool selection names no tool")
	}
	if sel.Arguments == nil {
		sel.Arguments = map[string]string{}
	}
	return &sel, nil
}

// extractJSON attempts to extract a JSON object from a string that may
// contain markdown fences or other surrounding text.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}

	return s
}
