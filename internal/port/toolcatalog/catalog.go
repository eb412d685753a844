// Package toolcatalog defines the port for external tool catalog servers.
package toolcatalog

import (
	"context"

	"github.com/solvik/agenthub/internal/domain/tool"
)

// Client is the port interface for discovering and invoking tools advertised
// by an agent's tool server.
type Client interface {
	// ListTools fetches the tool descriptors advertised at serverURL.
	ListTools(ctx context.Context, serverURL string) ([]tool.Descriptor, error)

	// Invoke calls the named tool with the given arguments and returns its
	// textual result.
	Invoke(ctx context.Context, serverURL, name string, args map[string]string) (string, error)
}
