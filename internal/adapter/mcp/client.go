// Package mcp implements the tool catalog port against MCP-compatible tool
// servers over streamable HTTP.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpprotocol "github.com/mark3labs/mcp-go/mcp"

	"github.com/solvik/agenthub/internal/domain/tool"
)

// Client discovers and invokes tools advertised by an agent's tool server.
// Connections are per-call: descriptors are ephemeral and never cached,
// so each call performs the full initialize handshake.
type Client struct {
	clientName    string
	clientVersion string
}

// NewClient creates a tool catalog client.
func NewClient(clientName, clientVersion string) *Client {
	return &Client{clientName: clientName, clientVersion: clientVersion}
}

// ListTools fetches the tool descriptors advertised at serverURL.
func (c *Client) ListTools(ctx context.Context, serverURL string) ([]tool.Descriptor, error) {
	client, err := c.connect(ctx, serverURL)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck // best-effort cleanup

	result, err := client.ListTools(ctx, mcpprotocol.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("tools/list %s: %w", serverURL, err)
	}

	descriptors := make([]tool.Descriptor, 0, len(result.Tools))
	for i := range result.Tools {
		descriptors = append(descriptors, tool.Descriptor{
			Name:        result.Tools[i].Name,
			Description: result.Tools[i].Description,
		})
	}
	return descriptors, nil
}

// Invoke calls the named tool and returns the concatenated text content of
// its result.
func (c *Client) Invoke(ctx context.Context, serverURL, name string, args map[string]string) (string, error) {
	client, err := c.connect(ctx, serverURL)
	if err != nil {
		return "", err
	}
	defer client.Close() //nolint:errcheck // best-effort cleanup

	req := mcpprotocol.CallToolRequest{}
	req.Params.Name = name
	if len(args) > 0 {
		arguments := make(map[string]any, len(args))
		for k, v := range args {
			arguments[k] = v
		}
		req.Params.Arguments = arguments
	}

	result, err := client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tools/call %s on %s: %w", name, serverURL, err)
	}
	if result.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, textContent(result.Content))
	}

	return textContent(result.Content), nil
}

// connect creates a client for serverURL and performs the initialize handshake.
func (c *Client) connect(ctx context.Context, serverURL string) (*mcpclient.Client, error) {
	client, err := mcpclient.NewStreamableHttpClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("create mcp client for %s: %w", serverURL, err)
	}

	initReq := mcpprotocol.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpprotocol.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpprotocol.Implementation{
		Name:    c.clientName,
		Version: c.clientVersion,
	}
	if _, err := client.Initialize(ctx, initReq); err != nil {
		client.Close() //nolint:errcheck // connection is unusable anyway
		return nil, fmt.Errorf("initialize %s: %w", serverURL, err)
	}

	return client, nil
}

// textContent joins all text parts of a tool result.
func textContent(content []mcpprotocol.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(mcpprotocol.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
