// Package broadcast defines the port for broadcasting real-time events to connected clients.
package broadcast

import "context"

// Broadcaster sends a typed event to all current subscribers. Delivery is
// fire-and-forget and best-effort; the caller neither retries nor blocks.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
