package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/solvik/agenthub/internal/adapter/ws"
	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/port/broadcast"
	"github.com/solvik/agenthub/internal/port/messagequeue"
)

// AvailabilitySource reports the desired availability flag. It is re-read
// on every watcher tick so operators can flip availability without a
// restart.
type AvailabilitySource func(ctx context.Context) (bool, error)

// ConfigAvailabilitySource reads the availability flag from the config
// hierarchy (YAML file and environment) on each call.
func ConfigAvailabilitySource(yamlPath string) AvailabilitySource {
	return func(ctx context.Context) (bool, error) {
		cfg, err := config.LoadFrom(yamlPath)
		if err != nil {
			return false, err
		}
		return cfg.Availability.Enabled, nil
	}
}

// AvailabilityWatcher polls an AvailabilitySource and records transitions
// in the status store. On a transition it notifies local websocket clients
// and publishes to the queue so peer instances follow.
type AvailabilityWatcher struct {
	store    *status.Store
	source   AvailabilitySource
	queue    messagequeue.Queue
	events   broadcast.Broadcaster
	interval time.Duration
	logger   *slog.Logger
}

// NewAvailabilityWatcher creates an AvailabilityWatcher.
func NewAvailabilityWatcher(store *status.Store, source AvailabilitySource, queue messagequeue.Queue, events broadcast.Broadcaster, interval time.Duration, logger *slog.Logger) *AvailabilityWatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AvailabilityWatcher{
		store:    store,
		source:   source,
		queue:    queue,
		events:   events,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled. A source read failure is logged and
// the last known value kept; the watcher never exits on a bad read.
func (w *AvailabilityWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *AvailabilityWatcher) tick(ctx context.Context) {
	available, err := w.source(ctx)
	if err != nil {
		w.logger.Warn("read availability source", "error", err)
		return
	}

	changed, updated := w.store.TryUpdate(available)
	if !changed {
		return
	}

	w.logger.Info("availability transition", "available", updated.Available, "source", updated.Source)
	if w.events != nil {
		w.events.BroadcastEvent(ctx, ws.EventAgentAvailability, ws.AgentAvailabilityEvent{
			Available: updated.Available,
			UpdatedAt: updated.UpdatedAt,
		})
	}
	if err := w.publish(ctx, updated); err != nil {
		w.logger.Error("publish availability transition", "error", err)
	}
}

func (w *AvailabilityWatcher) publish(ctx context.Context, a status.Availability) error {
	if w.queue == nil {
		return nil
	}
	data, err := json.Marshal(messagequeue.AvailabilityPayload{
		Available: a.Available,
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
		Source:    a.Source,
	})
	if err != nil {
		return fmt.Errorf("marshal availability payload: %w", err)
	}
	return w.queue.Publish(ctx, messagequeue.SubjectAgentAvailability, data)
}

// StartAvailabilityRelay subscribes to availability transitions published
// by peer instances and forwards them to local websocket clients. The
// relay only updates the local store and broadcasts; it never republishes,
// so transitions cannot loop.
func StartAvailabilityRelay(ctx context.Context, queue messagequeue.Queue, store *status.Store, events broadcast.Broadcaster, logger *slog.Logger) (cancel func(), err error) {
	return queue.Subscribe(ctx, messagequeue.SubjectAgentAvailability, func(ctx context.Context, subject string, data []byte) error {
		var payload messagequeue.AvailabilityPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("unmarshal availability payload: %w", err)
		}
		if payload.Source == store.Current().Source {
			// Our own transition echoed back.
			return nil
		}

		changed, updated := store.TryUpdate(payload.Available)
		if !changed {
			return nil
		}
		logger.Info("availability relayed from peer", "available", updated.Available, "peer", payload.Source)
		if events != nil {
			events.BroadcastEvent(ctx, ws.EventAgentAvailability, ws.AgentAvailabilityEvent{
				Available: updated.Available,
				UpdatedAt: updated.UpdatedAt,
			})
		}
		return nil
	})
}
