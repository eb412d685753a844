package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/port/messagequeue"
	"github.com/solvik/agenthub/internal/service"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatcherPublishesTransition(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()
	events := &mockBroadcaster{}

	source := func(ctx context.Context) (bool, error) { return false, nil }
	w := service.NewAvailabilityWatcher(store, source, queue, events, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, func() bool { return !store.Current().Available })
	waitFor(t, func() bool { return len(queue.publishedOn(messagequeue.SubjectAgentAvailability)) > 0 })

	var payload messagequeue.AvailabilityPayload
	msg := queue.publishedOn(messagequeue.SubjectAgentAvailability)[0]
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Available {
		t.Error("expected published payload to carry available=false")
	}
	if payload.Source != "host-a" {
		t.Errorf("expected source host-a, got %q", payload.Source)
	}
}

func TestWatcherDoesNotRepublishUnchangedValue(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()

	// Source always agrees with the default "available" state.
	source := func(ctx context.Context) (bool, error) { return true, nil }
	w := service.NewAvailabilityWatcher(store, source, queue, &mockBroadcaster{}, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()

	if n := len(queue.publishedOn(messagequeue.SubjectAgentAvailability)); n != 0 {
		t.Errorf("expected no publishes for unchanged value, got %d", n)
	}
}

func TestWatcherSurvivesSourceFailures(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()

	calls := 0
	source := func(ctx context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("config file unreadable")
		}
		return false, nil
	}
	w := service.NewAvailabilityWatcher(store, source, queue, &mockBroadcaster{}, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Failed reads keep the last value; the loop keeps ticking and the
	// third read lands.
	waitFor(t, func() bool { return !store.Current().Available })
}

func TestRelayForwardsPeerTransition(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()
	events := &mockBroadcaster{}

	cancel, err := service.StartAvailabilityRelay(context.Background(), queue, store, events, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	handler := queue.handlers[messagequeue.SubjectAgentAvailability]
	if handler == nil {
		t.Fatal("expected a subscription on the availability subject")
	}

	payload, _ := json.Marshal(messagequeue.AvailabilityPayload{
		Available: false,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Source:    "host-b",
	})
	if err := handler(context.Background(), messagequeue.SubjectAgentAvailability, payload); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if store.Current().Available {
		t.Error("expected peer transition applied to local store")
	}
	if got := events.eventTypes(); len(got) != 1 || got[0] != "agent.availability" {
		t.Errorf("expected one agent.availability broadcast, got %v", got)
	}
}

func TestRelayIgnoresOwnEcho(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()
	events := &mockBroadcaster{}

	cancel, err := service.StartAvailabilityRelay(context.Background(), queue, store, events, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	payload, _ := json.Marshal(messagequeue.AvailabilityPayload{
		Available: false,
		Source:    "host-a", // our own transition echoed back
	})
	handler := queue.handlers[messagequeue.SubjectAgentAvailability]
	if err := handler(context.Background(), messagequeue.SubjectAgentAvailability, payload); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	if !store.Current().Available {
		t.Error("expected own echo ignored")
	}
	if len(events.eventTypes()) != 0 {
		t.Error("expected no broadcast for own echo")
	}
}

func TestRelayMalformedPayloadIsError(t *testing.T) {
	store := status.NewStore("host-a")
	queue := newMockQueue()

	cancel, err := service.StartAvailabilityRelay(context.Background(), queue, store, &mockBroadcaster{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cancel()

	handler := queue.handlers[messagequeue.SubjectAgentAvailability]
	if err := handler(context.Background(), messagequeue.SubjectAgentAvailability, []byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
