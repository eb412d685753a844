package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/knowledge"
	"github.com/solvik/agenthub/internal/domain/tool"
	"github.com/solvik/agenthub/internal/port/completion"
	"github.com/solvik/agenthub/internal/port/messagequeue"
	"github.com/solvik/agenthub/internal/port/vectorstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCompletion returns queued responses in order. Each call consumes one
// response; running out is a test bug.
type mockCompletion struct {
	responses []completion.Response
	err       error
	requests  []completion.Request
}

func (m *mockCompletion) Complete(_ context.Context, req completion.Request) (*completion.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mockCompletion: no queued response for call %d", len(m.requests))
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return &resp, nil
}

// systemPrompt returns the system message of the i-th recorded request.
func (m *mockCompletion) systemPrompt(i int) string {
	if i >= len(m.requests) || len(m.requests[i].Messages) == 0 {
		return ""
	}
	return m.requests[i].Messages[0].Content
}

type mockEmbedder struct {
	vector  []float32
	vectors [][]float32 // batch result override
	err     error
	batches [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	if m.vectors != nil {
		return m.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type upsertCall struct {
	namespace string
	id        string
	chunk     knowledge.Chunk
}

type mockVectorStore struct {
	upserts    []upsertCall
	upsertErr  error
	matches    []vectorstore.Match
	matchErr   error
	queried    []string // namespaces queried
	deleted    []string
	deletedErr error
}

func (m *mockVectorStore) Upsert(_ context.Context, namespace, id string, chunk knowledge.Chunk) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, upsertCall{namespace: namespace, id: id, chunk: chunk})
	return nil
}

func (m *mockVectorStore) NearestMatches(_ context.Context, namespace string, _ []float32, _ int) ([]vectorstore.Match, error) {
	m.queried = append(m.queried, namespace)
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	return m.matches, nil
}

func (m *mockVectorStore) DeleteNamespace(_ context.Context, namespace string) error {
	if m.deletedErr != nil {
		return m.deletedErr
	}
	m.deleted = append(m.deleted, namespace)
	return nil
}

// mockDatabase implements the database port in memory.
type mockDatabase struct {
	agents    map[string]*agent.Profile
	histories map[string]*conversation.History
	appended  map[string][]conversation.Turn
	cleared   []string
}

func newMockDatabase() *mockDatabase {
	return &mockDatabase{
		agents:    map[string]*agent.Profile{},
		histories: map[string]*conversation.History{},
		appended:  map[string][]conversation.Turn{},
	}
}

func (m *mockDatabase) CreateAgent(_ context.Context, req *agent.CreateRequest) (*agent.Profile, error) {
	p := &agent.Profile{
		ID:             fmt.Sprintf("agent-%d", len(m.agents)+1),
		Name:           req.Name,
		BehaviorPrompt: req.BehaviorPrompt,
		ToolServerURL:  req.ToolServerURL,
		Private:        req.Private,
	}
	m.agents[p.ID] = p
	return p, nil
}

func (m *mockDatabase) GetAgent(_ context.Context, id string) (*agent.Profile, error) {
	p, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("get agent %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockDatabase) ListAgents(_ context.Context) ([]agent.Profile, error) {
	var out []agent.Profile
	for _, p := range m.agents {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockDatabase) UpdateAgent(_ context.Context, id string, req agent.UpdateRequest) (*agent.Profile, error) {
	p, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("update agent %s: %w", id, domain.ErrNotFound)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.BehaviorPrompt != nil {
		p.BehaviorPrompt = *req.BehaviorPrompt
	}
	if req.ToolServerURL != nil {
		p.ToolServerURL = *req.ToolServerURL
	}
	if req.Private != nil {
		p.Private = *req.Private
	}
	return p, nil
}

func (m *mockDatabase) DeleteAgent(_ context.Context, id string) error {
	if _, ok := m.agents[id]; !ok {
		return fmt.Errorf("delete agent %s: %w", id, domain.ErrNotFound)
	}
	delete(m.agents, id)
	return nil
}

func (m *mockDatabase) GetHistoryByUser(_ context.Context, userName string) (*conversation.History, error) {
	h, ok := m.histories[userName]
	if !ok {
		return nil, fmt.Errorf("history for %s: %w", userName, domain.ErrNotFound)
	}
	return h, nil
}

func (m *mockDatabase) AppendTurns(_ context.Context, historyID string, turns []conversation.Turn) error {
	m.appended[historyID] = append(m.appended[historyID], turns...)
	return nil
}

func (m *mockDatabase) CreateHistory(_ context.Context, userName string) (*conversation.History, error) {
	h := &conversation.History{ID: "hist-" + userName, UserName: userName, Active: true}
	m.histories[userName] = h
	return h, nil
}

func (m *mockDatabase) ClearHistory(_ context.Context, userName string) error {
	m.cleared = append(m.cleared, userName)
	delete(m.histories, userName)
	return nil
}

// mockCatalog implements the tool catalog port.
type mockCatalog struct {
	tools     []tool.Descriptor
	listErr   error
	result    string
	invokeErr error
	invoked   []string // tool names
	args      map[string]string
}

func (m *mockCatalog) ListTools(_ context.Context, _ string) ([]tool.Descriptor, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.tools, nil
}

func (m *mockCatalog) Invoke(_ context.Context, _, name string, args map[string]string) (string, error) {
	m.invoked = append(m.invoked, name)
	m.args = args
	if m.invokeErr != nil {
		return "", m.invokeErr
	}
	return m.result, nil
}

// mockBroadcaster records broadcast events.
type mockBroadcaster struct {
	mu     sync.Mutex
	types  []string
	events []any
}

func (m *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append(m.types, eventType)
	m.events = append(m.events, payload)
}

func (m *mockBroadcaster) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.types...)
}

// mockQueue records published messages and captures subscription handlers.
type mockQueue struct {
	mu        sync.Mutex
	published map[string][][]byte
	handlers  map[string]messagequeue.Handler
	pubErr    error
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		published: map[string][][]byte{},
		handlers:  map[string]messagequeue.Handler{},
	}
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pubErr != nil {
		return m.pubErr
	}
	m.published[subject] = append(m.published[subject], data)
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subject] = handler
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

func (m *mockQueue) publishedOn(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.published[subject]...)
}

// mockCache is a trivial map-backed cache.
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
