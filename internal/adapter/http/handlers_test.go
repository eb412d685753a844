package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	ahhttp "github.com/solvik/agenthub/internal/adapter/http"
	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/knowledge"
	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/port/completion"
	"github.com/solvik/agenthub/internal/port/vectorstore"
	"github.com/solvik/agenthub/internal/resilience"
	"github.com/solvik/agenthub/internal/service"
)

const agentID = "11111111-1111-1111-1111-111111111111"

// mockStore implements database.Store for handler tests.
type mockStore struct {
	agents    map[string]*agent.Profile
	histories map[string]*conversation.History
}

func newMockStore() *mockStore {
	return &mockStore{
		agents:    map[string]*agent.Profile{},
		histories: map[string]*conversation.History{},
	}
}

func (m *mockStore) CreateAgent(_ context.Context, req *agent.CreateRequest) (*agent.Profile, error) {
	p := &agent.Profile{ID: agentID, Name: req.Name, BehaviorPrompt: req.BehaviorPrompt, ToolServerURL: req.ToolServerURL}
	m.agents[p.ID] = p
	return p, nil
}

func (m *mockStore) GetAgent(_ context.Context, id string) (*agent.Profile, error) {
	p, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockStore) ListAgents(_ context.Context) ([]agent.Profile, error) {
	var out []agent.Profile
	for _, p := range m.agents {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockStore) UpdateAgent(_ context.Context, id string, req agent.UpdateRequest) (*agent.Profile, error) {
	p, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	return p, nil
}

func (m *mockStore) DeleteAgent(_ context.Context, id string) error {
	if _, ok := m.agents[id]; !ok {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	delete(m.agents, id)
	return nil
}

func (m *mockStore) GetHistoryByUser(_ context.Context, userName string) (*conversation.History, error) {
	h, ok := m.histories[userName]
	if !ok {
		return nil, fmt.Errorf("history %s: %w", userName, domain.ErrNotFound)
	}
	return h, nil
}

func (m *mockStore) AppendTurns(_ context.Context, historyID string, turns []conversation.Turn) error {
	return nil
}

func (m *mockStore) CreateHistory(_ context.Context, userName string) (*conversation.History, error) {
	h := &conversation.History{ID: "hist-" + userName, UserName: userName, Active: true}
	m.histories[userName] = h
	return h, nil
}

func (m *mockStore) ClearHistory(_ context.Context, userName string) error {
	delete(m.histories, userName)
	return nil
}

type mockLLM struct {
	responses []string
}

func (m *mockLLM) Complete(_ context.Context, _ completion.Request) (*completion.Response, error) {
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no queued response")
	}
	content := m.responses[0]
	m.responses = m.responses[1:]
	return &completion.Response{Content: content, TokensIn: 10, TokensOut: 5}, nil
}

func (m *mockLLM) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1}, nil
}

func (m *mockLLM) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type mockVectors struct {
	upserts int
}

func (m *mockVectors) Upsert(_ context.Context, _, _ string, _ knowledge.Chunk) error {
	m.upserts++
	return nil
}

func (m *mockVectors) NearestMatches(_ context.Context, _ string, _ []float32, _ int) ([]vectorstore.Match, error) {
	return nil, nil
}

func (m *mockVectors) DeleteNamespace(_ context.Context, _ string) error { return nil }

type mockCache struct{ data map[string][]byte }

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

func newTestRouter(t *testing.T, store *mockStore, llm *mockLLM, vectors *mockVectors) chi.Router {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchCfg := &config.Orchestrator{Temperature: 0.2, MaxTokens: 512, HistoryTurns: 10, RetrievalTopK: 5, ChunkSize: 512}

	availability := status.NewStore("test")
	agentSvc := service.NewAgentService(store, vectors, &mockCache{data: map[string][]byte{}}, &config.Cache{}, log)
	retrievalSvc := service.NewRetrievalService(llm, vectors, orchCfg, log)
	ingestSvc := service.NewIngestService(llm, vectors, nil, resilience.NewWorkPool(1), orchCfg, log)
	resolver := service.NewToolResolver(llm, nil, orchCfg, log)
	router := service.NewSkillRouter(llm, retrievalSvc, resolver, orchCfg, log)
	chatSvc := service.NewChatService(store, service.NewIntentClassifier(llm), router, availability, nil, orchCfg, log)

	handlers := &ahhttp.Handlers{
		Agents:       agentSvc,
		Chat:         chatSvc,
		Ingest:       ingestSvc,
		Retrieval:    retrievalSvc,
		Availability: availability,
	}

	r := chi.NewRouter()
	ahhttp.MountRoutes(r, handlers)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAgentEndpoint(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents", agent.CreateRequest{
		Name:           "Helpdesk",
		BehaviorPrompt: "You help people.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created agent.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Name != "Helpdesk" {
		t.Errorf("unexpected name %q", created.Name)
	}
}

func TestCreateAgentMissingPrompt(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents", agent.CreateRequest{Name: "NoPrompt"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetAgentNotFound(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/agents/"+agentID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetAgentMalformedID(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/agents/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	store := newMockStore()
	store.agents[agentID] = &agent.Profile{ID: agentID, Name: "Helpdesk", BehaviorPrompt: "x"}
	llm := &mockLLM{responses: []string{"GREETING", "Hello there!"}}
	r := newTestRouter(t, store, llm, &mockVectors{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/"+agentID+"/chat", conversation.SendMessageRequest{
		UserName: "alice",
		Content:  "hi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		FinalText  string `json:"final_text"`
		UserIntent string `json:"user_intent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.FinalText != "Hello there!" {
		t.Errorf("unexpected final text %q", env.FinalText)
	}
	if env.UserIntent != "GREETING" {
		t.Errorf("unexpected intent %q", env.UserIntent)
	}
}

func TestChatEndpointBlankContent(t *testing.T) {
	store := newMockStore()
	store.agents[agentID] = &agent.Profile{ID: agentID, Name: "Helpdesk", BehaviorPrompt: "x"}
	r := newTestRouter(t, store, &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/"+agentID+"/chat", conversation.SendMessageRequest{
		UserName: "alice",
		Content:  "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestIngestEndpoint(t *testing.T) {
	store := newMockStore()
	store.agents[agentID] = &agent.Profile{ID: agentID, Name: "Helpdesk", BehaviorPrompt: "x"}
	vectors := &mockVectors{}
	r := newTestRouter(t, store, &mockLLM{}, vectors)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/"+agentID+"/knowledge", map[string]string{
		"content": strings.Repeat("useful knowledge line\n", 30),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if vectors.upserts == 0 {
		t.Error("expected chunks written")
	}

	var resp struct {
		ChunkCount int `json:"chunk_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ChunkCount != vectors.upserts {
		t.Errorf("reported %d chunks, stored %d", resp.ChunkCount, vectors.upserts)
	}
}

func TestIngestEndpointUnknownAgent(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/"+agentID+"/knowledge", map[string]string{
		"content": "doc",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	r := newTestRouter(t, newMockStore(), &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/availability", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var a status.Availability
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if !a.Available {
		t.Error("expected default available=true")
	}
}

func TestClearConversationEndpoint(t *testing.T) {
	store := newMockStore()
	store.histories["alice"] = &conversation.History{ID: "h1", UserName: "alice", Active: true}
	r := newTestRouter(t, store, &mockLLM{}, &mockVectors{})

	rec := doJSON(t, r, http.MethodDelete, "/api/v1/conversations/alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := store.histories["alice"]; ok {
		t.Error("expected history cleared")
	}
}
