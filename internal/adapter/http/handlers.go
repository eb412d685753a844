// Package http exposes the AgentHub REST API over chi.
package http

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvik/agenthub/internal/adapter/litellm"
	"github.com/solvik/agenthub/internal/adapter/ws"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/port/messagequeue"
	"github.com/solvik/agenthub/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Agents       *service.AgentService
	Chat         *service.ChatService
	Ingest       *service.IngestService
	Retrieval    *service.RetrievalService
	Availability *status.Store
	LiteLLM      *litellm.Client
	Pool         *pgxpool.Pool
	Queue        messagequeue.Queue
	Hub          *ws.Hub
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

// SendMessage runs one chat turn against the agent in the URL.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	agentID := urlParam(r, "id")
	req, ok := readJSON[conversation.SendMessageRequest](w, r)
	if !ok {
		return
	}

	env, err := h.Chat.SendMessage(r.Context(), agentID, &req)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// GetConversation returns the user's active conversation history.
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	userName := urlParam(r, "userName")
	if !requireField(w, userName, "user name") {
		return
	}

	history, err := h.Chat.GetHistory(r.Context(), userName)
	if err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// ClearConversation deactivates the user's active conversation.
func (h *Handlers) ClearConversation(w http.ResponseWriter, r *http.Request) {
	userName := urlParam(r, "userName")
	if !requireField(w, userName, "user name") {
		return
	}

	if err := h.Chat.ClearHistory(r.Context(), userName); err != nil {
		writeDomainError(w, err, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Knowledge
// ---------------------------------------------------------------------------

type ingestRequest struct {
	Content string `json:"content"`
}

type ingestResponse struct {
	AgentID    string `json:"agent_id"`
	ChunkCount int    `json:"chunk_count"`
}

// IngestKnowledge splits, embeds, and stores a document for the agent.
func (h *Handlers) IngestKnowledge(w http.ResponseWriter, r *http.Request) {
	agentID := urlParam(r, "id")
	req, ok := readJSON[ingestRequest](w, r)
	if !ok {
		return
	}

	// Reject unknown agents before paying for embeddings.
	if _, err := h.Agents.Get(r.Context(), agentID); err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}

	count, err := h.Ingest.Ingest(r.Context(), agentID, req.Content)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusCreated, ingestResponse{AgentID: agentID, ChunkCount: count})
}

// DeleteKnowledge removes every knowledge chunk the agent has.
func (h *Handlers) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	agentID := urlParam(r, "id")
	if err := h.Ingest.DeleteKnowledge(r.Context(), agentID); err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Context string `json:"context"`
}

// SearchKnowledge runs a similarity query against the agent's namespace and
// returns the joined context string.
func (h *Handlers) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	agentID := urlParam(r, "id")
	req, ok := readJSON[searchRequest](w, r)
	if !ok {
		return
	}

	result, err := h.Retrieval.Retrieve(r.Context(), agentID, req.Query)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Context: result})
}

// ---------------------------------------------------------------------------
// Availability and health
// ---------------------------------------------------------------------------

// GetAvailability returns the current availability value. The websocket hub
// pushes the same value on connect; this endpoint serves clients without a
// socket.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Availability.Current())
}

type healthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Queue    bool   `json:"queue"`
	LLM      bool   `json:"llm"`
	WSConns  int    `json:"ws_connections"`
}

// Health reports liveness of the service and its collaborators.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}

	if h.Pool != nil {
		resp.Database = h.Pool.Ping(r.Context()) == nil
	}
	if h.Queue != nil {
		resp.Queue = h.Queue.IsConnected()
	}
	if h.LiteLLM != nil {
		ok, _ := h.LiteLLM.Health(r.Context())
		resp.LLM = ok
	}
	if h.Hub != nil {
		resp.WSConns = h.Hub.ConnectionCount()
	}

	code := http.StatusOK
	if !resp.Database {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
