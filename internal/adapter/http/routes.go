package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solvik/agenthub/internal/domain/agent"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/healthz", h.Health)
	r.Get("/ws", h.Hub.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Agents
		r.Get("/agents", handleList(h.Agents.List))
		r.Post("/agents", handleCreate(h.Agents.Create))
		r.Get("/agents/{id}", handleGet(h.Agents.Get, "agent not found"))
		r.Put("/agents/{id}", handleUpdate[agent.UpdateRequest](h.Agents.Update, "agent not found"))
		r.Delete("/agents/{id}", handleDelete(h.Agents.Delete, "agent not found"))

		// Chat
		r.Post("/agents/{id}/chat", h.SendMessage)

		// Knowledge (nested under agents)
		r.Post("/agents/{id}/knowledge", h.IngestKnowledge)
		r.Delete("/agents/{id}/knowledge", h.DeleteKnowledge)
		r.Post("/agents/{id}/knowledge/search", h.SearchKnowledge)

		// Conversations
		r.Get("/conversations/{userName}", h.GetConversation)
		r.Delete("/conversations/{userName}", h.ClearConversation)

		// Availability
		r.Get("/availability", h.GetAvailability)
	})
}
