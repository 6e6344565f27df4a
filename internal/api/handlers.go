// Package api is the transport boundary: the REST surface, the websocket
// chat endpoint, and the MCP server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkraev/presalesd/internal/resolver"
	"github.com/mkraev/presalesd/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// LeadStore is the slice of the storage layer the REST handlers need.
type LeadStore interface {
	SaveLead(l storage.Lead) (int64, error)
	ListLeads() ([]storage.Lead, error)
}

// Estimator answers estimate queries. The concrete implementation never
// fails: unknown or unreachable lookups come back as sentinel estimates.
type Estimator interface {
	Estimate(ctx context.Context, query string) resolver.Estimate
}

// Conversation handles one chat turn for a client.
type Conversation interface {
	HandleTurn(ctx context.Context, clientID, text string) string
}

// Deps holds the collaborators behind the HTTP surface.
type Deps struct {
	Store     LeadStore
	Estimator Estimator
	Chat      Conversation
	AuthToken string // empty disables auth on the lead routes
}

// NewHandler returns the router for the whole HTTP surface.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/api/estimates", handleGetEstimate(deps.Estimator))

	r.Route("/api/leads", func(r chi.Router) {
		if deps.AuthToken != "" {
			r.Use(BearerAuth(deps.AuthToken))
		}
		r.Post("/", handleCreateLead(deps.Store))
		r.Get("/", handleListLeads(deps.Store))
	})

	r.Get("/ws", handleChat(deps.Chat))
	r.Get("/ws/{clientID}", handleChat(deps.Chat))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGetEstimate(est Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectType := r.URL.Query().Get("project_type")
		if projectType == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "project_type query parameter is required")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(est.Estimate(r.Context(), projectType))
	}
}

// leadRequest is the POST /api/leads body.
type leadRequest struct {
	Name            string `json:"name"`
	Contact         string `json:"contact"`
	ProjectType     string `json:"project_type"`
	ProjectDetails  string `json:"project_details,omitempty"`
	FollowUpConsent bool   `json:"follow_up_consent,omitempty"`
}

func handleCreateLead(store LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req leadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Name == "" || req.Contact == "" || req.ProjectType == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name, contact and project_type are required")
			return
		}

		id, err := store.SaveLead(storage.Lead{
			Name:            req.Name,
			Contact:         req.Contact,
			ProjectType:     req.ProjectType,
			ProjectDetails:  req.ProjectDetails,
			FollowUpConsent: req.FollowUpConsent,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to store lead: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     id,
			"status": "success",
		})
	}
}

func handleListLeads(store LeadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := store.ListLeads()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list leads: %v", err)
			return
		}
		if leads == nil {
			leads = []storage.Lead{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"leads": leads})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
