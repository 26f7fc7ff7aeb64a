package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/middleware"
	"github.com/insurance4you/agency/pkg/problem"
)

type AdminHandler struct {
	Policies  core.PolicyService
	Agents    core.AgentService
	Log       *slog.Logger
	JWTSecret string
}

func NewAdminHandler(policies core.PolicyService, agents core.AgentService, log *slog.Logger, jwtSecret string) *AdminHandler {
	return &AdminHandler{Policies: policies, Agents: agents, Log: log, JWTSecret: jwtSecret}
}

func (h *AdminHandler) Mount(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))
		r.Use(middleware.RequireRole(core.RoleAdministrator))

		r.Get("/policies/pending", h.PendingPolicies)
		r.Post("/policies/{customer_id}/{policy_id}/decision", h.DecidePolicy)
		r.Post("/policies/expire", h.ExpirePolicies)
		r.Get("/reports/production", h.ProductionReport)

		r.Get("/agents", h.ListAgents)
		r.Patch("/agents/{agent_id}/status", h.SetAgentStatus)
		r.Delete("/agents/{agent_id}", h.RemoveAgent)
	})
}

// PendingPolicies lists purchased policies awaiting a decision.
// 200: JSON; 500: internal error.
func (h *AdminHandler) PendingPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Policies.PendingPurchases(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list pending policies")
		return
	}

	if err := json.NewEncoder(w).Encode(policies); err != nil {
		h.Log.Error("failed to encode pending policies", "err", err)
	}
}

type policyDecisionRequest struct {
	Approve bool `json:"approve"`
}

// DecidePolicy approves or rejects a requested policy.
// 200: JSON; 404: not found; 409: not in requested status; 500: internal error.
func (h *AdminHandler) DecidePolicy(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customer_id")
	policyID := chi.URLParam(r, "policy_id")
	if customerID == "" || policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Identifier", "Path parameters customer_id and policy_id are required.")
		return
	}

	var in policyDecisionRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	policy, err := h.Policies.Decide(r.Context(), customerID, policyID, in.Approve)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "policy_id", policyID, "err", err)
	}
}

type expireResponse struct {
	Expired int64 `json:"expired"`
}

// ExpirePolicies sweeps non-terminal policies past their end date to expired.
// Synchronous; returns how many rows changed.
// 200: JSON; 500: internal error.
func (h *AdminHandler) ExpirePolicies(w http.ResponseWriter, r *http.Request) {
	n, err := h.Policies.ExpireEnded(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to expire policies")
		return
	}

	if err := json.NewEncoder(w).Encode(expireResponse{Expired: n}); err != nil {
		h.Log.Error("failed to encode expire response", "err", err)
	}
}

// ProductionReport rolls up every agent's sales and derived commission.
// 200: JSON; 500: internal error.
func (h *AdminHandler) ProductionReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Agents.Production(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to build production report")
		return
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.Log.Error("failed to encode production report", "err", err)
	}
}

// ListAgents returns the full agent roster.
// 200: JSON; 500: internal error.
func (h *AdminHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Agents.ListAgents(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list agents")
		return
	}

	if err := json.NewEncoder(w).Encode(agents); err != nil {
		h.Log.Error("failed to encode agents", "err", err)
	}
}

type agentStatusRequest struct {
	Status core.AgentStatus `json:"status" validate:"required"`
}

// SetAgentStatus activates or deactivates an agent. Inactive agents stop
// receiving new assignments; their existing policies are untouched.
// 204: updated; 400: unknown status; 404: not found; 500: internal error.
func (h *AdminHandler) SetAgentStatus(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agent_id")
	if agentID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Agent ID", "Path parameter agent_id is required.")
		return
	}

	var in agentStatusRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := h.Agents.SetAgentStatus(r.Context(), agentID, in.Status); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAgent deletes an agent from the roster. Sold policies keep their
// agent reference for commission history.
// 204: deleted; 404: not found; 500: internal error.
func (h *AdminHandler) RemoveAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agent_id")
	if agentID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Agent ID", "Path parameter agent_id is required.")
		return
	}

	if err := h.Agents.RemoveAgent(r.Context(), agentID); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
