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

type AgentHandler struct {
	Svc       core.AgentService
	Users     core.UserService
	Log       *slog.Logger
	JWTSecret string
}

func NewAgentHandler(svc core.AgentService, users core.UserService, log *slog.Logger, jwtSecret string) *AgentHandler {
	return &AgentHandler{Svc: svc, Users: users, Log: log, JWTSecret: jwtSecret}
}

func (h *AgentHandler) Mount(r chi.Router) {
	r.Route("/agents", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))
		r.Use(middleware.RequireRole(core.RoleAgent))
		r.Get("/me/commission", h.Commission)
		r.Get("/me/report", h.Report)
		r.Get("/me/sales", h.Sales)
	})

	r.Route("/packages", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))
		r.Use(middleware.RequireRole(core.RoleAgent, core.RoleAdministrator))
		r.Get("/", h.ListPackages)
		r.Patch("/{policy_id}", h.UpdatePackage)
		r.Delete("/{policy_id}", h.DeletePackage)
	})
}

// callerAgentID resolves the authenticated agent's ID from their NRIC.
func callerAgentID(r *http.Request, users core.UserService) (string, error) {
	profile, err := users.AgentProfile(r.Context(), middleware.CallerNRIC(r.Context()))
	if err != nil {
		return "", err
	}
	return profile.Agent.AgentID, nil
}

// Commission derives the caller's commission from premium snapshots.
// 200: JSON; 404: agent unknown; 500: internal error.
func (h *AgentHandler) Commission(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve agent")
		return
	}

	statement, err := h.Svc.Commission(r.Context(), agentID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to compute commission")
		return
	}

	if err := json.NewEncoder(w).Encode(statement); err != nil {
		h.Log.Error("failed to encode commission", "err", err)
	}
}

// Report returns the caller's sales with a per-year summary.
// 200: JSON; 404: agent unknown; 500: internal error.
func (h *AgentHandler) Report(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve agent")
		return
	}

	report, err := h.Svc.Report(r.Context(), agentID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to build sales report")
		return
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.Log.Error("failed to encode report", "err", err)
	}
}

// Sales lists the policies sold by the caller.
// 200: JSON; 404: agent unknown; 500: internal error.
func (h *AgentHandler) Sales(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve agent")
		return
	}

	sales, err := h.Svc.SoldPolicies(r.Context(), agentID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list sales")
		return
	}

	if err := json.NewEncoder(w).Encode(sales); err != nil {
		h.Log.Error("failed to encode sales", "err", err)
	}
}

// ListPackages lists every catalog package, custom ones included.
// 200: JSON; 500: internal error.
func (h *AgentHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Svc.ListPackages(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list packages")
		return
	}

	if err := json.NewEncoder(w).Encode(packages); err != nil {
		h.Log.Error("failed to encode packages", "err", err)
	}
}

type updatePackageRequest struct {
	Field core.PackageField `json:"field" validate:"required"`
	Value string            `json:"value" validate:"required"`
}

// UpdatePackage writes one whitelisted catalog field.
// 204: updated; 400: unknown field or bad value; 404: not found; 500: internal error.
func (h *AgentHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Path parameter policy_id is required.")
		return
	}

	var in updatePackageRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := h.Svc.UpdatePackage(r.Context(), policyID, in.Field, in.Value); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePackage removes a catalog template. Purchased snapshots keep their
// terms; the ID is never reissued.
// 204: deleted; 404: not found; 500: internal error.
func (h *AgentHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Path parameter policy_id is required.")
		return
	}

	if err := h.Svc.DeletePackage(r.Context(), policyID); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
