package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/middleware"
	"github.com/insurance4you/agency/pkg/problem"
)

type PolicyHandler struct {
	Svc       core.PolicyService
	Users     core.UserService
	Log       *slog.Logger
	JWTSecret string
}

func NewPolicyHandler(svc core.PolicyService, users core.UserService, log *slog.Logger, jwtSecret string) *PolicyHandler {
	return &PolicyHandler{Svc: svc, Users: users, Log: log, JWTSecret: jwtSecret}
}

func (h *PolicyHandler) Mount(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Get("/catalog/{policy_type}", h.Catalog)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.JWTSecret))
			r.Use(middleware.RequireRole(core.RoleCustomer))
			r.Post("/purchase", h.Purchase)
			r.Get("/", h.Statuses)
			r.Post("/{policy_id}/cancel", h.Cancel)
		})
	})
}

// callerCustomerID resolves the authenticated customer's ID from their NRIC.
func callerCustomerID(r *http.Request, users core.UserService) (string, error) {
	profile, err := users.CustomerProfile(r.Context(), middleware.CallerNRIC(r.Context()))
	if err != nil {
		return "", err
	}
	return profile.Customer.CustomerID, nil
}

// Catalog lists the prepared packages of a policy type.
// 200: JSON; 400: unknown type; 500: internal error.
func (h *PolicyHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	policyType := core.PolicyType(strings.ToUpper(chi.URLParam(r, "policy_type")))

	packages, err := h.Svc.Catalog(r.Context(), policyType)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(packages); err != nil {
		h.Log.Error("failed to encode catalog", "err", err)
	}
}

type purchaseRequest struct {
	PolicyID string `json:"policy_id" validate:"required"`
}

// Purchase buys a prepared package for the caller. The policy starts in
// requested status awaiting an administrator decision.
// 201: JSON; 400: bad JSON or custom package; 404: package unknown; 409: already purchased; 500: internal error.
func (h *PolicyHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var in purchaseRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	policy, err := h.Svc.Purchase(r.Context(), customerID, in.PolicyID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "err", err)
	}
}

// Statuses lists the caller's purchased policies with their current status
// and the servicing agent's name.
// 200: JSON; 401: no token; 500: internal error.
func (h *PolicyHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	policies, err := h.Svc.Statuses(r.Context(), customerID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list policies")
		return
	}

	if err := json.NewEncoder(w).Encode(policies); err != nil {
		h.Log.Error("failed to encode policies", "err", err)
	}
}

// Cancel moves the caller's policy to cancelled.
// 200: JSON; 404: not found; 409: already terminal; 500: internal error.
func (h *PolicyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Path parameter policy_id is required.")
		return
	}

	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	policy, err := h.Svc.Cancel(r.Context(), customerID, policyID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "policy_id", policyID, "err", err)
	}
}
