package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/middleware"
	"github.com/insurance4you/agency/pkg/problem"
)

type CustomPolicyHandler struct {
	Svc       core.CustomPolicyService
	Users     core.UserService
	Log       *slog.Logger
	JWTSecret string
}

func NewCustomPolicyHandler(svc core.CustomPolicyService, users core.UserService, log *slog.Logger, jwtSecret string) *CustomPolicyHandler {
	return &CustomPolicyHandler{Svc: svc, Users: users, Log: log, JWTSecret: jwtSecret}
}

func (h *CustomPolicyHandler) Mount(r chi.Router) {
	r.Route("/custom-policies", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))

		r.With(middleware.RequireRole(core.RoleCustomer)).Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(core.RoleAdministrator))
			r.Get("/pending", h.ListPending)
			r.Post("/{policy_id}/approve", h.Approve)
			r.Post("/{policy_id}/reject", h.Reject)
		})
	})
}

// customPolicyRequest carries the shared fields plus exactly one of the
// type-detail blocks, selected by policy_type.
type customPolicyRequest struct {
	PolicyType     core.PolicyType `json:"policy_type" validate:"required"`
	Age            int             `json:"age" validate:"gte=0,lte=120"`
	CoverageAmount float64         `json:"coverage_amount" validate:"gt=0"`

	Life     *core.LifeDetails     `json:"life,omitempty"`
	Vehicle  *core.VehicleDetails  `json:"vehicle,omitempty"`
	Health   *core.HealthDetails   `json:"health,omitempty"`
	Property *core.PropertyDetails `json:"property,omitempty"`
}

func (req customPolicyRequest) details() (core.PolicyDetails, error) {
	switch req.PolicyType {
	case core.PolicyTypeLife:
		if req.Life != nil {
			return *req.Life, nil
		}
	case core.PolicyTypeVehicle:
		if req.Vehicle != nil {
			return *req.Vehicle, nil
		}
	case core.PolicyTypeHealth:
		if req.Health != nil {
			return *req.Health, nil
		}
	case core.PolicyTypeProperty:
		if req.Property != nil {
			return *req.Property, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown policy type %q", core.ErrValidation, req.PolicyType)
	}
	return nil, fmt.Errorf("%w: missing %s details", core.ErrValidation, req.PolicyType)
}

// Create prices and files a custom policy request for the caller.
// 201: JSON; 400: bad JSON or missing details; 404: no active agents; 500: internal error.
func (h *CustomPolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customPolicyRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	details, err := req.details()
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	policy, err := h.Svc.Create(r.Context(), core.CustomPolicyInput{
		CustomerID:     customerID,
		Age:            req.Age,
		CoverageAmount: req.CoverageAmount,
		Details:        details,
	})
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode custom policy", "err", err)
	}
}

// ListPending returns custom requests awaiting an administrator decision.
// 200: JSON; 403: not an administrator; 500: internal error.
func (h *CustomPolicyHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	views, err := h.Svc.ListPending(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list pending custom policies")
		return
	}

	if err := json.NewEncoder(w).Encode(views); err != nil {
		h.Log.Error("failed to encode pending custom policies", "err", err)
	}
}

// Approve accepts a pending request and derives the in-force policy from it.
// 200: JSON; 404: not found; 409: already decided; 500: internal error.
func (h *CustomPolicyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Path parameter policy_id is required.")
		return
	}

	policy, err := h.Svc.Approve(r.Context(), policyID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(policy); err != nil {
		h.Log.Error("failed to encode policy", "policy_id", policyID, "err", err)
	}
}

// Reject declines a pending request. The row survives as an audit record.
// 204: rejected; 404: not found; 409: already decided; 500: internal error.
func (h *CustomPolicyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policy_id")
	if policyID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Policy ID", "Path parameter policy_id is required.")
		return
	}

	if err := h.Svc.Reject(r.Context(), policyID); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
