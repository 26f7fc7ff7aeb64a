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

type ClaimHandler struct {
	Svc       core.ClaimService
	Users     core.UserService
	Log       *slog.Logger
	JWTSecret string
}

func NewClaimHandler(svc core.ClaimService, users core.UserService, log *slog.Logger, jwtSecret string) *ClaimHandler {
	return &ClaimHandler{Svc: svc, Users: users, Log: log, JWTSecret: jwtSecret}
}

func (h *ClaimHandler) Mount(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(core.RoleCustomer))
			r.Post("/", h.File)
			r.Get("/", h.ListMine)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(core.RoleAdministrator))
			r.Get("/pending", h.ListPending)
			r.Post("/{claim_id}/decision", h.Decide)
		})
	})
}

type fileClaimRequest struct {
	PolicyID string  `json:"policy_id" validate:"required"`
	Details  string  `json:"details" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
}

// File records a pending claim against one of the caller's in-force policies.
// 201: JSON; 400: bad JSON; 404: policy unknown; 409: policy not claim-eligible; 500: internal error.
func (h *ClaimHandler) File(w http.ResponseWriter, r *http.Request) {
	var req fileClaimRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	claim, err := h.Svc.File(r.Context(), core.FileClaimInput{
		CustomerID: customerID,
		PolicyID:   req.PolicyID,
		Details:    req.Details,
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(claim); err != nil {
		h.Log.Error("failed to encode claim", "err", err)
	}
}

// ListMine lists the caller's claims, newest first.
// 200: JSON; 401: no token; 500: internal error.
func (h *ClaimHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	claims, err := h.Svc.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list claims")
		return
	}

	if err := json.NewEncoder(w).Encode(claims); err != nil {
		h.Log.Error("failed to encode claims", "err", err)
	}
}

// ListPending lists claims awaiting a decision, oldest first.
// 200: JSON; 403: not an administrator; 500: internal error.
func (h *ClaimHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Svc.ListPending(r.Context())
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list pending claims")
		return
	}

	if err := json.NewEncoder(w).Encode(claims); err != nil {
		h.Log.Error("failed to encode claims", "err", err)
	}
}

// Decide accepts or rejects a pending claim. Rejections must carry a reason.
// 200: JSON; 400: bad decision; 404: not found; 409: already decided; 500: internal error.
func (h *ClaimHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claim_id")
	if claimID == "" {
		problem.Write(w, http.StatusBadRequest, "Missing Claim ID", "Path parameter claim_id is required.")
		return
	}

	var in core.ClaimDecisionInput
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	claim, err := h.Svc.Decide(r.Context(), claimID, in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(claim); err != nil {
		h.Log.Error("failed to encode claim", "claim_id", claimID, "err", err)
	}
}
