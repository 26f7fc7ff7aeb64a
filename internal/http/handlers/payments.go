package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/middleware"
)

type PaymentHandler struct {
	Svc       core.PaymentService
	Users     core.UserService
	Log       *slog.Logger
	JWTSecret string
}

func NewPaymentHandler(svc core.PaymentService, users core.UserService, log *slog.Logger, jwtSecret string) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Users: users, Log: log, JWTSecret: jwtSecret}
}

func (h *PaymentHandler) Mount(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))
		r.Use(middleware.RequireRole(core.RoleCustomer))
		r.Get("/payable", h.Payable)
		r.Post("/", h.Pay)
		r.Get("/history", h.History)
	})
}

// Payable lists accepted policies awaiting their premium payment.
// 200: JSON; 401: no token; 500: internal error.
func (h *PaymentHandler) Payable(w http.ResponseWriter, r *http.Request) {
	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	policies, err := h.Svc.Payable(r.Context(), customerID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list payable policies")
		return
	}

	if err := json.NewEncoder(w).Encode(policies); err != nil {
		h.Log.Error("failed to encode payable policies", "err", err)
	}
}

type payRequest struct {
	PolicyID string             `json:"policy_id" validate:"required"`
	Method   core.PaymentMethod `json:"method" validate:"required"`
}

// Pay settles the premium of an accepted policy and flips it to premium_paid.
// 201: JSON; 400: bad method; 404: policy unknown; 409: already paid or not accepted; 500: internal error.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	payment, err := h.Svc.Pay(r.Context(), customerID, req.PolicyID, req.Method)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(payment); err != nil {
		h.Log.Error("failed to encode payment", "err", err)
	}
}

// History lists the caller's payments, newest first.
// 200: JSON; 401: no token; 500: internal error.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	customerID, err := callerCustomerID(r, h.Users)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to resolve customer")
		return
	}

	payments, err := h.Svc.History(r.Context(), customerID)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to list payments")
		return
	}

	if err := json.NewEncoder(w).Encode(payments); err != nil {
		h.Log.Error("failed to encode payments", "err", err)
	}
}
