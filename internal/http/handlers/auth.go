package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/insurance4you/agency/internal/core"
	"github.com/insurance4you/agency/internal/middleware"
	"github.com/insurance4you/agency/pkg/problem"
)

type AuthHandler struct {
	Svc       core.UserService
	Log       *slog.Logger
	JWTSecret string
	JWTTTL    time.Duration
}

func NewAuthHandler(svc core.UserService, log *slog.Logger, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{Svc: svc, Log: log, JWTSecret: jwtSecret, JWTTTL: jwtTTL}
}

func (h *AuthHandler) Mount(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register/customer", h.RegisterCustomer)
		r.Post("/register/agent", h.RegisterAgent)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(h.JWTSecret))
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateProfile)
	})
}

// RegisterCustomer creates a customer account.
// 201: JSON; 400: bad JSON/validation; 409: NRIC or email taken; 500: internal error.
func (h *AuthHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var in core.RegisterCustomerInput
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	customer, err := h.Svc.RegisterCustomer(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(customer); err != nil {
		h.Log.Error("failed to encode customer", "err", err)
	}
}

// RegisterAgent creates an agent account.
// 201: JSON; 400: bad JSON/validation; 409: NRIC or email taken; 500: internal error.
func (h *AuthHandler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	var in core.RegisterAgentInput
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	agent, err := h.Svc.RegisterAgent(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(agent); err != nil {
		h.Log.Error("failed to encode agent", "err", err)
	}
}

type loginRequest struct {
	NRIC     string    `json:"nric" validate:"required"`
	Password string    `json:"password" validate:"required"`
	Role     core.Role `json:"role" validate:"required"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// Login verifies credentials for the given role and issues a bearer token.
// 200: JSON; 400: bad JSON; 401: bad credentials; 500: internal error.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	user, err := h.Svc.Authenticate(r.Context(), in.NRIC, in.Password, in.Role)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Invalid credentials")
		return
	}

	token, err := middleware.IssueToken(h.JWTSecret, h.JWTTTL, user.NRIC, user.Role)
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to issue token")
		return
	}

	if err := json.NewEncoder(w).Encode(loginResponse{Token: token, User: user}); err != nil {
		h.Log.Error("failed to encode login response", "err", err)
	}
}

// Me returns the caller's profile: the base user record joined with the
// role-specific extension.
// 200: JSON; 401: no token; 404: profile missing; 500: internal error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	nric := middleware.CallerNRIC(r.Context())

	var (
		payload any
		err     error
	)
	switch middleware.CallerRole(r.Context()) {
	case core.RoleCustomer:
		payload, err = h.Svc.CustomerProfile(r.Context(), nric)
	case core.RoleAgent:
		payload, err = h.Svc.AgentProfile(r.Context(), nric)
	default:
		problem.Write(w, http.StatusForbidden, "Forbidden", "Profiles exist for customers and agents only.")
		return
	}
	if err != nil {
		writeError(r.Context(), h.Log, w, err, "Failed to load profile")
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to encode profile", "err", err)
	}
}

type updateProfileRequest struct {
	Field core.ProfileField `json:"field" validate:"required"`
	Value string            `json:"value" validate:"required"`
}

// UpdateProfile writes one whitelisted profile field for the caller.
// 204: updated; 400: unknown field or bad value; 401: no token; 500: internal error.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in updateProfileRequest
	if err := decode(r, &in); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}

	nric := middleware.CallerNRIC(r.Context())
	if err := h.Svc.UpdateProfile(r.Context(), nric, in.Field, in.Value); err != nil {
		writeError(r.Context(), h.Log, w, err, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
