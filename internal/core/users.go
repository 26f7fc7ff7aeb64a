package core

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

type Role string

const (
	RoleCustomer      Role = "Customer"
	RoleAgent         Role = "Agent"
	RoleAdministrator Role = "Administrator"
)

type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

// User is the base identity record, keyed by NRIC.
type User struct {
	NRIC          string    `json:"nric"`
	Role          Role      `json:"role"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	ContactNumber string    `json:"contact_number"`
	Age           int       `json:"age"`
	CreatedAt     time.Time `json:"created_at"`
}

// Customer carries the customer-specific extension of a User (1:1 by NRIC).
type Customer struct {
	CustomerID string  `json:"customer_id"` // C01, C02, ...
	NRIC       string  `json:"nric"`
	Occupation string  `json:"occupation"`
	Income     float64 `json:"income"`
}

// Agent carries the agent-specific extension of a User (1:1 by NRIC).
type Agent struct {
	AgentID        string      `json:"agent_id"` // AG01, AG02, ...
	NRIC           string      `json:"nric"`
	Qualification  string      `json:"qualification"`
	CommissionRate float64     `json:"commission_rate"` // percentage, 0-100
	Status         AgentStatus `json:"status"`
}

// ProfileField is the closed set of user fields an operator may update.
// Free-form field names never reach the persistence layer.
type ProfileField string

const (
	FieldName          ProfileField = "name"
	FieldEmail         ProfileField = "email"
	FieldPassword      ProfileField = "password"
	FieldAge           ProfileField = "age"
	FieldContactNumber ProfileField = "contact_number"
)

func (f ProfileField) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldPassword, FieldAge, FieldContactNumber:
		return true
	}
	return false
}

type UserRepo interface {
	Create(ctx context.Context, u User) error
	Get(ctx context.Context, nric string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateProfileField(ctx context.Context, nric string, field ProfileField, value string) error
}

type CustomerRepo interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, customerID string) (Customer, error)
	GetByNRIC(ctx context.Context, nric string) (Customer, error)
	LastID(ctx context.Context) (string, error)
}

type AgentRepo interface {
	Create(ctx context.Context, a Agent) error
	Get(ctx context.Context, agentID string) (Agent, error)
	GetByNRIC(ctx context.Context, nric string) (Agent, error)
	List(ctx context.Context) ([]Agent, error)
	RandomActive(ctx context.Context) (Agent, error)
	SetStatus(ctx context.Context, agentID string, status AgentStatus) error
	Delete(ctx context.Context, agentID string) error
	LastID(ctx context.Context) (string, error)
	// SumSoldPremiums totals the premium snapshots of purchased policies
	// credited to the agent. Commission is always derived, never stored.
	SumSoldPremiums(ctx context.Context, agentID string) (float64, error)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (u User) Validate() error {
	if u.NRIC == "" {
		return fmt.Errorf("%w: nric is required", ErrValidation)
	}
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !emailRegex.MatchString(u.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if u.Age < 0 || u.Age > 120 {
		return fmt.Errorf("%w: invalid age", ErrValidation)
	}
	switch u.Role {
	case RoleCustomer, RoleAgent, RoleAdministrator:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidation, u.Role)
	}
	return nil
}

var (
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrUserExists       = fmt.Errorf("%w: user already registered", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrCustomerNotFound = fmt.Errorf("%w: customer not found", ErrNotFound)
	ErrAgentNotFound    = fmt.Errorf("%w: agent not found", ErrNotFound)
	ErrNoActiveAgents   = fmt.Errorf("%w: no active agents available", ErrNotFound)
	ErrBadCredentials   = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
)
