package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/insurance4you/agency/internal/platform/ids"
)

type RegisterCustomerInput struct {
	NRIC          string  `json:"nric" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	ContactNumber string  `json:"contact_number"`
	Age           int     `json:"age" validate:"gte=0,lte=120"`
	Occupation    string  `json:"occupation"`
	Income        float64 `json:"income" validate:"gte=0"`
}

type RegisterAgentInput struct {
	NRIC           string  `json:"nric" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	ContactNumber  string  `json:"contact_number"`
	Age            int     `json:"age" validate:"gte=0,lte=120"`
	Qualification  string  `json:"qualification"`
	CommissionRate float64 `json:"commission_rate" validate:"gte=0,lte=100"`
}

// CustomerProfile joins the base user record with the customer extension.
type CustomerProfile struct {
	User     User     `json:"user"`
	Customer Customer `json:"customer"`
}

// AgentProfile joins the base user record with the agent extension.
type AgentProfile struct {
	User  User  `json:"user"`
	Agent Agent `json:"agent"`
}

type UserService interface {
	// RegisterCustomer creates the user and customer rows in one transaction
	// and returns the allocated customer ID.
	RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (Customer, error)

	// RegisterAgent creates the user and agent rows in one transaction and
	// returns the allocated agent ID.
	RegisterAgent(ctx context.Context, in RegisterAgentInput) (Agent, error)

	// Authenticate verifies credentials for the expected role.
	Authenticate(ctx context.Context, nric, password string, role Role) (User, error)

	// UpdateProfile writes a single whitelisted field. Passwords are hashed
	// before they reach the store.
	UpdateProfile(ctx context.Context, nric string, field ProfileField, value string) error

	CustomerProfile(ctx context.Context, nric string) (CustomerProfile, error)
	AgentProfile(ctx context.Context, nric string) (AgentProfile, error)
}

type userService struct {
	users     UserRepo
	customers CustomerRepo
	agents    AgentRepo
	tx        TxRunner
	clock     func() time.Time
}

func NewUserService(users UserRepo, customers CustomerRepo, agents AgentRepo, tx TxRunner) UserService {
	return &userService{
		users:     users,
		customers: customers,
		agents:    agents,
		tx:        tx,
		clock:     time.Now,
	}
}

func (s *userService) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (Customer, error) {
	user := User{
		NRIC:          in.NRIC,
		Role:          RoleCustomer,
		Name:          in.Name,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Age:           in.Age,
		CreatedAt:     s.clock(),
	}
	if err := user.Validate(); err != nil {
		return Customer{}, err
	}
	if in.Income < 0 {
		return Customer{}, fmt.Errorf("%w: income must be >= 0", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	customer := Customer{
		CustomerID: s.nextCustomerID(ctx),
		NRIC:       in.NRIC,
		Occupation: in.Occupation,
		Income:     in.Income,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.customers.Create(ctx, customer)
	})
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

func (s *userService) RegisterAgent(ctx context.Context, in RegisterAgentInput) (Agent, error) {
	user := User{
		NRIC:          in.NRIC,
		Role:          RoleAgent,
		Name:          in.Name,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Age:           in.Age,
		CreatedAt:     s.clock(),
	}
	if err := user.Validate(); err != nil {
		return Agent{}, err
	}
	if in.CommissionRate < 0 || in.CommissionRate > 100 {
		return Agent{}, fmt.Errorf("%w: commission rate must be between 0 and 100", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Agent{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	agent := Agent{
		AgentID:        s.nextAgentID(ctx),
		NRIC:           in.NRIC,
		Qualification:  in.Qualification,
		CommissionRate: in.CommissionRate,
		Status:         AgentStatusActive,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.agents.Create(ctx, agent)
	})
	if err != nil {
		return Agent{}, err
	}
	return agent, nil
}

func (s *userService) Authenticate(ctx context.Context, nric, password string, role Role) (User, error) {
	if nric == "" || password == "" {
		return User{}, fmt.Errorf("%w: missing credentials", ErrValidation)
	}

	user, err := s.users.Get(ctx, nric)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if user.Role != role {
		return User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, nric string, field ProfileField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: field %q is not updatable", ErrValidation, field)
	}
	if value == "" {
		return fmt.Errorf("%w: missing value", ErrValidation)
	}

	switch field {
	case FieldEmail:
		if !emailRegex.MatchString(value) {
			return fmt.Errorf("%w: invalid email format", ErrValidation)
		}
	case FieldAge:
		age, err := strconv.Atoi(value)
		if err != nil || age < 0 || age > 120 {
			return fmt.Errorf("%w: invalid age", ErrValidation)
		}
	case FieldPassword:
		hash, err := bcrypt.GenerateFromPassword([]byte(value), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		value = string(hash)
	}

	return s.users.UpdateProfileField(ctx, nric, field, value)
}

func (s *userService) CustomerProfile(ctx context.Context, nric string) (CustomerProfile, error) {
	user, err := s.users.Get(ctx, nric)
	if err != nil {
		return CustomerProfile{}, err
	}
	customer, err := s.customers.GetByNRIC(ctx, nric)
	if err != nil {
		return CustomerProfile{}, err
	}
	return CustomerProfile{User: user, Customer: customer}, nil
}

func (s *userService) AgentProfile(ctx context.Context, nric string) (AgentProfile, error) {
	user, err := s.users.Get(ctx, nric)
	if err != nil {
		return AgentProfile{}, err
	}
	agent, err := s.agents.GetByNRIC(ctx, nric)
	if err != nil {
		return AgentProfile{}, err
	}
	return AgentProfile{User: user, Agent: agent}, nil
}

// nextCustomerID allocates the next C-prefixed customer ID, falling back to a
// timestamp ID when the store is unreachable or the last ID is malformed.
func (s *userService) nextCustomerID(ctx context.Context) string {
	last, err := s.customers.LastID(ctx)
	if err != nil {
		return ids.Timestamp(ids.CustomerPrefix, s.clock())
	}
	id, err := ids.Next(ids.CustomerPrefix, ids.CustomerWidth, last)
	if err != nil {
		return ids.Timestamp(ids.CustomerPrefix, s.clock())
	}
	return id
}

func (s *userService) nextAgentID(ctx context.Context) string {
	last, err := s.agents.LastID(ctx)
	if err != nil {
		return ids.Timestamp(ids.AgentPrefix, s.clock())
	}
	id, err := ids.Next(ids.AgentPrefix, ids.AgentWidth, last)
	if err != nil {
		return ids.Timestamp(ids.AgentPrefix, s.clock())
	}
	return id
}
