package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newUserServiceForTest() (*userService, *fakeUserRepo, *fakeCustomerRepo, *fakeAgentRepo) {
	users := newFakeUserRepo()
	customers := newFakeCustomerRepo()
	agents := newFakeAgentRepo()
	tx := &fakeTx{stores: []snapshotter{users, customers, agents}}
	svc := NewUserService(users, customers, agents, tx).(*userService)
	svc.clock = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }
	return svc, users, customers, agents
}

func customerInput(nric, email string) RegisterCustomerInput {
	return RegisterCustomerInput{
		NRIC:       nric,
		Name:       "Daniel Lim",
		Email:      email,
		Password:   "changeme123",
		Age:        30,
		Occupation: "Engineer",
		Income:     85000,
	}
}

func TestRegisterCustomer(t *testing.T) {
	svc, users, customers, _ := newUserServiceForTest()
	ctx := context.Background()

	customer, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "daniel@example.com"))
	if err != nil {
		t.Fatalf("RegisterCustomer: %v", err)
	}
	if customer.CustomerID != "C01" {
		t.Errorf("CustomerID = %q, want C01", customer.CustomerID)
	}

	user, err := users.Get(ctx, "950505105333")
	if err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if user.Role != RoleCustomer {
		t.Errorf("Role = %q, want Customer", user.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("changeme123")) != nil {
		t.Error("stored password hash does not verify")
	}
	if _, err := customers.GetByNRIC(ctx, "950505105333"); err != nil {
		t.Errorf("customer row missing: %v", err)
	}

	// IDs allocate sequentially.
	second, err := svc.RegisterCustomer(ctx, customerInput("880830125444", "priya@example.com"))
	if err != nil {
		t.Fatalf("second RegisterCustomer: %v", err)
	}
	if second.CustomerID != "C02" {
		t.Errorf("second CustomerID = %q, want C02", second.CustomerID)
	}
}

func TestRegisterCustomerDuplicateRollsBack(t *testing.T) {
	svc, _, customers, _ := newUserServiceForTest()
	ctx := context.Background()

	if _, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "daniel@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "other@example.com"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate NRIC: err = %v, want ErrConflict", err)
	}

	// The failed registration must not leave a second customer row behind.
	if len(customers.customers) != 1 {
		t.Errorf("customer rows = %d, want 1", len(customers.customers))
	}
}

func TestRegisterCustomerValidation(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	bad := customerInput("950505105333", "not-an-email")
	if _, err := svc.RegisterCustomer(ctx, bad); !errors.Is(err, ErrValidation) {
		t.Errorf("bad email: err = %v, want ErrValidation", err)
	}

	bad = customerInput("950505105333", "ok@example.com")
	bad.Income = -1
	if _, err := svc.RegisterCustomer(ctx, bad); !errors.Is(err, ErrValidation) {
		t.Errorf("negative income: err = %v, want ErrValidation", err)
	}
}

func TestRegisterCustomerIDFallback(t *testing.T) {
	svc, _, customers, _ := newUserServiceForTest()
	customers.lastIDErr = errors.New("store down")

	customer, err := svc.RegisterCustomer(context.Background(), customerInput("950505105333", "daniel@example.com"))
	if err != nil {
		t.Fatalf("RegisterCustomer: %v", err)
	}
	// Timestamp fallback: prefix plus 14-digit UTC stamp.
	if want := "C20260115100000"; customer.CustomerID != want {
		t.Errorf("CustomerID = %q, want %q", customer.CustomerID, want)
	}
}

func TestRegisterAgent(t *testing.T) {
	svc, _, _, agents := newUserServiceForTest()
	ctx := context.Background()

	agent, err := svc.RegisterAgent(ctx, RegisterAgentInput{
		NRIC:           "850215045111",
		Name:           "Marcus Tan",
		Email:          "marcus@example.com",
		Password:       "changeme123",
		Age:            39,
		Qualification:  "CFP",
		CommissionRate: 7.5,
	})
	if err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}
	if agent.AgentID != "AG01" {
		t.Errorf("AgentID = %q, want AG01", agent.AgentID)
	}
	if agent.Status != AgentStatusActive {
		t.Errorf("Status = %q, want active", agent.Status)
	}
	if _, err := agents.GetByNRIC(ctx, "850215045111"); err != nil {
		t.Errorf("agent row missing: %v", err)
	}

	_, err = svc.RegisterAgent(ctx, RegisterAgentInput{
		NRIC: "910712085222", Name: "Siti Noor", Email: "siti@example.com",
		Password: "changeme123", CommissionRate: 120,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("commission rate 120: err = %v, want ErrValidation", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()
	if _, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "daniel@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "950505105333", "changeme123", RoleCustomer); err != nil {
		t.Errorf("valid credentials: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "950505105333", "wrong", RoleCustomer); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password: err = %v, want ErrBadCredentials", err)
	}
	// A customer token must not be obtainable through the agent role.
	if _, err := svc.Authenticate(ctx, "950505105333", "changeme123", RoleAgent); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong role: err = %v, want ErrBadCredentials", err)
	}
	// Unknown users fail identically to bad passwords.
	if _, err := svc.Authenticate(ctx, "000000000000", "changeme123", RoleCustomer); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown user: err = %v, want ErrBadCredentials", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest()
	ctx := context.Background()
	if _, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "daniel@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.UpdateProfile(ctx, "950505105333", FieldEmail, "new@example.com"); err != nil {
		t.Errorf("update email: %v", err)
	}

	if err := svc.UpdateProfile(ctx, "950505105333", "role", "Administrator"); !errors.Is(err, ErrValidation) {
		t.Errorf("non-whitelisted field: err = %v, want ErrValidation", err)
	}
	if err := svc.UpdateProfile(ctx, "950505105333", FieldEmail, "nope"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad email: err = %v, want ErrValidation", err)
	}
	if err := svc.UpdateProfile(ctx, "950505105333", FieldAge, "170"); !errors.Is(err, ErrValidation) {
		t.Errorf("age out of range: err = %v, want ErrValidation", err)
	}

	// Passwords are hashed before they reach the repo.
	if err := svc.UpdateProfile(ctx, "950505105333", FieldPassword, "newsecret"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	user, _ := users.Get(ctx, "950505105333")
	if user.PasswordHash == "newsecret" {
		t.Error("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")) != nil {
		t.Error("new password hash does not verify")
	}
}

func TestProfiles(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()
	if _, err := svc.RegisterCustomer(ctx, customerInput("950505105333", "daniel@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.CustomerProfile(ctx, "950505105333")
	if err != nil {
		t.Fatalf("CustomerProfile: %v", err)
	}
	if profile.Customer.CustomerID != "C01" || profile.User.Name != "Daniel Lim" {
		t.Errorf("profile = %+v", profile)
	}

	if _, err := svc.AgentProfile(ctx, "950505105333"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AgentProfile for customer: err = %v, want ErrNotFound", err)
	}
}
