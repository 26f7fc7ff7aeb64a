package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func newPolicyServiceForTest(packages *fakePackageRepo, agents *fakeAgentRepo) (*policyService, *fakePurchasedRepo) {
	purchased := newFakePurchasedRepo()
	users := newFakeUserRepo()
	for _, a := range agents.agents {
		users.users[a.NRIC] = User{NRIC: a.NRIC, Role: RoleAgent, Name: "Farah Osman"}
	}
	tx := &fakeTx{stores: []snapshotter{purchased}}
	svc := NewPolicyService(packages, purchased, agents, users, tx).(*policyService)
	svc.clock = func() time.Time { return testNow }
	return svc, purchased
}

func activeAgent(id string) Agent {
	return Agent{AgentID: id, NRIC: "850215045111", CommissionRate: 7.5, Status: AgentStatusActive}
}

func lifePackage() PolicyPackage {
	return PolicyPackage{
		PolicyID:       "L001",
		PolicyType:     PolicyTypeLife,
		PolicyPlan:     PlanStandard,
		CoverageAmount: 100000,
		Premium:        180.00,
	}
}

func TestCatalog(t *testing.T) {
	packages := newFakePackageRepo(
		lifePackage(),
		PolicyPackage{PolicyID: "L900", PolicyType: PolicyTypeLife, PolicyPlan: PlanCustom, CoverageAmount: 1, Premium: 1},
		PolicyPackage{PolicyID: "V001", PolicyType: PolicyTypeVehicle, PolicyPlan: PlanStandard, CoverageAmount: 1, Premium: 1},
	)
	svc, _ := newPolicyServiceForTest(packages, newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()

	got, err := svc.Catalog(ctx, PolicyTypeLife)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	// Custom packages and other types stay out of the catalog listing.
	if len(got) != 1 || got[0].PolicyID != "L001" {
		t.Errorf("Catalog = %+v, want [L001]", got)
	}

	if _, err := svc.Catalog(ctx, "PET"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown type: err = %v, want ErrValidation", err)
	}
}

func TestPurchase(t *testing.T) {
	svc, purchased := newPolicyServiceForTest(
		newFakePackageRepo(lifePackage()),
		newFakeAgentRepo(activeAgent("AG01")),
	)
	ctx := context.Background()

	policy, err := svc.Purchase(ctx, "C01", "L001")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if policy.Status != PolicyStatusRequested {
		t.Errorf("Status = %q, want requested", policy.Status)
	}
	if policy.AgentID != "AG01" {
		t.Errorf("AgentID = %q, want AG01", policy.AgentID)
	}
	if policy.Premium != 180.00 || policy.CoverageAmount != 100000 {
		t.Errorf("terms not snapshotted: %+v", policy)
	}
	if !policy.EndDate.Equal(testNow.AddDate(1, 0, 0)) {
		t.Errorf("EndDate = %v, want one year after start", policy.EndDate)
	}
	if _, err := purchased.Get(ctx, "C01", "L001"); err != nil {
		t.Errorf("purchased row missing: %v", err)
	}

	// Repurchasing the same package is a conflict.
	if _, err := svc.Purchase(ctx, "C01", "L001"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate purchase: err = %v, want ErrConflict", err)
	}
}

func TestPurchaseRejectsCustomPackage(t *testing.T) {
	custom := PolicyPackage{PolicyID: "L900", PolicyType: PolicyTypeLife, PolicyPlan: PlanCustom, CoverageAmount: 1, Premium: 1}
	svc, _ := newPolicyServiceForTest(newFakePackageRepo(custom), newFakeAgentRepo(activeAgent("AG01")))

	if _, err := svc.Purchase(context.Background(), "C01", "L900"); !errors.Is(err, ErrValidation) {
		t.Errorf("custom package purchase: err = %v, want ErrValidation", err)
	}
}

func TestPurchaseNoActiveAgents(t *testing.T) {
	inactive := Agent{AgentID: "AG01", Status: AgentStatusInactive}
	svc, _ := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(inactive))

	if _, err := svc.Purchase(context.Background(), "C01", "L001"); !errors.Is(err, ErrNoActiveAgents) {
		t.Errorf("err = %v, want ErrNoActiveAgents", err)
	}
}

func TestDecide(t *testing.T) {
	svc, purchased := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()
	if _, err := svc.Purchase(ctx, "C01", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	policy, err := svc.Decide(ctx, "C01", "L001", true)
	if err != nil {
		t.Fatalf("Decide approve: %v", err)
	}
	if policy.Status != PolicyStatusAccepted {
		t.Errorf("Status = %q, want accepted", policy.Status)
	}

	// Re-deciding an accepted policy is an invalid transition.
	if _, err := svc.Decide(ctx, "C01", "L001", false); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second decision: err = %v, want ErrInvalidState", err)
	}

	// Rejection is terminal.
	if _, err := svc.Purchase(ctx, "C02", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.Decide(ctx, "C02", "L001", false); err != nil {
		t.Fatalf("Decide reject: %v", err)
	}
	got, _ := purchased.Get(ctx, "C02", "L001")
	if got.Status != PolicyStatusRejected {
		t.Errorf("Status = %q, want rejected", got.Status)
	}
}

func TestCancel(t *testing.T) {
	svc, _ := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()
	if _, err := svc.Purchase(ctx, "C01", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	policy, err := svc.Cancel(ctx, "C01", "L001")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if policy.Status != PolicyStatusCancelled {
		t.Errorf("Status = %q, want cancelled", policy.Status)
	}

	if _, err := svc.Cancel(ctx, "C01", "L001"); !errors.Is(err, ErrPolicyTerminal) {
		t.Errorf("cancel cancelled: err = %v, want ErrPolicyTerminal", err)
	}

	if _, err := svc.Cancel(ctx, "C01", "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancel unknown: err = %v, want ErrNotFound", err)
	}
}

func TestStatuses(t *testing.T) {
	svc, _ := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()
	if _, err := svc.Purchase(ctx, "C01", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	views, err := svc.Statuses(ctx, "C01")
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Policy.PolicyID != "L001" || views[0].Policy.Status != PolicyStatusRequested {
		t.Errorf("view policy = %+v", views[0].Policy)
	}
	if views[0].AgentName != "Farah Osman" {
		t.Errorf("AgentName = %q, want the servicing agent's name", views[0].AgentName)
	}

	if _, err := svc.Statuses(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty customer: err = %v, want ErrValidation", err)
	}
}

func TestPendingPurchases(t *testing.T) {
	svc, _ := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()
	if _, err := svc.Purchase(ctx, "C01", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.Purchase(ctx, "C02", "L001"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.Decide(ctx, "C02", "L001", true); err != nil {
		t.Fatalf("decide: %v", err)
	}

	// Only the undecided request is up for review.
	pending, err := svc.PendingPurchases(ctx)
	if err != nil {
		t.Fatalf("PendingPurchases: %v", err)
	}
	if len(pending) != 1 || pending[0].CustomerID != "C01" {
		t.Errorf("pending = %+v, want C01's request only", pending)
	}
}

func TestExpireEnded(t *testing.T) {
	svc, purchased := newPolicyServiceForTest(newFakePackageRepo(lifePackage()), newFakeAgentRepo(activeAgent("AG01")))
	ctx := context.Background()

	ended := PurchasedPolicy{
		CustomerID: "C01", PolicyID: "L001", Status: PolicyStatusAccepted,
		StartDate: testNow.AddDate(-2, 0, 0), EndDate: testNow.AddDate(-1, 0, 0),
	}
	current := PurchasedPolicy{
		CustomerID: "C02", PolicyID: "L001", Status: PolicyStatusAccepted,
		StartDate: testNow, EndDate: testNow.AddDate(1, 0, 0),
	}
	if err := purchased.Create(ctx, ended); err != nil {
		t.Fatal(err)
	}
	if err := purchased.Create(ctx, current); err != nil {
		t.Fatal(err)
	}

	n, err := svc.ExpireEnded(ctx)
	if err != nil {
		t.Fatalf("ExpireEnded: %v", err)
	}
	if n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}
	got, _ := purchased.Get(ctx, "C01", "L001")
	if got.Status != PolicyStatusExpired {
		t.Errorf("ended policy status = %q, want expired", got.Status)
	}
	got, _ = purchased.Get(ctx, "C02", "L001")
	if got.Status != PolicyStatusAccepted {
		t.Errorf("current policy status = %q, want accepted", got.Status)
	}
}
