package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newCustomServiceForTest() (*customPolicyService, *fakePackageRepo, *fakeCustomRepo, *fakePurchasedRepo) {
	packages := newFakePackageRepo()
	custom := newFakeCustomRepo()
	purchased := newFakePurchasedRepo()
	agents := newFakeAgentRepo(activeAgent("AG01"))
	tx := &fakeTx{stores: []snapshotter{packages, custom, purchased}}
	svc := NewCustomPolicyService(packages, custom, purchased, agents, tx).(*customPolicyService)
	svc.clock = func() time.Time { return testNow }
	return svc, packages, custom, purchased
}

func lifeInput() CustomPolicyInput {
	return CustomPolicyInput{
		CustomerID:     "C01",
		Age:            25,
		CoverageAmount: 30000,
		Details:        LifeDetails{BeneficiaryName: "Mei Lim", MedicalHistory: "none"},
	}
}

func TestCreateCustomPolicy(t *testing.T) {
	svc, packages, custom, _ := newCustomServiceForTest()
	ctx := context.Background()

	policy, err := svc.Create(ctx, lifeInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if policy.PolicyID != "L001" {
		t.Errorf("PolicyID = %q, want L001", policy.PolicyID)
	}
	if policy.Premium != CalculateLifePremium(25, 30000, "none") {
		t.Errorf("Premium = %v, want formula result", policy.Premium)
	}
	if policy.Status != PolicyStatusRequested || policy.PolicyPlan != PlanCustom {
		t.Errorf("policy = %+v", policy)
	}

	// Package, pending row and detail row all land together.
	pkg, err := packages.Get(ctx, "L001")
	if err != nil {
		t.Fatalf("package row missing: %v", err)
	}
	if pkg.PolicyPlan != PlanCustom {
		t.Errorf("package plan = %q, want CUSTOM", pkg.PolicyPlan)
	}
	if _, err := custom.Get(ctx, "L001"); err != nil {
		t.Errorf("custom row missing: %v", err)
	}
	if _, err := packages.GetDetails(ctx, "L001", PolicyTypeLife); err != nil {
		t.Errorf("detail row missing: %v", err)
	}

	// IDs stay in the type's namespace: a vehicle request starts at V001.
	vehicle, err := svc.Create(ctx, CustomPolicyInput{
		CustomerID:     "C01",
		CoverageAmount: 50000,
		Details:        VehicleDetails{VehicleType: "Sedan", VehicleValue: 50000, VehicleAge: 3},
	})
	if err != nil {
		t.Fatalf("vehicle Create: %v", err)
	}
	if vehicle.PolicyID != "V001" {
		t.Errorf("vehicle PolicyID = %q, want V001", vehicle.PolicyID)
	}
	if vehicle.Premium != CalculateVehiclePremium(50000, 3) {
		t.Errorf("vehicle Premium = %v", vehicle.Premium)
	}
}

func TestCreateCustomPolicyValidation(t *testing.T) {
	svc, _, _, _ := newCustomServiceForTest()
	ctx := context.Background()

	in := lifeInput()
	in.Details = nil
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
		t.Errorf("missing details: err = %v, want ErrValidation", err)
	}

	in = lifeInput()
	in.CoverageAmount = 0
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
		t.Errorf("zero coverage: err = %v, want ErrValidation", err)
	}

	in = lifeInput()
	in.Details = LifeDetails{MedicalHistory: "none"}
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
		t.Errorf("missing beneficiary: err = %v, want ErrValidation", err)
	}
}

func TestCreateCustomPolicyAtomicity(t *testing.T) {
	svc, packages, custom, _ := newCustomServiceForTest()
	packages.detailErr = errors.New("write failed")

	_, err := svc.Create(context.Background(), lifeInput())
	if err == nil {
		t.Fatal("expected error from failed detail write")
	}
	// Neither the package nor the pending row may survive the failed tx.
	if len(packages.packages) != 0 {
		t.Errorf("package rows = %d, want 0", len(packages.packages))
	}
	if len(custom.policies) != 0 {
		t.Errorf("custom rows = %d, want 0", len(custom.policies))
	}
}

func TestApproveCustomPolicy(t *testing.T) {
	svc, _, custom, purchased := newCustomServiceForTest()
	ctx := context.Background()
	created, err := svc.Create(ctx, lifeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	derived, err := svc.Approve(ctx, created.PolicyID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if derived.Status != PolicyStatusAccepted {
		t.Errorf("derived status = %q, want accepted", derived.Status)
	}
	if derived.CustomerID != "C01" || derived.AgentID != "AG01" || derived.Premium != created.Premium {
		t.Errorf("derived policy lost request terms: %+v", derived)
	}
	// Dates restart at approval time.
	if !derived.StartDate.Equal(testNow) || !derived.EndDate.Equal(testNow.AddDate(1, 0, 0)) {
		t.Errorf("derived dates = %v..%v", derived.StartDate, derived.EndDate)
	}

	// The audit row flips to accepted and the in-force row exists.
	request, _ := custom.Get(ctx, created.PolicyID)
	if request.Status != PolicyStatusAccepted {
		t.Errorf("request status = %q, want accepted", request.Status)
	}
	if _, err := purchased.Get(ctx, "C01", created.PolicyID); err != nil {
		t.Errorf("purchased row missing: %v", err)
	}

	// A decided request cannot be decided again.
	if _, err := svc.Approve(ctx, created.PolicyID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second approve: err = %v, want ErrInvalidState", err)
	}
	if err := svc.Reject(ctx, created.PolicyID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("reject after approve: err = %v, want ErrInvalidState", err)
	}
}

func TestApproveAtomicity(t *testing.T) {
	svc, _, custom, purchased := newCustomServiceForTest()
	ctx := context.Background()
	created, err := svc.Create(ctx, lifeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	purchased.createErr = errors.New("write failed")
	if _, err := svc.Approve(ctx, created.PolicyID); err == nil {
		t.Fatal("expected error from failed purchased insert")
	}

	// The status flip must roll back with the failed insert.
	request, _ := custom.Get(ctx, created.PolicyID)
	if request.Status != PolicyStatusRequested {
		t.Errorf("request status = %q, want requested after rollback", request.Status)
	}
	if len(purchased.policies) != 0 {
		t.Errorf("purchased rows = %d, want 0", len(purchased.policies))
	}

	// A retry after the fault clears succeeds.
	purchased.createErr = nil
	if _, err := svc.Approve(ctx, created.PolicyID); err != nil {
		t.Errorf("retry approve: %v", err)
	}
}

func TestRejectCustomPolicy(t *testing.T) {
	svc, _, custom, purchased := newCustomServiceForTest()
	ctx := context.Background()
	created, err := svc.Create(ctx, lifeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Reject(ctx, created.PolicyID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	request, _ := custom.Get(ctx, created.PolicyID)
	if request.Status != PolicyStatusRejected {
		t.Errorf("status = %q, want rejected", request.Status)
	}
	// Rejection derives no in-force policy.
	if len(purchased.policies) != 0 {
		t.Errorf("purchased rows = %d, want 0", len(purchased.policies))
	}

	if err := svc.Reject(ctx, "L999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown request: err = %v, want ErrNotFound", err)
	}
}

func TestListPendingCustomPolicies(t *testing.T) {
	svc, _, _, _ := newCustomServiceForTest()
	ctx := context.Background()
	created, err := svc.Create(ctx, lifeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(views) != 1 || views[0].Policy.PolicyID != created.PolicyID {
		t.Fatalf("views = %+v", views)
	}
	// The review view carries the package's detail summary and the full
	// type-detail row.
	if views[0].CustomData == "" {
		t.Error("CustomData is empty")
	}
	details, ok := views[0].Details.(LifeDetails)
	if !ok {
		t.Fatalf("Details = %T, want LifeDetails", views[0].Details)
	}
	if details.BeneficiaryName != "Mei Lim" {
		t.Errorf("BeneficiaryName = %q, want Mei Lim", details.BeneficiaryName)
	}

	if err := svc.Reject(ctx, created.PolicyID); err != nil {
		t.Fatal(err)
	}
	views, _ = svc.ListPending(ctx)
	if len(views) != 0 {
		t.Errorf("pending after reject = %d, want 0", len(views))
	}
}
