package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newAgentServiceForTest() (*agentService, *fakeAgentRepo, *fakePackageRepo, *fakePurchasedRepo) {
	agents := newFakeAgentRepo(activeAgent("AG01"))
	packages := newFakePackageRepo(lifePackage())
	purchased := newFakePurchasedRepo()
	svc := NewAgentService(agents, packages, purchased).(*agentService)
	return svc, agents, packages, purchased
}

func TestCommission(t *testing.T) {
	svc, agents, _, _ := newAgentServiceForTest()
	agents.soldPremiums["AG01"] = 10000

	statement, err := svc.Commission(context.Background(), "AG01")
	if err != nil {
		t.Fatalf("Commission: %v", err)
	}
	if statement.TotalPremium != 10000 {
		t.Errorf("TotalPremium = %v, want 10000", statement.TotalPremium)
	}
	if statement.CommissionRate != 7.5 {
		t.Errorf("CommissionRate = %v, want 7.5", statement.CommissionRate)
	}
	if statement.TotalCommission != 750.00 {
		t.Errorf("TotalCommission = %v, want 750.00", statement.TotalCommission)
	}

	if _, err := svc.Commission(context.Background(), "AG99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown agent: err = %v, want ErrNotFound", err)
	}
}

func TestSalesReport(t *testing.T) {
	svc, _, _, purchased := newAgentServiceForTest()
	ctx := context.Background()

	sale := func(customerID, policyID string, year int, premium float64) PurchasedPolicy {
		start := time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
		return PurchasedPolicy{
			CustomerID: customerID, PolicyID: policyID, AgentID: "AG01",
			Premium: premium, Status: PolicyStatusAccepted,
			StartDate: start, EndDate: start.AddDate(1, 0, 0),
		}
	}
	for _, p := range []PurchasedPolicy{
		sale("C01", "L001", 2025, 1000),
		sale("C02", "L001", 2026, 2000),
		sale("C03", "V001", 2026, 4000),
	} {
		if err := purchased.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	report, err := svc.Report(ctx, "AG01")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.Sales) != 3 {
		t.Fatalf("sales = %d, want 3", len(report.Sales))
	}
	// Newest sales first.
	if report.Sales[0].StartDate.Year() != 2026 || report.Sales[2].StartDate.Year() != 2025 {
		t.Errorf("sales not sorted newest-first: %+v", report.Sales)
	}

	if len(report.Yearly) != 2 {
		t.Fatalf("yearly rows = %d, want 2", len(report.Yearly))
	}
	latest := report.Yearly[0]
	if latest.Year != 2026 || latest.PoliciesSold != 2 {
		t.Errorf("latest year = %+v", latest)
	}
	// 6000 premium at 7.5%.
	if latest.Commission != 450.00 {
		t.Errorf("2026 commission = %v, want 450.00", latest.Commission)
	}
	if report.Yearly[1].Year != 2025 || report.Yearly[1].Commission != 75.00 {
		t.Errorf("2025 row = %+v", report.Yearly[1])
	}
}

func TestProduction(t *testing.T) {
	svc, agents, _, purchased := newAgentServiceForTest()
	ctx := context.Background()
	if err := agents.Create(ctx, Agent{AgentID: "AG02", CommissionRate: 6.0, Status: AgentStatusActive}); err != nil {
		t.Fatal(err)
	}

	rows := []PurchasedPolicy{
		{CustomerID: "C01", PolicyID: "L001", AgentID: "AG01", Premium: 1000, Status: PolicyStatusAccepted},
		{CustomerID: "C02", PolicyID: "L001", AgentID: "AG01", Premium: 3000, Status: PolicyStatusPremiumPaid},
		{CustomerID: "C03", PolicyID: "V001", AgentID: "AG02", Premium: 2000, Status: PolicyStatusAccepted},
	}
	for _, row := range rows {
		if err := purchased.Create(ctx, row); err != nil {
			t.Fatal(err)
		}
	}

	report, err := svc.Production(ctx)
	if err != nil {
		t.Fatalf("Production: %v", err)
	}
	if report.TotalPolicies != 3 || report.TotalPremium != 6000 {
		t.Errorf("totals = %d policies / %v premium, want 3 / 6000", report.TotalPolicies, report.TotalPremium)
	}
	if len(report.Agents) != 2 {
		t.Fatalf("agent rows = %d, want 2", len(report.Agents))
	}
	// Roster order follows agent ID.
	first := report.Agents[0]
	if first.AgentID != "AG01" || first.PoliciesSold != 2 || first.TotalPremium != 4000 {
		t.Errorf("AG01 row = %+v", first)
	}
	if first.Commission != 300.00 {
		t.Errorf("AG01 commission = %v, want 300.00", first.Commission)
	}
	if report.Agents[1].Commission != 120.00 {
		t.Errorf("AG02 commission = %v, want 120.00", report.Agents[1].Commission)
	}
}

func TestUpdatePackage(t *testing.T) {
	svc, _, _, _ := newAgentServiceForTest()
	ctx := context.Background()

	if err := svc.UpdatePackage(ctx, "L001", PackageFieldPremium, "199.99"); err != nil {
		t.Errorf("update premium: %v", err)
	}

	if err := svc.UpdatePackage(ctx, "L001", "policy_id", "L999"); !errors.Is(err, ErrValidation) {
		t.Errorf("non-whitelisted field: err = %v, want ErrValidation", err)
	}
	if err := svc.UpdatePackage(ctx, "L001", PackageFieldPremium, "-5"); !errors.Is(err, ErrValidation) {
		t.Errorf("negative premium: err = %v, want ErrValidation", err)
	}
	if err := svc.UpdatePackage(ctx, "L001", PackageFieldPlan, "GOLD"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown plan: err = %v, want ErrValidation", err)
	}
	if err := svc.UpdatePackage(ctx, "L999", PackageFieldPremium, "100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown package: err = %v, want ErrNotFound", err)
	}
}

func TestDeletePackage(t *testing.T) {
	svc, _, packages, _ := newAgentServiceForTest()
	ctx := context.Background()

	if err := svc.DeletePackage(ctx, "L001"); err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}
	if _, err := packages.Get(ctx, "L001"); !errors.Is(err, ErrNotFound) {
		t.Error("package still present after delete")
	}
	if err := svc.DeletePackage(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty ID: err = %v, want ErrValidation", err)
	}
}

func TestAgentRoster(t *testing.T) {
	svc, agents, _, _ := newAgentServiceForTest()
	ctx := context.Background()

	if err := svc.SetAgentStatus(ctx, "AG01", AgentStatusInactive); err != nil {
		t.Fatalf("SetAgentStatus: %v", err)
	}
	agent, _ := agents.Get(ctx, "AG01")
	if agent.Status != AgentStatusInactive {
		t.Errorf("status = %q, want inactive", agent.Status)
	}

	if err := svc.SetAgentStatus(ctx, "AG01", "retired"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown status: err = %v, want ErrValidation", err)
	}

	if err := svc.RemoveAgent(ctx, "AG01"); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	roster, _ := svc.ListAgents(ctx)
	if len(roster) != 0 {
		t.Errorf("roster = %+v, want empty", roster)
	}
}
