package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// CommissionStatement is derived on demand; commission totals are never
// stored.
type CommissionStatement struct {
	AgentID         string  `json:"agent_id"`
	TotalPremium    float64 `json:"total_premium"`
	CommissionRate  float64 `json:"commission_rate"`
	TotalCommission float64 `json:"total_commission"`
}

type YearlySales struct {
	Year         int     `json:"year"`
	PoliciesSold int     `json:"policies_sold"`
	Commission   float64 `json:"commission"`
}

type SalesReport struct {
	AgentID string            `json:"agent_id"`
	Sales   []PurchasedPolicy `json:"sales"`
	Yearly  []YearlySales     `json:"yearly_summary"`
}

// ProductionRow summarizes one agent's sales for the agency-wide report.
type ProductionRow struct {
	AgentID      string      `json:"agent_id"`
	Status       AgentStatus `json:"status"`
	PoliciesSold int         `json:"policies_sold"`
	TotalPremium float64     `json:"total_premium"`
	Commission   float64     `json:"commission"`
}

// AgencyProduction is the administrator's roster-wide production report.
type AgencyProduction struct {
	Agents        []ProductionRow `json:"agents"`
	TotalPolicies int             `json:"total_policies"`
	TotalPremium  float64         `json:"total_premium"`
}

type AgentService interface {
	// Commission derives the agent's total commission from premium snapshots.
	Commission(ctx context.Context, agentID string) (CommissionStatement, error)

	// Report lists the agent's sales newest-first with a per-year summary.
	Report(ctx context.Context, agentID string) (SalesReport, error)

	// Production rolls up every agent's sales for the administrator.
	Production(ctx context.Context) (AgencyProduction, error)

	// UpdatePackage writes a single whitelisted catalog field.
	UpdatePackage(ctx context.Context, policyID string, field PackageField, value string) error

	// DeletePackage removes a catalog template. Purchased snapshots are
	// unaffected; policy IDs are never reissued after deletion.
	DeletePackage(ctx context.Context, policyID string) error

	ListPackages(ctx context.Context) ([]PolicyPackage, error)
	SoldPolicies(ctx context.Context, agentID string) ([]PurchasedPolicy, error)

	// Administration of the agent roster.
	ListAgents(ctx context.Context) ([]Agent, error)
	SetAgentStatus(ctx context.Context, agentID string, status AgentStatus) error
	RemoveAgent(ctx context.Context, agentID string) error
}

type agentService struct {
	agents    AgentRepo
	packages  PackageRepo
	purchased PurchasedPolicyRepo
}

func NewAgentService(agents AgentRepo, packages PackageRepo, purchased PurchasedPolicyRepo) AgentService {
	return &agentService{
		agents:    agents,
		packages:  packages,
		purchased: purchased,
	}
}

func (s *agentService) Commission(ctx context.Context, agentID string) (CommissionStatement, error) {
	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return CommissionStatement{}, err
	}

	total, err := s.agents.SumSoldPremiums(ctx, agentID)
	if err != nil {
		return CommissionStatement{}, err
	}

	return CommissionStatement{
		AgentID:         agentID,
		TotalPremium:    total,
		CommissionRate:  agent.CommissionRate,
		TotalCommission: round2(total * agent.CommissionRate / 100),
	}, nil
}

func (s *agentService) Report(ctx context.Context, agentID string) (SalesReport, error) {
	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return SalesReport{}, err
	}

	sales, err := s.purchased.ListByAgent(ctx, agentID)
	if err != nil {
		return SalesReport{}, err
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].StartDate.After(sales[j].StartDate) })

	byYear := make(map[int]*YearlySales)
	for _, sale := range sales {
		year := sale.StartDate.Year()
		row, ok := byYear[year]
		if !ok {
			row = &YearlySales{Year: year}
			byYear[year] = row
		}
		row.PoliciesSold++
		row.Commission += sale.Premium * agent.CommissionRate / 100
	}

	yearly := make([]YearlySales, 0, len(byYear))
	for _, row := range byYear {
		row.Commission = round2(row.Commission)
		yearly = append(yearly, *row)
	}
	sort.Slice(yearly, func(i, j int) bool { return yearly[i].Year > yearly[j].Year })

	return SalesReport{AgentID: agentID, Sales: sales, Yearly: yearly}, nil
}

func (s *agentService) Production(ctx context.Context) (AgencyProduction, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return AgencyProduction{}, err
	}

	report := AgencyProduction{Agents: make([]ProductionRow, 0, len(agents))}
	for _, agent := range agents {
		sales, err := s.purchased.ListByAgent(ctx, agent.AgentID)
		if err != nil {
			return AgencyProduction{}, err
		}
		var premium float64
		for _, sale := range sales {
			premium += sale.Premium
		}
		report.Agents = append(report.Agents, ProductionRow{
			AgentID:      agent.AgentID,
			Status:       agent.Status,
			PoliciesSold: len(sales),
			TotalPremium: premium,
			Commission:   round2(premium * agent.CommissionRate / 100),
		})
		report.TotalPolicies += len(sales)
		report.TotalPremium += premium
	}
	return report, nil
}

func (s *agentService) UpdatePackage(ctx context.Context, policyID string, field PackageField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: field %q is not updatable", ErrValidation, field)
	}

	switch field {
	case PackageFieldPlan:
		switch PolicyPlan(value) {
		case PlanStandard, PlanPremium, PlanCustom:
		default:
			return fmt.Errorf("%w: unknown plan %q", ErrValidation, value)
		}
	case PackageFieldPremium, PackageFieldCoverage:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || amount <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", ErrValidation, field)
		}
	}

	return s.packages.UpdateField(ctx, policyID, field, value)
}

func (s *agentService) DeletePackage(ctx context.Context, policyID string) error {
	if policyID == "" {
		return fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	return s.packages.Delete(ctx, policyID)
}

func (s *agentService) ListPackages(ctx context.Context) ([]PolicyPackage, error) {
	return s.packages.List(ctx)
}

func (s *agentService) SoldPolicies(ctx context.Context, agentID string) ([]PurchasedPolicy, error) {
	if agentID == "" {
		return nil, fmt.Errorf("%w: missing agent ID", ErrValidation)
	}
	return s.purchased.ListByAgent(ctx, agentID)
}

func (s *agentService) ListAgents(ctx context.Context) ([]Agent, error) {
	return s.agents.List(ctx)
}

func (s *agentService) SetAgentStatus(ctx context.Context, agentID string, status AgentStatus) error {
	if status != AgentStatusActive && status != AgentStatusInactive {
		return fmt.Errorf("%w: unknown agent status %q", ErrValidation, status)
	}
	return s.agents.SetStatus(ctx, agentID, status)
}

func (s *agentService) RemoveAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("%w: missing agent ID", ErrValidation)
	}
	return s.agents.Delete(ctx, agentID)
}
