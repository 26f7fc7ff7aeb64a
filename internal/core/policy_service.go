package core

import (
	"context"
	"fmt"
	"time"
)

// PolicyStatusView is a customer-facing row joining the purchase with the
// servicing agent's name.
type PolicyStatusView struct {
	Policy    PurchasedPolicy `json:"policy"`
	AgentName string          `json:"agent_name,omitempty"`
}

type PolicyService interface {
	// Catalog returns the prepared (non-custom) packages of a type.
	Catalog(ctx context.Context, t PolicyType) ([]PolicyPackage, error)

	// Purchase binds the customer to a prepared package: the package terms
	// are snapshotted, an active agent is assigned at random and the policy
	// starts in requested status with a one-year term.
	Purchase(ctx context.Context, customerID, policyID string) (PurchasedPolicy, error)

	// PendingPurchases lists requested policies awaiting a decision.
	PendingPurchases(ctx context.Context) ([]PurchasedPolicy, error)

	// Decide is the administrator's approval/rejection of a requested policy.
	Decide(ctx context.Context, customerID, policyID string, approve bool) (PurchasedPolicy, error)

	// Cancel moves any non-terminal policy to cancelled.
	Cancel(ctx context.Context, customerID, policyID string) (PurchasedPolicy, error)

	// Statuses lists the customer's purchased policies with the servicing
	// agent's name joined in.
	Statuses(ctx context.Context, customerID string) ([]PolicyStatusView, error)

	// ExpireEnded marks non-terminal policies past their end date as expired.
	// Operator-invoked and synchronous; there is no background scheduler.
	ExpireEnded(ctx context.Context) (int64, error)
}

type policyService struct {
	packages  PackageRepo
	purchased PurchasedPolicyRepo
	agents    AgentRepo
	users     UserRepo
	tx        TxRunner
	clock     func() time.Time
}

func NewPolicyService(packages PackageRepo, purchased PurchasedPolicyRepo, agents AgentRepo, users UserRepo, tx TxRunner) PolicyService {
	return &policyService{
		packages:  packages,
		purchased: purchased,
		agents:    agents,
		users:     users,
		tx:        tx,
		clock:     time.Now,
	}
}

func (s *policyService) Catalog(ctx context.Context, t PolicyType) ([]PolicyPackage, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown policy type %q", ErrValidation, t)
	}
	return s.packages.ListPrepared(ctx, t)
}

func (s *policyService) Purchase(ctx context.Context, customerID, policyID string) (PurchasedPolicy, error) {
	// 1) load the catalog package
	pkg, err := s.packages.Get(ctx, policyID)
	if err != nil {
		return PurchasedPolicy{}, err
	}
	if pkg.PolicyPlan == PlanCustom {
		return PurchasedPolicy{}, fmt.Errorf("%w: custom packages are not purchasable directly", ErrValidation)
	}

	// 2) assign an active agent at random
	agent, err := s.agents.RandomActive(ctx)
	if err != nil {
		return PurchasedPolicy{}, err
	}

	// 3) snapshot terms; term is always one year
	now := s.clock()
	policy := PurchasedPolicy{
		CustomerID:     customerID,
		PolicyID:       pkg.PolicyID,
		AgentID:        agent.AgentID,
		PolicyType:     pkg.PolicyType,
		PolicyPlan:     pkg.PolicyPlan,
		CoverageAmount: pkg.CoverageAmount,
		Premium:        pkg.Premium,
		Status:         PolicyStatusRequested,
		StartDate:      now,
		EndDate:        now.AddDate(PolicyTermYears, 0, 0),
	}

	if err := s.purchased.Create(ctx, policy); err != nil {
		return PurchasedPolicy{}, err
	}
	return policy, nil
}

func (s *policyService) PendingPurchases(ctx context.Context) ([]PurchasedPolicy, error) {
	return s.purchased.ListByStatus(ctx, PolicyStatusRequested)
}

func (s *policyService) Decide(ctx context.Context, customerID, policyID string, approve bool) (PurchasedPolicy, error) {
	policy, err := s.purchased.Get(ctx, customerID, policyID)
	if err != nil {
		return PurchasedPolicy{}, err
	}

	next := PolicyStatusAccepted
	if !approve {
		next = PolicyStatusRejected
	}
	if !policy.Status.CanTransitionTo(next) {
		return PurchasedPolicy{}, fmt.Errorf("%w: cannot move policy %s from %s to %s",
			ErrInvalidState, policyID, policy.Status, next)
	}

	if err := s.purchased.UpdateStatus(ctx, customerID, policyID, next); err != nil {
		return PurchasedPolicy{}, err
	}
	policy.Status = next
	return policy, nil
}

func (s *policyService) Cancel(ctx context.Context, customerID, policyID string) (PurchasedPolicy, error) {
	policy, err := s.purchased.Get(ctx, customerID, policyID)
	if err != nil {
		return PurchasedPolicy{}, err
	}
	if policy.Status.Terminal() {
		return PurchasedPolicy{}, fmt.Errorf("%w: policy %s is %s", ErrPolicyTerminal, policyID, policy.Status)
	}

	if err := s.purchased.UpdateStatus(ctx, customerID, policyID, PolicyStatusCancelled); err != nil {
		return PurchasedPolicy{}, err
	}
	policy.Status = PolicyStatusCancelled
	return policy, nil
}

func (s *policyService) Statuses(ctx context.Context, customerID string) ([]PolicyStatusView, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: missing customer ID", ErrValidation)
	}

	policies, err := s.purchased.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// Agent names live on the user record; one lookup per distinct agent.
	names := make(map[string]string)
	views := make([]PolicyStatusView, 0, len(policies))
	for _, p := range policies {
		view := PolicyStatusView{Policy: p}
		if p.AgentID != "" {
			name, seen := names[p.AgentID]
			if !seen {
				name = s.agentName(ctx, p.AgentID)
				names[p.AgentID] = name
			}
			view.AgentName = name
		}
		views = append(views, view)
	}
	return views, nil
}

// agentName resolves the agent's display name; a removed agent leaves it "".
func (s *policyService) agentName(ctx context.Context, agentID string) string {
	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return ""
	}
	u, err := s.users.Get(ctx, agent.NRIC)
	if err != nil {
		return ""
	}
	return u.Name
}

func (s *policyService) ExpireEnded(ctx context.Context) (int64, error) {
	return s.purchased.ExpireEnded(ctx, s.clock())
}
