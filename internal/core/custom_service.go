package core

import (
	"context"
	"fmt"
	"time"

	"github.com/insurance4you/agency/internal/platform/ids"
)

type CustomPolicyInput struct {
	CustomerID     string
	Age            int
	CoverageAmount float64
	Details        PolicyDetails
}

func (in CustomPolicyInput) Validate() error {
	if in.CustomerID == "" {
		return fmt.Errorf("%w: missing customer ID", ErrValidation)
	}
	if in.CoverageAmount <= 0 {
		return fmt.Errorf("%w: coverage must be > 0", ErrValidation)
	}
	if in.Age < 0 || in.Age > 120 {
		return fmt.Errorf("%w: invalid age", ErrValidation)
	}
	switch d := in.Details.(type) {
	case LifeDetails:
		if d.BeneficiaryName == "" {
			return fmt.Errorf("%w: beneficiary name is required", ErrValidation)
		}
	case VehicleDetails:
		if d.VehicleValue <= 0 {
			return fmt.Errorf("%w: vehicle value must be > 0", ErrValidation)
		}
		if d.VehicleAge < 0 {
			return fmt.Errorf("%w: vehicle age must be >= 0", ErrValidation)
		}
	case HealthDetails:
		if d.Deductible < 0 || d.Copayment < 0 {
			return fmt.Errorf("%w: deductible and copayment must be >= 0", ErrValidation)
		}
	case PropertyDetails:
		if d.PropertyValue <= 0 {
			return fmt.Errorf("%w: property value must be > 0", ErrValidation)
		}
		if d.PropertyAge < 0 {
			return fmt.Errorf("%w: property age must be >= 0", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: missing policy details", ErrValidation)
	}
	return nil
}

// CustomPolicyView joins a pending request with its package description and
// the full type-detail row for the administrator's review.
type CustomPolicyView struct {
	Policy     CustomPolicy  `json:"policy"`
	CustomData string        `json:"custom_data"`
	Details    PolicyDetails `json:"details,omitempty"`
}

type CustomPolicyService interface {
	// Create prices the request and writes the package, the pending custom
	// policy and the type-detail row in a single transaction.
	Create(ctx context.Context, in CustomPolicyInput) (CustomPolicy, error)

	// ListPending returns requests awaiting validation.
	ListPending(ctx context.Context) ([]CustomPolicyView, error)

	// Approve marks the request accepted and derives the in-force purchased
	// policy from it, atomically. The custom row persists as an audit record.
	Approve(ctx context.Context, policyID string) (PurchasedPolicy, error)

	// Reject marks the request rejected. No purchased policy is created.
	Reject(ctx context.Context, policyID string) error
}

type customPolicyService struct {
	packages  PackageRepo
	custom    CustomPolicyRepo
	purchased PurchasedPolicyRepo
	agents    AgentRepo
	tx        TxRunner
	clock     func() time.Time
}

func NewCustomPolicyService(
	packages PackageRepo,
	custom CustomPolicyRepo,
	purchased PurchasedPolicyRepo,
	agents AgentRepo,
	tx TxRunner,
) CustomPolicyService {
	return &customPolicyService{
		packages:  packages,
		custom:    custom,
		purchased: purchased,
		agents:    agents,
		tx:        tx,
		clock:     time.Now,
	}
}

func (s *customPolicyService) Create(ctx context.Context, in CustomPolicyInput) (CustomPolicy, error) {
	// 1) validate inputs
	if err := in.Validate(); err != nil {
		return CustomPolicy{}, err
	}

	// 2) price the request
	premium := PremiumFor(in.Details, in.Age, in.CoverageAmount)
	policyType := in.Details.PolicyType()

	// 3) assign an active agent at random
	agent, err := s.agents.RandomActive(ctx)
	if err != nil {
		return CustomPolicy{}, err
	}

	// 4) allocate a type-prefixed policy ID
	policyID := s.nextPolicyID(ctx, policyType)

	now := s.clock()
	pkg := PolicyPackage{
		PolicyID:       policyID,
		PolicyType:     policyType,
		PolicyPlan:     PlanCustom,
		CoverageAmount: in.CoverageAmount,
		Premium:        premium,
		CustomData:     in.Details.Summary(),
	}
	policy := CustomPolicy{
		CustomerID:     in.CustomerID,
		PolicyID:       policyID,
		AgentID:        agent.AgentID,
		PolicyType:     policyType,
		PolicyPlan:     PlanCustom,
		CoverageAmount: in.CoverageAmount,
		Premium:        premium,
		Status:         PolicyStatusRequested,
		StartDate:      now,
		EndDate:        now.AddDate(PolicyTermYears, 0, 0),
	}

	// 5) package + custom policy + type details commit together or not at all
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.packages.Create(ctx, pkg); err != nil {
			return err
		}
		if err := s.custom.Create(ctx, policy); err != nil {
			return err
		}
		return s.packages.CreateDetails(ctx, policyID, in.CustomerID, in.Details)
	})
	if err != nil {
		return CustomPolicy{}, err
	}
	return policy, nil
}

func (s *customPolicyService) ListPending(ctx context.Context) ([]CustomPolicyView, error) {
	pending, err := s.custom.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CustomPolicyView, 0, len(pending))
	for _, p := range pending {
		view := CustomPolicyView{Policy: p}
		if pkg, err := s.packages.Get(ctx, p.PolicyID); err == nil {
			view.CustomData = pkg.CustomData
		}
		if details, err := s.packages.GetDetails(ctx, p.PolicyID, p.PolicyType); err == nil {
			view.Details = details
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *customPolicyService) Approve(ctx context.Context, policyID string) (PurchasedPolicy, error) {
	request, err := s.pendingRequest(ctx, policyID)
	if err != nil {
		return PurchasedPolicy{}, err
	}

	// The derived policy copies customer, agent and terms; dates restart at
	// approval time.
	now := s.clock()
	derived := PurchasedPolicy{
		CustomerID:     request.CustomerID,
		PolicyID:       request.PolicyID,
		AgentID:        request.AgentID,
		PolicyType:     request.PolicyType,
		PolicyPlan:     request.PolicyPlan,
		CoverageAmount: request.CoverageAmount,
		Premium:        request.Premium,
		Status:         PolicyStatusAccepted,
		StartDate:      now,
		EndDate:        now.AddDate(PolicyTermYears, 0, 0),
	}

	// Status flip and derived insert succeed together or neither does.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.custom.UpdateStatus(ctx, policyID, PolicyStatusAccepted); err != nil {
			return err
		}
		return s.purchased.Create(ctx, derived)
	})
	if err != nil {
		return PurchasedPolicy{}, err
	}
	return derived, nil
}

func (s *customPolicyService) Reject(ctx context.Context, policyID string) error {
	if _, err := s.pendingRequest(ctx, policyID); err != nil {
		return err
	}
	return s.custom.UpdateStatus(ctx, policyID, PolicyStatusRejected)
}

func (s *customPolicyService) pendingRequest(ctx context.Context, policyID string) (CustomPolicy, error) {
	if policyID == "" {
		return CustomPolicy{}, fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	request, err := s.custom.Get(ctx, policyID)
	if err != nil {
		return CustomPolicy{}, err
	}
	if request.Status != PolicyStatusRequested {
		return CustomPolicy{}, fmt.Errorf("%w: custom policy %s is %s", ErrCustomDecided, policyID, request.Status)
	}
	return request, nil
}

func (s *customPolicyService) nextPolicyID(ctx context.Context, t PolicyType) string {
	prefix := t.IDPrefix()
	last, err := s.packages.LastIDByPrefix(ctx, prefix)
	if err != nil {
		return ids.Timestamp(prefix, s.clock())
	}
	id, err := ids.Next(prefix, ids.PolicyWidth, last)
	if err != nil {
		return ids.Timestamp(prefix, s.clock())
	}
	return id
}
