package core

import (
	"context"
	"fmt"
	"time"

	"github.com/insurance4you/agency/internal/platform/ids"
)

type FileClaimInput struct {
	CustomerID string  `json:"customer_id"`
	PolicyID   string  `json:"policy_id"`
	Details    string  `json:"details"`
	Amount     float64 `json:"amount"`
}

func (in FileClaimInput) Validate() error {
	if in.CustomerID == "" {
		return fmt.Errorf("%w: missing customer ID", ErrValidation)
	}
	if in.PolicyID == "" {
		return fmt.Errorf("%w: missing policy ID", ErrValidation)
	}
	if in.Details == "" {
		return fmt.Errorf("%w: claim details are required", ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: claim amount must be > 0", ErrValidation)
	}
	return nil
}

type ClaimService interface {
	// File validates policy eligibility and records a pending claim.
	File(ctx context.Context, in FileClaimInput) (Claim, error)

	// Decide applies an administrator decision to a pending claim. A
	// rejection reason is appended to the claim details. Each decision is
	// durably applied on its own; deciding one claim never depends on the
	// next.
	Decide(ctx context.Context, claimID string, in ClaimDecisionInput) (Claim, error)

	ListPending(ctx context.Context) ([]Claim, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Claim, error)
}

type claimService struct {
	claims    ClaimRepo
	purchased PurchasedPolicyRepo
	clock     func() time.Time
}

func NewClaimService(claims ClaimRepo, purchased PurchasedPolicyRepo) ClaimService {
	return &claimService{
		claims:    claims,
		purchased: purchased,
		clock:     time.Now,
	}
}

func (s *claimService) File(ctx context.Context, in FileClaimInput) (Claim, error) {
	// 1) validate inputs
	if err := in.Validate(); err != nil {
		return Claim{}, err
	}

	// 2) the policy must be in force: accepted or premium_paid
	policy, err := s.purchased.Get(ctx, in.CustomerID, in.PolicyID)
	if err != nil {
		return Claim{}, err
	}
	if !policy.Status.ClaimEligible() {
		return Claim{}, fmt.Errorf("%w: cannot file a claim against a %s policy",
			ErrInvalidState, policy.Status)
	}

	// 3) allocate the claim ID and persist as pending
	claim := Claim{
		ClaimID:    s.nextClaimID(ctx),
		PolicyID:   in.PolicyID,
		CustomerID: in.CustomerID,
		Details:    in.Details,
		Amount:     in.Amount,
		Status:     ClaimStatusPending,
		DateFiled:  s.clock(),
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return Claim{}, err
	}
	return claim, nil
}

func (s *claimService) Decide(ctx context.Context, claimID string, in ClaimDecisionInput) (Claim, error) {
	if err := in.Validate(); err != nil {
		return Claim{}, err
	}

	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return Claim{}, err
	}
	if claim.Status != ClaimStatusPending {
		return Claim{}, fmt.Errorf("%w: claim %s is %s", ErrClaimDecided, claimID, claim.Status)
	}

	status := ClaimStatusAccepted
	details := claim.Details
	if in.Decision == ClaimDecisionReject {
		status = ClaimStatusRejected
		details = fmt.Sprintf("%s | Rejection Reason: %s", claim.Details, in.Reason)
	}

	if err := s.claims.Decide(ctx, claimID, status, details); err != nil {
		return Claim{}, err
	}
	claim.Status = status
	claim.Details = details
	return claim, nil
}

func (s *claimService) ListPending(ctx context.Context) ([]Claim, error) {
	return s.claims.ListPending(ctx)
}

func (s *claimService) ListByCustomer(ctx context.Context, customerID string) ([]Claim, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: missing customer ID", ErrValidation)
	}
	return s.claims.ListByCustomer(ctx, customerID)
}

func (s *claimService) nextClaimID(ctx context.Context) string {
	last, err := s.claims.LastID(ctx)
	if err != nil {
		return ids.Timestamp(ids.ClaimPrefix, s.clock())
	}
	id, err := ids.Next(ids.ClaimPrefix, ids.ClaimWidth, last)
	if err != nil {
		return ids.Timestamp(ids.ClaimPrefix, s.clock())
	}
	return id
}
