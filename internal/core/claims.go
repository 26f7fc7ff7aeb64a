package core

import (
	"context"
	"fmt"
	"time"
)

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "Pending"
	ClaimStatusAccepted ClaimStatus = "Accepted"
	ClaimStatusRejected ClaimStatus = "Rejected"
)

// Claim is filed by a customer against an eligible purchased policy and is
// decided by an administrator. Claims are never deleted.
type Claim struct {
	ClaimID    string      `json:"claim_id"` // C01, C02, ... (claims namespace, distinct from customer IDs)
	PolicyID   string      `json:"policy_id"`
	CustomerID string      `json:"customer_id"`
	Details    string      `json:"details"`
	Amount     float64     `json:"amount"`
	Status     ClaimStatus `json:"status"`
	DateFiled  time.Time   `json:"date_filed"`
}

type ClaimDecision string

const (
	ClaimDecisionAccept ClaimDecision = "accept"
	ClaimDecisionReject ClaimDecision = "reject"
)

type ClaimDecisionInput struct {
	Decision ClaimDecision `json:"decision"`
	Reason   string        `json:"reason,omitempty"` // required when rejecting
}

func (in ClaimDecisionInput) Validate() error {
	switch in.Decision {
	case ClaimDecisionAccept:
	case ClaimDecisionReject:
		if in.Reason == "" {
			return fmt.Errorf("%w: rejection reason is required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: decision must be 'accept' or 'reject'", ErrValidation)
	}
	return nil
}

type ClaimRepo interface {
	Create(ctx context.Context, c Claim) error
	Get(ctx context.Context, claimID string) (Claim, error)
	ListPending(ctx context.Context) ([]Claim, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Claim, error)
	// Decide updates status and details together (rejection reasons live in
	// the details field, not a separate column).
	Decide(ctx context.Context, claimID string, status ClaimStatus, details string) error
	LastID(ctx context.Context) (string, error)
}

var (
	ErrClaimNotFound = fmt.Errorf("%w: claim not found", ErrNotFound)
	ErrClaimDecided  = fmt.Errorf("%w: claim already decided", ErrInvalidState)
)
