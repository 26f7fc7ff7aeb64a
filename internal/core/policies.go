package core

import (
	"context"
	"fmt"
	"time"
)

type PolicyStatus string

const (
	PolicyStatusRequested   PolicyStatus = "requested" // awaiting admin decision
	PolicyStatusAccepted    PolicyStatus = "accepted"
	PolicyStatusRejected    PolicyStatus = "rejected"
	PolicyStatusPremiumPaid PolicyStatus = "premium_paid"
	PolicyStatusCancelled   PolicyStatus = "cancelled"
	PolicyStatusExpired     PolicyStatus = "expired"
)

// CanTransitionTo checks if a status transition is valid. Terminal statuses
// (rejected, cancelled, expired) admit no further transitions.
func (s PolicyStatus) CanTransitionTo(next PolicyStatus) bool {
	transitions := map[PolicyStatus][]PolicyStatus{
		PolicyStatusRequested:   {PolicyStatusAccepted, PolicyStatusRejected, PolicyStatusCancelled},
		PolicyStatusAccepted:    {PolicyStatusPremiumPaid, PolicyStatusCancelled, PolicyStatusExpired},
		PolicyStatusPremiumPaid: {PolicyStatusCancelled, PolicyStatusExpired},
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status excludes the policy from every workflow.
func (s PolicyStatus) Terminal() bool {
	switch s {
	case PolicyStatusRejected, PolicyStatusCancelled, PolicyStatusExpired:
		return true
	}
	return false
}

// ClaimEligible reports whether a claim may be filed against the status.
func (s PolicyStatus) ClaimEligible() bool {
	return s == PolicyStatusAccepted || s == PolicyStatusPremiumPaid
}

// PolicyTermYears is the fixed policy term: end date is always start + 1 year.
const PolicyTermYears = 1

// PurchasedPolicy binds a customer to a policy instance. It snapshots the
// package terms at purchase time and is the authoritative in-force record.
// Composite key (customer_id, policy_id).
type PurchasedPolicy struct {
	CustomerID     string       `json:"customer_id"`
	PolicyID       string       `json:"policy_id"`
	AgentID        string       `json:"agent_id"`
	PolicyType     PolicyType   `json:"policy_type"`
	PolicyPlan     PolicyPlan   `json:"policy_plan"`
	CoverageAmount float64      `json:"coverage_amount"`
	Premium        float64      `json:"premium"`
	Status         PolicyStatus `json:"status"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
}

// CustomPolicy is a pending custom-policy request. On approval a
// PurchasedPolicy row is derived from it; the row itself is never deleted and
// survives as an audit record with a terminal status.
type CustomPolicy struct {
	CustomerID     string       `json:"customer_id"`
	PolicyID       string       `json:"policy_id"`
	AgentID        string       `json:"agent_id"`
	PolicyType     PolicyType   `json:"policy_type"`
	PolicyPlan     PolicyPlan   `json:"policy_plan"`
	CoverageAmount float64      `json:"coverage_amount"`
	Premium        float64      `json:"premium"`
	Status         PolicyStatus `json:"status"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
}

type PurchasedPolicyRepo interface {
	Create(ctx context.Context, p PurchasedPolicy) error
	Get(ctx context.Context, customerID, policyID string) (PurchasedPolicy, error)
	ListByCustomer(ctx context.Context, customerID string) ([]PurchasedPolicy, error)
	ListByAgent(ctx context.Context, agentID string) ([]PurchasedPolicy, error)
	ListByStatus(ctx context.Context, status PolicyStatus) ([]PurchasedPolicy, error)
	UpdateStatus(ctx context.Context, customerID, policyID string, status PolicyStatus) error
	// ListPayable returns the customer's accepted policies that have no
	// completed payment yet. Already-paid policies are excluded here rather
	// than by a uniqueness constraint.
	ListPayable(ctx context.Context, customerID string) ([]PurchasedPolicy, error)
	// ExpireEnded moves non-terminal policies whose end date has passed to
	// expired, returning how many rows changed.
	ExpireEnded(ctx context.Context, before time.Time) (int64, error)
}

type CustomPolicyRepo interface {
	Create(ctx context.Context, p CustomPolicy) error
	Get(ctx context.Context, policyID string) (CustomPolicy, error)
	ListPending(ctx context.Context) ([]CustomPolicy, error)
	ListByCustomer(ctx context.Context, customerID string) ([]CustomPolicy, error)
	UpdateStatus(ctx context.Context, policyID string, status PolicyStatus) error
}

var (
	ErrPolicyNotFound = fmt.Errorf("%w: policy not found", ErrNotFound)
	ErrPolicyExists   = fmt.Errorf("%w: policy already purchased", ErrConflict)
	ErrPolicyTerminal = fmt.Errorf("%w: policy is in a terminal status", ErrInvalidState)
	ErrCustomNotFound = fmt.Errorf("%w: custom policy not found", ErrNotFound)
	ErrCustomDecided  = fmt.Errorf("%w: custom policy already decided", ErrInvalidState)
)
