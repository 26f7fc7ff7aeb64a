package core

import (
	"context"
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "Card"
	PaymentMethodOnlineBanking PaymentMethod = "OnlineBanking"
)

type PaymentStatus string

const PaymentStatusCompleted PaymentStatus = "Completed"

// Payment records a completed premium payment. Creating one flips the
// purchased policy to premium_paid; a policy gets at most one completed
// payment because paid policies drop out of the payable set.
type Payment struct {
	PaymentID   string        `json:"payment_id"` // PAYMENT001, ...
	Reference   string        `json:"reference"`  // opaque receipt reference
	CustomerID  string        `json:"customer_id"`
	PolicyID    string        `json:"policy_id"`
	Amount      float64       `json:"amount"`
	PaymentDate time.Time     `json:"payment_date"`
	Method      PaymentMethod `json:"method"`
	Status      PaymentStatus `json:"status"`
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodOnlineBanking
}

type PaymentRepo interface {
	Create(ctx context.Context, p Payment) error
	Get(ctx context.Context, paymentID string) (Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Payment, error)
	HasCompleted(ctx context.Context, customerID, policyID string) (bool, error)
	LastID(ctx context.Context) (string, error)
}

var (
	ErrPaymentNotFound = fmt.Errorf("%w: payment not found", ErrNotFound)
	ErrAlreadyPaid     = fmt.Errorf("%w: premium already paid for policy", ErrInvalidState)
)
