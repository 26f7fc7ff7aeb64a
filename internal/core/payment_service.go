package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/insurance4you/agency/internal/platform/ids"
)

type PaymentService interface {
	// Payable lists the customer's accepted policies with no completed
	// payment. Paid policies drop out of this set.
	Payable(ctx context.Context, customerID string) ([]PurchasedPolicy, error)

	// Pay records a completed premium payment and flips the policy to
	// premium_paid in one transaction. Paying an already-paid or otherwise
	// ineligible policy is an invalid transition.
	Pay(ctx context.Context, customerID, policyID string, method PaymentMethod) (Payment, error)

	History(ctx context.Context, customerID string) ([]Payment, error)
}

type paymentService struct {
	payments  PaymentRepo
	purchased PurchasedPolicyRepo
	tx        TxRunner
	clock     func() time.Time
}

func NewPaymentService(payments PaymentRepo, purchased PurchasedPolicyRepo, tx TxRunner) PaymentService {
	return &paymentService{
		payments:  payments,
		purchased: purchased,
		tx:        tx,
		clock:     time.Now,
	}
}

func (s *paymentService) Payable(ctx context.Context, customerID string) ([]PurchasedPolicy, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: missing customer ID", ErrValidation)
	}
	return s.purchased.ListPayable(ctx, customerID)
}

func (s *paymentService) Pay(ctx context.Context, customerID, policyID string, method PaymentMethod) (Payment, error) {
	// 1) validate method
	if !method.Valid() {
		return Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	// 2) eligibility: accepted, with no completed payment on record
	policy, err := s.purchased.Get(ctx, customerID, policyID)
	if err != nil {
		return Payment{}, err
	}
	if policy.Status == PolicyStatusPremiumPaid {
		return Payment{}, ErrAlreadyPaid
	}
	if policy.Status != PolicyStatusAccepted {
		return Payment{}, fmt.Errorf("%w: cannot pay a %s policy", ErrInvalidState, policy.Status)
	}
	paid, err := s.payments.HasCompleted(ctx, customerID, policyID)
	if err != nil {
		return Payment{}, err
	}
	if paid {
		return Payment{}, ErrAlreadyPaid
	}

	payment := Payment{
		PaymentID:   s.nextPaymentID(ctx),
		Reference:   uuid.NewString(),
		CustomerID:  customerID,
		PolicyID:    policyID,
		Amount:      policy.Premium,
		PaymentDate: s.clock(),
		Method:      method,
		Status:      PaymentStatusCompleted,
	}

	// 3) payment insert and status flip commit together or not at all
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		return s.purchased.UpdateStatus(ctx, customerID, policyID, PolicyStatusPremiumPaid)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (s *paymentService) History(ctx context.Context, customerID string) ([]Payment, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: missing customer ID", ErrValidation)
	}
	payments, err := s.payments.ListByCustomer(ctx, customerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return payments, nil
}

func (s *paymentService) nextPaymentID(ctx context.Context) string {
	last, err := s.payments.LastID(ctx)
	if err != nil {
		return ids.Timestamp(ids.PaymentPrefix, s.clock())
	}
	id, err := ids.Next(ids.PaymentPrefix, ids.PaymentWidth, last)
	if err != nil {
		return ids.Timestamp(ids.PaymentPrefix, s.clock())
	}
	return id
}
