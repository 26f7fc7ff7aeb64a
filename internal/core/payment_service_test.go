package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newPaymentServiceForTest() (*paymentService, *fakePaymentRepo, *fakePurchasedRepo) {
	payments := newFakePaymentRepo()
	purchased := newFakePurchasedRepo()
	purchased.payments = payments
	tx := &fakeTx{stores: []snapshotter{payments, purchased}}
	svc := NewPaymentService(payments, purchased, tx).(*paymentService)
	svc.clock = func() time.Time { return testNow }
	return svc, payments, purchased
}

func TestPay(t *testing.T) {
	svc, payments, purchased := newPaymentServiceForTest()
	seedPolicy(t, purchased, PolicyStatusAccepted)
	ctx := context.Background()

	payment, err := svc.Pay(ctx, "C01", "L001", PaymentMethodCard)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if payment.PaymentID != "PAYMENT001" {
		t.Errorf("PaymentID = %q, want PAYMENT001", payment.PaymentID)
	}
	if payment.Amount != 180 {
		t.Errorf("Amount = %v, want the policy premium 180", payment.Amount)
	}
	if payment.Status != PaymentStatusCompleted {
		t.Errorf("Status = %q, want Completed", payment.Status)
	}
	if payment.Reference == "" {
		t.Error("Reference is empty")
	}

	// The policy flips to premium_paid in the same transaction.
	policy, _ := purchased.Get(ctx, "C01", "L001")
	if policy.Status != PolicyStatusPremiumPaid {
		t.Errorf("policy status = %q, want premium_paid", policy.Status)
	}
	if _, err := payments.Get(ctx, "PAYMENT001"); err != nil {
		t.Errorf("payment row missing: %v", err)
	}
}

func TestPayTwiceRejected(t *testing.T) {
	svc, _, purchased := newPaymentServiceForTest()
	seedPolicy(t, purchased, PolicyStatusAccepted)
	ctx := context.Background()

	if _, err := svc.Pay(ctx, "C01", "L001", PaymentMethodCard); err != nil {
		t.Fatalf("first Pay: %v", err)
	}
	if _, err := svc.Pay(ctx, "C01", "L001", PaymentMethodCard); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("second Pay: err = %v, want ErrAlreadyPaid", err)
	}

	// The paid policy drops out of the payable set.
	payable, err := svc.Payable(ctx, "C01")
	if err != nil {
		t.Fatalf("Payable: %v", err)
	}
	if len(payable) != 0 {
		t.Errorf("payable = %+v, want empty", payable)
	}
}

func TestPayIneligibleStatuses(t *testing.T) {
	for _, status := range []PolicyStatus{
		PolicyStatusRequested, PolicyStatusRejected, PolicyStatusCancelled, PolicyStatusExpired,
	} {
		svc, _, purchased := newPaymentServiceForTest()
		seedPolicy(t, purchased, status)

		_, err := svc.Pay(context.Background(), "C01", "L001", PaymentMethodCard)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("status %s: err = %v, want ErrInvalidState", status, err)
		}
	}
}

func TestPayValidation(t *testing.T) {
	svc, _, purchased := newPaymentServiceForTest()
	seedPolicy(t, purchased, PolicyStatusAccepted)
	ctx := context.Background()

	if _, err := svc.Pay(ctx, "C01", "L001", "Cash"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown method: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Pay(ctx, "C01", "L999", PaymentMethodCard); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown policy: err = %v, want ErrNotFound", err)
	}
}

func TestPayAtomicity(t *testing.T) {
	svc, payments, purchased := newPaymentServiceForTest()
	seedPolicy(t, purchased, PolicyStatusAccepted)
	purchased.updateErr = errors.New("write failed")
	ctx := context.Background()

	if _, err := svc.Pay(ctx, "C01", "L001", PaymentMethodCard); err == nil {
		t.Fatal("expected error from failed status flip")
	}
	// The payment insert rolls back with the failed flip.
	if len(payments.payments) != 0 {
		t.Errorf("payment rows = %d, want 0", len(payments.payments))
	}
	policy, _ := purchased.Get(ctx, "C01", "L001")
	if policy.Status != PolicyStatusAccepted {
		t.Errorf("policy status = %q, want accepted after rollback", policy.Status)
	}

	// After the fault clears the retry pays normally.
	purchased.updateErr = nil
	if _, err := svc.Pay(ctx, "C01", "L001", PaymentMethodCard); err != nil {
		t.Errorf("retry Pay: %v", err)
	}
}

func TestPayable(t *testing.T) {
	svc, _, purchased := newPaymentServiceForTest()
	ctx := context.Background()

	rows := []PurchasedPolicy{
		{CustomerID: "C01", PolicyID: "L001", Status: PolicyStatusAccepted, Premium: 180},
		{CustomerID: "C01", PolicyID: "V001", Status: PolicyStatusRequested, Premium: 2625},
		{CustomerID: "C02", PolicyID: "H001", Status: PolicyStatusAccepted, Premium: 1054},
	}
	for _, row := range rows {
		if err := purchased.Create(ctx, row); err != nil {
			t.Fatal(err)
		}
	}

	payable, err := svc.Payable(ctx, "C01")
	if err != nil {
		t.Fatalf("Payable: %v", err)
	}
	// Only the caller's accepted policies are payable.
	if len(payable) != 1 || payable[0].PolicyID != "L001" {
		t.Errorf("payable = %+v, want [L001]", payable)
	}

	if _, err := svc.Payable(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty customer: err = %v, want ErrValidation", err)
	}
}

func TestPaymentHistory(t *testing.T) {
	svc, _, purchased := newPaymentServiceForTest()
	seedPolicy(t, purchased, PolicyStatusAccepted)
	ctx := context.Background()

	history, err := svc.History(ctx, "C01")
	if err != nil {
		t.Fatalf("empty History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %+v, want empty", history)
	}

	if _, err := svc.Pay(ctx, "C01", "L001", PaymentMethodOnlineBanking); err != nil {
		t.Fatalf("pay: %v", err)
	}
	history, err = svc.History(ctx, "C01")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Method != PaymentMethodOnlineBanking {
		t.Errorf("history = %+v", history)
	}
}
