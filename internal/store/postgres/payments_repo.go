package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurance4you/agency/internal/core"
)

type paymentRow struct {
	PaymentID   string         `db:"payment_id"`
	Reference   sql.NullString `db:"reference"`
	CustomerID  string         `db:"customer_id"`
	PolicyID    string         `db:"policy_id"`
	Amount      float64        `db:"amount"`
	PaymentDate time.Time      `db:"payment_date"`
	Method      string         `db:"payment_method"`
	Status      string         `db:"status"`
}

func fromPaymentRow(r paymentRow) core.Payment {
	return core.Payment{
		PaymentID:   r.PaymentID,
		Reference:   r.Reference.String,
		CustomerID:  r.CustomerID,
		PolicyID:    r.PolicyID,
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate,
		Method:      core.PaymentMethod(r.Method),
		Status:      core.PaymentStatus(r.Status),
	}
}

type PaymentRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewPaymentRepo(db *sqlx.DB, opTimeout time.Duration) *PaymentRepoPG {
	return &PaymentRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *PaymentRepoPG) Create(ctx context.Context, p core.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO payments (payment_id, reference, customer_id, policy_id, amount, payment_date, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.PaymentID, p.Reference, p.CustomerID, p.PolicyID, p.Amount, p.PaymentDate, p.Method, p.Status)
	return mapError(err, nil, core.ErrConflict)
}

func (repo *PaymentRepoPG) Get(ctx context.Context, paymentID string) (core.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row paymentRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM payments WHERE payment_id = $1`, paymentID)
	if err != nil {
		return core.Payment{}, mapError(err, core.ErrPaymentNotFound, nil)
	}
	return fromPaymentRow(row), nil
}

func (repo *PaymentRepoPG) ListByCustomer(ctx context.Context, customerID string) ([]core.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []paymentRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT * FROM payments
		WHERE customer_id = $1 ORDER BY payment_date DESC`, customerID)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	payments := make([]core.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, fromPaymentRow(r))
	}
	return payments, nil
}

func (repo *PaymentRepoPG) HasCompleted(ctx context.Context, customerID, policyID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &exists, `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE customer_id = $1 AND policy_id = $2 AND status = $3
		)`, customerID, policyID, core.PaymentStatusCompleted)
	if err != nil {
		return false, mapError(err, nil, nil)
	}
	return exists, nil
}

func (repo *PaymentRepoPG) LastID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var id string
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &id, `
		SELECT payment_id FROM payments
		ORDER BY length(payment_id) DESC, payment_id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, nil, nil)
	}
	return id, nil
}
