package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurance4you/agency/internal/core"
)

type claimRow struct {
	ClaimID    string    `db:"claim_id"`
	PolicyID   string    `db:"policy_id"`
	CustomerID string    `db:"customer_id"`
	Details    string    `db:"details"`
	Amount     float64   `db:"amount"`
	Status     string    `db:"status"`
	DateFiled  time.Time `db:"date_filed"`
}

func fromClaimRow(r claimRow) core.Claim {
	return core.Claim{
		ClaimID:    r.ClaimID,
		PolicyID:   r.PolicyID,
		CustomerID: r.CustomerID,
		Details:    r.Details,
		Amount:     r.Amount,
		Status:     core.ClaimStatus(r.Status),
		DateFiled:  r.DateFiled,
	}
}

type ClaimRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewClaimRepo(db *sqlx.DB, opTimeout time.Duration) *ClaimRepoPG {
	return &ClaimRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *ClaimRepoPG) Create(ctx context.Context, c core.Claim) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO claims (claim_id, policy_id, customer_id, details, amount, status, date_filed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ClaimID, c.PolicyID, c.CustomerID, c.Details, c.Amount, c.Status, c.DateFiled)
	return mapError(err, nil, core.ErrConflict)
}

func (repo *ClaimRepoPG) Get(ctx context.Context, claimID string) (core.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row claimRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM claims WHERE claim_id = $1`, claimID)
	if err != nil {
		return core.Claim{}, mapError(err, core.ErrClaimNotFound, nil)
	}
	return fromClaimRow(row), nil
}

func (repo *ClaimRepoPG) ListPending(ctx context.Context) ([]core.Claim, error) {
	return repo.list(ctx, `SELECT * FROM claims WHERE status = $1 ORDER BY date_filed`,
		core.ClaimStatusPending)
}

func (repo *ClaimRepoPG) ListByCustomer(ctx context.Context, customerID string) ([]core.Claim, error) {
	return repo.list(ctx, `SELECT * FROM claims WHERE customer_id = $1 ORDER BY date_filed DESC`,
		customerID)
}

func (repo *ClaimRepoPG) list(ctx context.Context, query string, args ...any) ([]core.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []claimRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, query, args...)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	claims := make([]core.Claim, 0, len(rows))
	for _, r := range rows {
		claims = append(claims, fromClaimRow(r))
	}
	return claims, nil
}

func (repo *ClaimRepoPG) Decide(ctx context.Context, claimID string, status core.ClaimStatus, details string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx,
		`UPDATE claims SET status = $1, details = $2 WHERE claim_id = $3`,
		status, details, claimID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrClaimNotFound
	}
	return nil
}

func (repo *ClaimRepoPG) LastID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var id string
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &id, `
		SELECT claim_id FROM claims
		ORDER BY length(claim_id) DESC, claim_id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, nil, nil)
	}
	return id, nil
}
