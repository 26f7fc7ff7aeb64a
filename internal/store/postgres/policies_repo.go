package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurance4you/agency/internal/core"
)

type purchasedRow struct {
	CustomerID     string         `db:"customer_id"`
	PolicyID       string         `db:"policy_id"`
	AgentID        sql.NullString `db:"agent_id"`
	PolicyType     string         `db:"policy_type"`
	PolicyPlan     string         `db:"policy_plan"`
	CoverageAmount float64        `db:"coverage_amount"`
	Premium        float64        `db:"premium"`
	Status         string         `db:"status"`
	StartDate      time.Time      `db:"start_date"`
	EndDate        time.Time      `db:"end_date"`
}

func fromPurchasedRow(r purchasedRow) core.PurchasedPolicy {
	return core.PurchasedPolicy{
		CustomerID:     r.CustomerID,
		PolicyID:       r.PolicyID,
		AgentID:        r.AgentID.String,
		PolicyType:     core.PolicyType(r.PolicyType),
		PolicyPlan:     core.PolicyPlan(r.PolicyPlan),
		CoverageAmount: r.CoverageAmount,
		Premium:        r.Premium,
		Status:         core.PolicyStatus(r.Status),
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
	}
}

func purchasedFromRows(rows []purchasedRow) []core.PurchasedPolicy {
	policies := make([]core.PurchasedPolicy, 0, len(rows))
	for _, r := range rows {
		policies = append(policies, fromPurchasedRow(r))
	}
	return policies
}

type PurchasedPolicyRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewPurchasedPolicyRepo(db *sqlx.DB, opTimeout time.Duration) *PurchasedPolicyRepoPG {
	return &PurchasedPolicyRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *PurchasedPolicyRepoPG) Create(ctx context.Context, p core.PurchasedPolicy) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO purchased_policy
			(customer_id, policy_id, agent_id, policy_type, policy_plan, coverage_amount, premium, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.CustomerID, p.PolicyID, p.AgentID, p.PolicyType, p.PolicyPlan,
		p.CoverageAmount, p.Premium, p.Status, p.StartDate, p.EndDate)
	return mapError(err, nil, core.ErrPolicyExists)
}

func (repo *PurchasedPolicyRepoPG) Get(ctx context.Context, customerID, policyID string) (core.PurchasedPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row purchasedRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row, `
		SELECT * FROM purchased_policy
		WHERE customer_id = $1 AND policy_id = $2`, customerID, policyID)
	if err != nil {
		return core.PurchasedPolicy{}, mapError(err, core.ErrPolicyNotFound, nil)
	}
	return fromPurchasedRow(row), nil
}

func (repo *PurchasedPolicyRepoPG) ListByCustomer(ctx context.Context, customerID string) ([]core.PurchasedPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []purchasedRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT * FROM purchased_policy
		WHERE customer_id = $1 ORDER BY start_date DESC, policy_id`, customerID)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return purchasedFromRows(rows), nil
}

func (repo *PurchasedPolicyRepoPG) ListByAgent(ctx context.Context, agentID string) ([]core.PurchasedPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []purchasedRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT * FROM purchased_policy
		WHERE agent_id = $1 ORDER BY start_date DESC, policy_id`, agentID)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return purchasedFromRows(rows), nil
}

func (repo *PurchasedPolicyRepoPG) ListByStatus(ctx context.Context, status core.PolicyStatus) ([]core.PurchasedPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []purchasedRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT * FROM purchased_policy
		WHERE status = $1 ORDER BY start_date DESC, policy_id`, status)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return purchasedFromRows(rows), nil
}

func (repo *PurchasedPolicyRepoPG) UpdateStatus(ctx context.Context, customerID, policyID string, status core.PolicyStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx, `
		UPDATE purchased_policy SET status = $1
		WHERE customer_id = $2 AND policy_id = $3`, status, customerID, policyID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPolicyNotFound
	}
	return nil
}

func (repo *PurchasedPolicyRepoPG) ListPayable(ctx context.Context, customerID string) ([]core.PurchasedPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []purchasedRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT pp.* FROM purchased_policy pp
		LEFT JOIN payments pay
			ON pay.customer_id = pp.customer_id
			AND pay.policy_id = pp.policy_id
			AND pay.status = 'Completed'
		WHERE pp.customer_id = $1
			AND pp.status = $2
			AND pay.payment_id IS NULL
		ORDER BY pp.policy_id`, customerID, core.PolicyStatusAccepted)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return purchasedFromRows(rows), nil
}

func (repo *PurchasedPolicyRepoPG) ExpireEnded(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx, `
		UPDATE purchased_policy SET status = $1
		WHERE end_date < $2 AND status IN ($3, $4)`,
		core.PolicyStatusExpired, before,
		core.PolicyStatusAccepted, core.PolicyStatusPremiumPaid)
	if err != nil {
		return 0, mapError(err, nil, nil)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type CustomPolicyRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewCustomPolicyRepo(db *sqlx.DB, opTimeout time.Duration) *CustomPolicyRepoPG {
	return &CustomPolicyRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *CustomPolicyRepoPG) Create(ctx context.Context, p core.CustomPolicy) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO custom_policy
			(customer_id, policy_id, agent_id, policy_type, policy_plan, coverage_amount, premium, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.CustomerID, p.PolicyID, p.AgentID, p.PolicyType, p.PolicyPlan,
		p.CoverageAmount, p.Premium, p.Status, p.StartDate, p.EndDate)
	return mapError(err, nil, core.ErrPolicyExists)
}

func (repo *CustomPolicyRepoPG) Get(ctx context.Context, policyID string) (core.CustomPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row purchasedRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM custom_policy WHERE policy_id = $1`, policyID)
	if err != nil {
		return core.CustomPolicy{}, mapError(err, core.ErrCustomNotFound, nil)
	}
	return core.CustomPolicy(fromPurchasedRow(row)), nil
}

func (repo *CustomPolicyRepoPG) ListPending(ctx context.Context) ([]core.CustomPolicy, error) {
	return repo.list(ctx, `SELECT * FROM custom_policy WHERE status = $1 ORDER BY policy_id`,
		core.PolicyStatusRequested)
}

func (repo *CustomPolicyRepoPG) ListByCustomer(ctx context.Context, customerID string) ([]core.CustomPolicy, error) {
	return repo.list(ctx, `SELECT * FROM custom_policy WHERE customer_id = $1 ORDER BY policy_id`,
		customerID)
}

func (repo *CustomPolicyRepoPG) list(ctx context.Context, query string, args ...any) ([]core.CustomPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []purchasedRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, query, args...)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	policies := make([]core.CustomPolicy, 0, len(rows))
	for _, r := range rows {
		policies = append(policies, core.CustomPolicy(fromPurchasedRow(r)))
	}
	return policies, nil
}

func (repo *CustomPolicyRepoPG) UpdateStatus(ctx context.Context, policyID string, status core.PolicyStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx,
		`UPDATE custom_policy SET status = $1 WHERE policy_id = $2`, status, policyID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCustomNotFound
	}
	return nil
}
