package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurance4you/agency/internal/core"
)

type userRow struct {
	NRIC          string    `db:"nric"`
	Role          string    `db:"role"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Password      string    `db:"password"`
	ContactNumber string    `db:"contact_number"`
	Age           int       `db:"age"`
	CreatedAt     time.Time `db:"created_at"`
}

func fromUserRow(r userRow) core.User {
	return core.User{
		NRIC:          r.NRIC,
		Role:          core.Role(r.Role),
		Name:          r.Name,
		Email:         r.Email,
		PasswordHash:  r.Password,
		ContactNumber: r.ContactNumber,
		Age:           r.Age,
		CreatedAt:     r.CreatedAt,
	}
}

type UserRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewUserRepo(db *sqlx.DB, opTimeout time.Duration) *UserRepoPG {
	return &UserRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *UserRepoPG) Create(ctx context.Context, u core.User) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO users (nric, role, name, email, password, contact_number, age, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.NRIC, u.Role, u.Name, u.Email, u.PasswordHash, u.ContactNumber, u.Age, u.CreatedAt)
	return mapError(err, nil, core.ErrUserExists)
}

func (repo *UserRepoPG) Get(ctx context.Context, nric string) (core.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row userRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM users WHERE nric = $1`, nric)
	if err != nil {
		return core.User{}, mapError(err, core.ErrUserNotFound, nil)
	}
	return fromUserRow(row), nil
}

func (repo *UserRepoPG) GetByEmail(ctx context.Context, email string) (core.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row userRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		return core.User{}, mapError(err, core.ErrUserNotFound, nil)
	}
	return fromUserRow(row), nil
}

// UpdateProfileField writes one whitelisted column. The column name comes
// from a closed switch, never from the caller's string.
func (repo *UserRepoPG) UpdateProfileField(ctx context.Context, nric string, field core.ProfileField, value string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var query string
	switch field {
	case core.FieldName:
		query = `UPDATE users SET name = $1 WHERE nric = $2`
	case core.FieldEmail:
		query = `UPDATE users SET email = $1 WHERE nric = $2`
	case core.FieldPassword:
		query = `UPDATE users SET password = $1 WHERE nric = $2`
	case core.FieldAge:
		query = `UPDATE users SET age = $1::integer WHERE nric = $2`
	case core.FieldContactNumber:
		query = `UPDATE users SET contact_number = $1 WHERE nric = $2`
	default:
		return fmt.Errorf("%w: field %q is not updatable", core.ErrValidation, field)
	}

	res, err := ext(ctx, repo.db).ExecContext(ctx, query, value, nric)
	if err != nil {
		return mapError(err, nil, core.ErrEmailTaken)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

type customerRow struct {
	CustomerID string  `db:"customer_id"`
	NRIC       string  `db:"nric"`
	Occupation string  `db:"occupation"`
	Income     float64 `db:"income"`
}

type CustomerRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewCustomerRepo(db *sqlx.DB, opTimeout time.Duration) *CustomerRepoPG {
	return &CustomerRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *CustomerRepoPG) Create(ctx context.Context, c core.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO customers (customer_id, nric, occupation, income)
		VALUES ($1, $2, $3, $4)`,
		c.CustomerID, c.NRIC, c.Occupation, c.Income)
	return mapError(err, nil, core.ErrUserExists)
}

func (repo *CustomerRepoPG) Get(ctx context.Context, customerID string) (core.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row customerRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM customers WHERE customer_id = $1`, customerID)
	if err != nil {
		return core.Customer{}, mapError(err, core.ErrCustomerNotFound, nil)
	}
	return core.Customer(row), nil
}

func (repo *CustomerRepoPG) GetByNRIC(ctx context.Context, nric string) (core.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row customerRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM customers WHERE nric = $1`, nric)
	if err != nil {
		return core.Customer{}, mapError(err, core.ErrCustomerNotFound, nil)
	}
	return core.Customer(row), nil
}

// LastID returns the highest customer ID, or "" when the table is empty.
// Length-first ordering keeps timestamp-fallback IDs sorted after padded ones.
func (repo *CustomerRepoPG) LastID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var id string
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &id, `
		SELECT customer_id FROM customers
		ORDER BY length(customer_id) DESC, customer_id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, nil, nil)
	}
	return id, nil
}

type agentRow struct {
	AgentID        string  `db:"agent_id"`
	NRIC           string  `db:"nric"`
	Qualification  string  `db:"qualification"`
	CommissionRate float64 `db:"commission_rate"`
	Status         string  `db:"status"`
}

func fromAgentRow(r agentRow) core.Agent {
	return core.Agent{
		AgentID:        r.AgentID,
		NRIC:           r.NRIC,
		Qualification:  r.Qualification,
		CommissionRate: r.CommissionRate,
		Status:         core.AgentStatus(r.Status),
	}
}

type AgentRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewAgentRepo(db *sqlx.DB, opTimeout time.Duration) *AgentRepoPG {
	return &AgentRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *AgentRepoPG) Create(ctx context.Context, a core.Agent) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO agents (agent_id, nric, qualification, commission_rate, status)
		VALUES ($1, $2, $3, $4, $5)`,
		a.AgentID, a.NRIC, a.Qualification, a.CommissionRate, a.Status)
	return mapError(err, nil, core.ErrUserExists)
}

func (repo *AgentRepoPG) Get(ctx context.Context, agentID string) (core.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row agentRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM agents WHERE agent_id = $1`, agentID)
	if err != nil {
		return core.Agent{}, mapError(err, core.ErrAgentNotFound, nil)
	}
	return fromAgentRow(row), nil
}

func (repo *AgentRepoPG) GetByNRIC(ctx context.Context, nric string) (core.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row agentRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM agents WHERE nric = $1`, nric)
	if err != nil {
		return core.Agent{}, mapError(err, core.ErrAgentNotFound, nil)
	}
	return fromAgentRow(row), nil
}

func (repo *AgentRepoPG) List(ctx context.Context) ([]core.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []agentRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows,
		`SELECT * FROM agents ORDER BY agent_id`)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	agents := make([]core.Agent, 0, len(rows))
	for _, r := range rows {
		agents = append(agents, fromAgentRow(r))
	}
	return agents, nil
}

func (repo *AgentRepoPG) RandomActive(ctx context.Context) (core.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row agentRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM agents WHERE status = 'active' ORDER BY random() LIMIT 1`)
	if err != nil {
		return core.Agent{}, mapError(err, core.ErrNoActiveAgents, nil)
	}
	return fromAgentRow(row), nil
}

func (repo *AgentRepoPG) SetStatus(ctx context.Context, agentID string, status core.AgentStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx,
		`UPDATE agents SET status = $1 WHERE agent_id = $2`, status, agentID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrAgentNotFound
	}
	return nil
}

func (repo *AgentRepoPG) Delete(ctx context.Context, agentID string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx,
		`DELETE FROM agents WHERE agent_id = $1`, agentID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrAgentNotFound
	}
	return nil
}

func (repo *AgentRepoPG) LastID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var id string
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &id, `
		SELECT agent_id FROM agents
		ORDER BY length(agent_id) DESC, agent_id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, nil, nil)
	}
	return id, nil
}

func (repo *AgentRepoPG) SumSoldPremiums(ctx context.Context, agentID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var total float64
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &total, `
		SELECT COALESCE(SUM(premium), 0) FROM purchased_policy WHERE agent_id = $1`, agentID)
	if err != nil {
		return 0, mapError(err, nil, nil)
	}
	return total, nil
}
