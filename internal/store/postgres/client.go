package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/insurance4you/agency/internal/platform/config"
)

type Client struct {
	DB *sqlx.DB
}

func NewClient(cfg *config.Config) (*Client, error) {
	db, err := sqlx.Connect("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Client{DB: db}, nil
}

// Ping verifies connectivity (used by /readyz).
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close(_ context.Context) error {
	return c.DB.Close()
}

// EnsureSchema creates the tables if they do not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		nric           TEXT PRIMARY KEY,
		role           TEXT NOT NULL,
		name           TEXT NOT NULL,
		email          TEXT UNIQUE NOT NULL,
		password       TEXT NOT NULL,
		contact_number TEXT,
		age            INTEGER,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		nric        TEXT NOT NULL REFERENCES users (nric),
		occupation  TEXT,
		income      DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS agents (
		agent_id        TEXT PRIMARY KEY,
		nric            TEXT NOT NULL REFERENCES users (nric),
		qualification   TEXT,
		commission_rate DOUBLE PRECISION,
		status          TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS policy_package (
		policy_id       TEXT PRIMARY KEY,
		policy_type     TEXT NOT NULL,
		policy_plan     TEXT NOT NULL,
		coverage_amount DOUBLE PRECISION NOT NULL,
		premium         DOUBLE PRECISION NOT NULL,
		custom_data     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS purchased_policy (
		customer_id     TEXT NOT NULL,
		policy_id       TEXT NOT NULL,
		agent_id        TEXT,
		policy_type     TEXT NOT NULL,
		policy_plan     TEXT NOT NULL,
		coverage_amount DOUBLE PRECISION NOT NULL,
		premium         DOUBLE PRECISION NOT NULL,
		status          TEXT NOT NULL,
		start_date      DATE NOT NULL,
		end_date        DATE NOT NULL,
		PRIMARY KEY (customer_id, policy_id)
	)`,
	`CREATE TABLE IF NOT EXISTS custom_policy (
		customer_id     TEXT NOT NULL,
		policy_id       TEXT NOT NULL,
		agent_id        TEXT,
		policy_type     TEXT NOT NULL,
		policy_plan     TEXT NOT NULL DEFAULT 'CUSTOM',
		coverage_amount DOUBLE PRECISION NOT NULL,
		premium         DOUBLE PRECISION NOT NULL,
		status          TEXT NOT NULL,
		start_date      DATE NOT NULL,
		end_date        DATE NOT NULL,
		PRIMARY KEY (customer_id, policy_id)
	)`,
	`CREATE TABLE IF NOT EXISTS life_policy_details (
		policy_id        TEXT PRIMARY KEY,
		customer_id      TEXT,
		beneficiary_name TEXT,
		death_benefit    DOUBLE PRECISION,
		medical_history  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_policy_details (
		policy_id            TEXT PRIMARY KEY,
		customer_id          TEXT,
		vehicle_type         TEXT,
		vehicle_value        DOUBLE PRECISION,
		vehicle_age          INTEGER,
		vehicle_registration TEXT,
		accident_coverage    BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS property_policy_details (
		policy_id        TEXT PRIMARY KEY,
		customer_id      TEXT,
		property_address TEXT,
		property_type    TEXT,
		property_value   DOUBLE PRECISION,
		property_age     INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS health_policy_details (
		policy_id       TEXT PRIMARY KEY,
		customer_id     TEXT,
		coverage_type   TEXT,
		medical_history TEXT,
		deductible      DOUBLE PRECISION,
		copayment       DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		claim_id    TEXT PRIMARY KEY,
		policy_id   TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		details     TEXT,
		amount      DOUBLE PRECISION NOT NULL,
		status      TEXT NOT NULL,
		date_filed  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		payment_id     TEXT PRIMARY KEY,
		reference      TEXT,
		customer_id    TEXT NOT NULL,
		policy_id      TEXT NOT NULL,
		amount         DOUBLE PRECISION NOT NULL,
		payment_date   TIMESTAMPTZ NOT NULL DEFAULT now(),
		payment_method TEXT NOT NULL,
		status         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS purchased_policy_agent_idx ON purchased_policy (agent_id)`,
	`CREATE INDEX IF NOT EXISTS claims_status_idx ON claims (status)`,
	`CREATE INDEX IF NOT EXISTS custom_policy_status_idx ON custom_policy (status)`,
	`CREATE INDEX IF NOT EXISTS payments_policy_idx ON payments (customer_id, policy_id)`,
}
