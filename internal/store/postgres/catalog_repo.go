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

type packageRow struct {
	PolicyID       string         `db:"policy_id"`
	PolicyType     string         `db:"policy_type"`
	PolicyPlan     string         `db:"policy_plan"`
	CoverageAmount float64        `db:"coverage_amount"`
	Premium        float64        `db:"premium"`
	CustomData     sql.NullString `db:"custom_data"`
}

func fromPackageRow(r packageRow) core.PolicyPackage {
	return core.PolicyPackage{
		PolicyID:       r.PolicyID,
		PolicyType:     core.PolicyType(r.PolicyType),
		PolicyPlan:     core.PolicyPlan(r.PolicyPlan),
		CoverageAmount: r.CoverageAmount,
		Premium:        r.Premium,
		CustomData:     r.CustomData.String,
	}
}

type PackageRepoPG struct {
	db        *sqlx.DB
	opTimeout time.Duration
}

func NewPackageRepo(db *sqlx.DB, opTimeout time.Duration) *PackageRepoPG {
	return &PackageRepoPG{db: db, opTimeout: opTimeout}
}

func (repo *PackageRepoPG) Create(ctx context.Context, p core.PolicyPackage) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	_, err := ext(ctx, repo.db).ExecContext(ctx, `
		INSERT INTO policy_package (policy_id, policy_type, policy_plan, coverage_amount, premium, custom_data)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.PolicyID, p.PolicyType, p.PolicyPlan, p.CoverageAmount, p.Premium, p.CustomData)
	return mapError(err, nil, core.ErrPackageExists)
}

func (repo *PackageRepoPG) Get(ctx context.Context, policyID string) (core.PolicyPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var row packageRow
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &row,
		`SELECT * FROM policy_package WHERE policy_id = $1`, policyID)
	if err != nil {
		return core.PolicyPackage{}, mapError(err, core.ErrPackageNotFound, nil)
	}
	return fromPackageRow(row), nil
}

func (repo *PackageRepoPG) List(ctx context.Context) ([]core.PolicyPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []packageRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows,
		`SELECT * FROM policy_package ORDER BY policy_id`)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return packagesFromRows(rows), nil
}

func (repo *PackageRepoPG) ListPrepared(ctx context.Context, t core.PolicyType) ([]core.PolicyPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var rows []packageRow
	err := sqlx.SelectContext(ctx, ext(ctx, repo.db), &rows, `
		SELECT * FROM policy_package
		WHERE policy_type = $1 AND policy_plan <> $2
		ORDER BY policy_id`, t, core.PlanCustom)
	if err != nil {
		return nil, mapError(err, nil, nil)
	}
	return packagesFromRows(rows), nil
}

func packagesFromRows(rows []packageRow) []core.PolicyPackage {
	packages := make([]core.PolicyPackage, 0, len(rows))
	for _, r := range rows {
		packages = append(packages, fromPackageRow(r))
	}
	return packages
}

func (repo *PackageRepoPG) UpdateField(ctx context.Context, policyID string, field core.PackageField, value string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var query string
	switch field {
	case core.PackageFieldPlan:
		query = `UPDATE policy_package SET policy_plan = $1 WHERE policy_id = $2`
	case core.PackageFieldPremium:
		query = `UPDATE policy_package SET premium = $1::double precision WHERE policy_id = $2`
	case core.PackageFieldCoverage:
		query = `UPDATE policy_package SET coverage_amount = $1::double precision WHERE policy_id = $2`
	default:
		return fmt.Errorf("%w: field %q is not updatable", core.ErrValidation, field)
	}

	res, err := ext(ctx, repo.db).ExecContext(ctx, query, value, policyID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPackageNotFound
	}
	return nil
}

func (repo *PackageRepoPG) Delete(ctx context.Context, policyID string) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	res, err := ext(ctx, repo.db).ExecContext(ctx,
		`DELETE FROM policy_package WHERE policy_id = $1`, policyID)
	if err != nil {
		return mapError(err, nil, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPackageNotFound
	}
	return nil
}

func (repo *PackageRepoPG) LastIDByPrefix(ctx context.Context, prefix string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var id string
	err := sqlx.GetContext(ctx, ext(ctx, repo.db), &id, `
		SELECT policy_id FROM policy_package
		WHERE policy_id LIKE $1 || '%'
		ORDER BY length(policy_id) DESC, policy_id DESC LIMIT 1`, prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError(err, nil, nil)
	}
	return id, nil
}

func (repo *PackageRepoPG) CreateDetails(ctx context.Context, policyID, customerID string, d core.PolicyDetails) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var err error
	switch v := d.(type) {
	case core.LifeDetails:
		_, err = ext(ctx, repo.db).ExecContext(ctx, `
			INSERT INTO life_policy_details (policy_id, customer_id, beneficiary_name, death_benefit, medical_history)
			VALUES ($1, $2, $3, $4, $5)`,
			policyID, customerID, v.BeneficiaryName, v.DeathBenefit, v.MedicalHistory)
	case core.VehicleDetails:
		_, err = ext(ctx, repo.db).ExecContext(ctx, `
			INSERT INTO vehicle_policy_details (policy_id, customer_id, vehicle_type, vehicle_value, vehicle_age, vehicle_registration, accident_coverage)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			policyID, customerID, v.VehicleType, v.VehicleValue, v.VehicleAge, v.VehicleRegistration, v.AccidentCoverage)
	case core.HealthDetails:
		_, err = ext(ctx, repo.db).ExecContext(ctx, `
			INSERT INTO health_policy_details (policy_id, customer_id, coverage_type, medical_history, deductible, copayment)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			policyID, customerID, v.CoverageType, v.MedicalHistory, v.Deductible, v.Copayment)
	case core.PropertyDetails:
		_, err = ext(ctx, repo.db).ExecContext(ctx, `
			INSERT INTO property_policy_details (policy_id, customer_id, property_address, property_type, property_value, property_age)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			policyID, customerID, v.PropertyAddress, v.PropertyType, v.PropertyValue, v.PropertyAge)
	default:
		return fmt.Errorf("%w: unknown policy details variant %T", core.ErrValidation, d)
	}
	return mapError(err, nil, core.ErrPackageExists)
}

func (repo *PackageRepoPG) GetDetails(ctx context.Context, policyID string, t core.PolicyType) (core.PolicyDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	executor := ext(ctx, repo.db)
	switch t {
	case core.PolicyTypeLife:
		var row struct {
			PolicyID        string         `db:"policy_id"`
			CustomerID      sql.NullString `db:"customer_id"`
			BeneficiaryName string         `db:"beneficiary_name"`
			DeathBenefit    float64        `db:"death_benefit"`
			MedicalHistory  string         `db:"medical_history"`
		}
		err := sqlx.GetContext(ctx, executor, &row,
			`SELECT * FROM life_policy_details WHERE policy_id = $1`, policyID)
		if err != nil {
			return nil, mapError(err, core.ErrDetailsNotFound, nil)
		}
		return core.LifeDetails{
			BeneficiaryName: row.BeneficiaryName,
			DeathBenefit:    row.DeathBenefit,
			MedicalHistory:  row.MedicalHistory,
		}, nil
	case core.PolicyTypeVehicle:
		var row struct {
			PolicyID            string         `db:"policy_id"`
			CustomerID          sql.NullString `db:"customer_id"`
			VehicleType         string         `db:"vehicle_type"`
			VehicleValue        float64        `db:"vehicle_value"`
			VehicleAge          int            `db:"vehicle_age"`
			VehicleRegistration string         `db:"vehicle_registration"`
			AccidentCoverage    bool           `db:"accident_coverage"`
		}
		err := sqlx.GetContext(ctx, executor, &row,
			`SELECT * FROM vehicle_policy_details WHERE policy_id = $1`, policyID)
		if err != nil {
			return nil, mapError(err, core.ErrDetailsNotFound, nil)
		}
		return core.VehicleDetails{
			VehicleType:         row.VehicleType,
			VehicleValue:        row.VehicleValue,
			VehicleAge:          row.VehicleAge,
			VehicleRegistration: row.VehicleRegistration,
			AccidentCoverage:    row.AccidentCoverage,
		}, nil
	case core.PolicyTypeHealth:
		var row struct {
			PolicyID       string         `db:"policy_id"`
			CustomerID     sql.NullString `db:"customer_id"`
			CoverageType   string         `db:"coverage_type"`
			MedicalHistory string         `db:"medical_history"`
			Deductible     float64        `db:"deductible"`
			Copayment      float64        `db:"copayment"`
		}
		err := sqlx.GetContext(ctx, executor, &row,
			`SELECT * FROM health_policy_details WHERE policy_id = $1`, policyID)
		if err != nil {
			return nil, mapError(err, core.ErrDetailsNotFound, nil)
		}
		return core.HealthDetails{
			CoverageType:   row.CoverageType,
			MedicalHistory: row.MedicalHistory,
			Deductible:     row.Deductible,
			Copayment:      row.Copayment,
		}, nil
	case core.PolicyTypeProperty:
		var row struct {
			PolicyID        string         `db:"policy_id"`
			CustomerID      sql.NullString `db:"customer_id"`
			PropertyAddress string         `db:"property_address"`
			PropertyType    string         `db:"property_type"`
			PropertyValue   float64        `db:"property_value"`
			PropertyAge     int            `db:"property_age"`
		}
		err := sqlx.GetContext(ctx, executor, &row,
			`SELECT * FROM property_policy_details WHERE policy_id = $1`, policyID)
		if err != nil {
			return nil, mapError(err, core.ErrDetailsNotFound, nil)
		}
		return core.PropertyDetails{
			PropertyAddress: row.PropertyAddress,
			PropertyType:    row.PropertyType,
			PropertyValue:   row.PropertyValue,
			PropertyAge:     row.PropertyAge,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy type %q", core.ErrValidation, t)
}
