package core

import (
	"context"
	"fmt"
)

type PolicyType string

const (
	PolicyTypeLife     PolicyType = "LIFE"
	PolicyTypeVehicle  PolicyType = "VEHICLE"
	PolicyTypeHealth   PolicyType = "HEALTH"
	PolicyTypeProperty PolicyType = "PROPERTY"
)

type PolicyPlan string

const (
	PlanStandard PolicyPlan = "STANDARD"
	PlanPremium  PolicyPlan = "PREMIUM"
	PlanCustom   PolicyPlan = "CUSTOM"
)

// IDPrefix returns the policy-ID prefix for the type ("X" for unknown types).
func (t PolicyType) IDPrefix() string {
	switch t {
	case PolicyTypeLife:
		return "L"
	case PolicyTypeVehicle:
		return "V"
	case PolicyTypeHealth:
		return "H"
	case PolicyTypeProperty:
		return "P"
	}
	return "X"
}

func (t PolicyType) Valid() bool {
	switch t {
	case PolicyTypeLife, PolicyTypeVehicle, PolicyTypeHealth, PolicyTypeProperty:
		return true
	}
	return false
}

// PolicyPackage is a catalog entry. STANDARD/PREMIUM packages are shared
// templates; CUSTOM packages are created per request and are 1:1 with it.
type PolicyPackage struct {
	PolicyID       string     `json:"policy_id"` // L001, V001, ...
	PolicyType     PolicyType `json:"policy_type"`
	PolicyPlan     PolicyPlan `json:"policy_plan"`
	CoverageAmount float64    `json:"coverage_amount"`
	Premium        float64    `json:"premium"`
	CustomData     string     `json:"custom_data"` // human-readable benefit/attribute summary
}

// PackageField is the closed set of catalog fields an agent may update.
type PackageField string

const (
	PackageFieldPlan     PackageField = "policy_plan"
	PackageFieldPremium  PackageField = "premium"
	PackageFieldCoverage PackageField = "coverage_amount"
)

func (f PackageField) Valid() bool {
	switch f {
	case PackageFieldPlan, PackageFieldPremium, PackageFieldCoverage:
		return true
	}
	return false
}

// PolicyDetails is the type-specific attribute variant stored 1:1 with a
// package. Exactly one variant exists per insurance type.
type PolicyDetails interface {
	PolicyType() PolicyType
	// Summary renders the free-text custom_data line kept on the package.
	Summary() string
}

type LifeDetails struct {
	BeneficiaryName string  `json:"beneficiary_name"`
	DeathBenefit    float64 `json:"death_benefit"`
	MedicalHistory  string  `json:"medical_history"`
}

func (LifeDetails) PolicyType() PolicyType { return PolicyTypeLife }
func (d LifeDetails) Summary() string {
	return fmt.Sprintf("Beneficiary: %s, Medical History: %s", d.BeneficiaryName, d.MedicalHistory)
}

type VehicleDetails struct {
	VehicleType         string  `json:"vehicle_type"`
	VehicleValue        float64 `json:"vehicle_value"`
	VehicleAge          int     `json:"vehicle_age"`
	VehicleRegistration string  `json:"vehicle_registration"`
	AccidentCoverage    bool    `json:"accident_coverage"`
}

func (VehicleDetails) PolicyType() PolicyType { return PolicyTypeVehicle }
func (d VehicleDetails) Summary() string {
	return fmt.Sprintf("Vehicle Type: %s, Vehicle Value: RM%.0f", d.VehicleType, d.VehicleValue)
}

type HealthDetails struct {
	CoverageType   string  `json:"coverage_type"` // BASIC, COMPREHENSIVE, ...
	MedicalHistory string  `json:"medical_history"`
	Deductible     float64 `json:"deductible"`
	Copayment      float64 `json:"copayment"`
}

func (HealthDetails) PolicyType() PolicyType { return PolicyTypeHealth }
func (d HealthDetails) Summary() string {
	return fmt.Sprintf("Coverage Type: %s, Medical History: %s", d.CoverageType, d.MedicalHistory)
}

type PropertyDetails struct {
	PropertyAddress string  `json:"property_address"`
	PropertyType    string  `json:"property_type"` // residential, commercial, industrial
	PropertyValue   float64 `json:"property_value"`
	PropertyAge     int     `json:"property_age"`
}

func (PropertyDetails) PolicyType() PolicyType { return PolicyTypeProperty }
func (d PropertyDetails) Summary() string {
	return fmt.Sprintf("Property Type: %s, Property Value: RM%.0f", d.PropertyType, d.PropertyValue)
}

type PackageRepo interface {
	Create(ctx context.Context, p PolicyPackage) error
	Get(ctx context.Context, policyID string) (PolicyPackage, error)
	List(ctx context.Context) ([]PolicyPackage, error)
	// ListPrepared returns catalog templates (plan != CUSTOM) of the type.
	ListPrepared(ctx context.Context, t PolicyType) ([]PolicyPackage, error)
	UpdateField(ctx context.Context, policyID string, field PackageField, value string) error
	Delete(ctx context.Context, policyID string) error
	// LastIDByPrefix returns the highest policy ID with the given type prefix,
	// or "" when none exist.
	LastIDByPrefix(ctx context.Context, prefix string) (string, error)

	CreateDetails(ctx context.Context, policyID, customerID string, d PolicyDetails) error
	GetDetails(ctx context.Context, policyID string, t PolicyType) (PolicyDetails, error)
}

func (p PolicyPackage) Validate() error {
	if !p.PolicyType.Valid() {
		return fmt.Errorf("%w: unknown policy type %q", ErrValidation, p.PolicyType)
	}
	if p.CoverageAmount <= 0 {
		return fmt.Errorf("%w: coverage must be > 0", ErrValidation)
	}
	if p.Premium < 0 {
		return fmt.Errorf("%w: premium must be >= 0", ErrValidation)
	}
	return nil
}

var (
	ErrPackageNotFound = fmt.Errorf("%w: policy package not found", ErrNotFound)
	ErrPackageExists   = fmt.Errorf("%w: policy package already exists", ErrConflict)
	ErrDetailsNotFound = fmt.Errorf("%w: policy details not found", ErrNotFound)
)
