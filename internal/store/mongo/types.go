package mongo

import (
	"time"

	"github.com/insurance4you/agency/internal/core"
)

const (
	ColUsers           = "users"
	ColCustomers       = "customers"
	ColAgents          = "agents"
	ColPackages        = "policy_package"
	ColPurchased       = "purchased_policy"
	ColCustom          = "custom_policy"
	ColLifeDetails     = "life_policy_details"
	ColVehicleDetails  = "vehicle_policy_details"
	ColPropertyDetails = "property_policy_details"
	ColHealthDetails   = "health_policy_details"
	ColClaims          = "claims"
	ColPayments        = "payments"
)

// User
type UserDoc struct {
	NRIC          string    `bson:"_id"`
	Role          string    `bson:"role"`
	Name          string    `bson:"name"`
	Email         string    `bson:"email"` // unique index
	Password      string    `bson:"password"`
	ContactNumber string    `bson:"contact_number"`
	Age           int       `bson:"age"`
	CreatedAt     time.Time `bson:"created_at"`
}

func toUserDoc(u core.User) UserDoc {
	return UserDoc{
		NRIC:          u.NRIC,
		Role:          string(u.Role),
		Name:          u.Name,
		Email:         u.Email,
		Password:      u.PasswordHash,
		ContactNumber: u.ContactNumber,
		Age:           u.Age,
		CreatedAt:     u.CreatedAt,
	}
}

func fromUserDoc(d UserDoc) core.User {
	return core.User{
		NRIC:          d.NRIC,
		Role:          core.Role(d.Role),
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.Password,
		ContactNumber: d.ContactNumber,
		Age:           d.Age,
		CreatedAt:     d.CreatedAt,
	}
}

// Customer
type CustomerDoc struct {
	CustomerID string  `bson:"_id"`
	NRIC       string  `bson:"nric"` // unique index
	Occupation string  `bson:"occupation"`
	Income     float64 `bson:"income"`
}

func toCustomerDoc(c core.Customer) CustomerDoc {
	return CustomerDoc{CustomerID: c.CustomerID, NRIC: c.NRIC, Occupation: c.Occupation, Income: c.Income}
}

func fromCustomerDoc(d CustomerDoc) core.Customer {
	return core.Customer{CustomerID: d.CustomerID, NRIC: d.NRIC, Occupation: d.Occupation, Income: d.Income}
}

// Agent
type AgentDoc struct {
	AgentID        string  `bson:"_id"`
	NRIC           string  `bson:"nric"` // unique index
	Qualification  string  `bson:"qualification"`
	CommissionRate float64 `bson:"commission_rate"`
	Status         string  `bson:"status"`
}

func toAgentDoc(a core.Agent) AgentDoc {
	return AgentDoc{
		AgentID:        a.AgentID,
		NRIC:           a.NRIC,
		Qualification:  a.Qualification,
		CommissionRate: a.CommissionRate,
		Status:         string(a.Status),
	}
}

func fromAgentDoc(d AgentDoc) core.Agent {
	return core.Agent{
		AgentID:        d.AgentID,
		NRIC:           d.NRIC,
		Qualification:  d.Qualification,
		CommissionRate: d.CommissionRate,
		Status:         core.AgentStatus(d.Status),
	}
}

// PolicyPackage
type PackageDoc struct {
	PolicyID       string  `bson:"_id"`
	PolicyType     string  `bson:"policy_type"`
	PolicyPlan     string  `bson:"policy_plan"`
	CoverageAmount float64 `bson:"coverage_amount"`
	Premium        float64 `bson:"premium"`
	CustomData     string  `bson:"custom_data,omitempty"`
}

func toPackageDoc(p core.PolicyPackage) PackageDoc {
	return PackageDoc{
		PolicyID:       p.PolicyID,
		PolicyType:     string(p.PolicyType),
		PolicyPlan:     string(p.PolicyPlan),
		CoverageAmount: p.CoverageAmount,
		Premium:        p.Premium,
		CustomData:     p.CustomData,
	}
}

func fromPackageDoc(d PackageDoc) core.PolicyPackage {
	return core.PolicyPackage{
		PolicyID:       d.PolicyID,
		PolicyType:     core.PolicyType(d.PolicyType),
		PolicyPlan:     core.PolicyPlan(d.PolicyPlan),
		CoverageAmount: d.CoverageAmount,
		Premium:        d.Premium,
		CustomData:     d.CustomData,
	}
}

// PurchasedPolicy / CustomPolicy share a shape. The purchased collection keys
// on (customer_id, policy_id); the custom collection keys on policy_id alone.
type PolicyInstanceDoc struct {
	ID             string    `bson:"_id"`
	CustomerID     string    `bson:"customer_id"`
	PolicyID       string    `bson:"policy_id"`
	AgentID        string    `bson:"agent_id,omitempty"`
	PolicyType     string    `bson:"policy_type"`
	PolicyPlan     string    `bson:"policy_plan"`
	CoverageAmount float64   `bson:"coverage_amount"`
	Premium        float64   `bson:"premium"`
	Status         string    `bson:"status"`
	StartDate      time.Time `bson:"start_date"`
	EndDate        time.Time `bson:"end_date"`
}

// purchasedKey builds the composite _id for the purchased collection.
func purchasedKey(customerID, policyID string) string {
	return customerID + "/" + policyID
}

func toPurchasedDoc(p core.PurchasedPolicy) PolicyInstanceDoc {
	return PolicyInstanceDoc{
		ID:             purchasedKey(p.CustomerID, p.PolicyID),
		CustomerID:     p.CustomerID,
		PolicyID:       p.PolicyID,
		AgentID:        p.AgentID,
		PolicyType:     string(p.PolicyType),
		PolicyPlan:     string(p.PolicyPlan),
		CoverageAmount: p.CoverageAmount,
		Premium:        p.Premium,
		Status:         string(p.Status),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
	}
}

func fromPurchasedDoc(d PolicyInstanceDoc) core.PurchasedPolicy {
	return core.PurchasedPolicy{
		CustomerID:     d.CustomerID,
		PolicyID:       d.PolicyID,
		AgentID:        d.AgentID,
		PolicyType:     core.PolicyType(d.PolicyType),
		PolicyPlan:     core.PolicyPlan(d.PolicyPlan),
		CoverageAmount: d.CoverageAmount,
		Premium:        d.Premium,
		Status:         core.PolicyStatus(d.Status),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
	}
}

func toCustomDoc(p core.CustomPolicy) PolicyInstanceDoc {
	doc := toPurchasedDoc(core.PurchasedPolicy(p))
	doc.ID = p.PolicyID
	return doc
}

func fromCustomDoc(d PolicyInstanceDoc) core.CustomPolicy {
	return core.CustomPolicy(fromPurchasedDoc(d))
}

// Claim
type ClaimDoc struct {
	ClaimID    string    `bson:"_id"`
	PolicyID   string    `bson:"policy_id"`
	CustomerID string    `bson:"customer_id"`
	Details    string    `bson:"details"`
	Amount     float64   `bson:"amount"`
	Status     string    `bson:"status"`
	DateFiled  time.Time `bson:"date_filed"`
}

func toClaimDoc(c core.Claim) ClaimDoc {
	return ClaimDoc{
		ClaimID:    c.ClaimID,
		PolicyID:   c.PolicyID,
		CustomerID: c.CustomerID,
		Details:    c.Details,
		Amount:     c.Amount,
		Status:     string(c.Status),
		DateFiled:  c.DateFiled,
	}
}

func fromClaimDoc(d ClaimDoc) core.Claim {
	return core.Claim{
		ClaimID:    d.ClaimID,
		PolicyID:   d.PolicyID,
		CustomerID: d.CustomerID,
		Details:    d.Details,
		Amount:     d.Amount,
		Status:     core.ClaimStatus(d.Status),
		DateFiled:  d.DateFiled,
	}
}

// Payment
type PaymentDoc struct {
	PaymentID   string    `bson:"_id"`
	Reference   string    `bson:"reference,omitempty"`
	CustomerID  string    `bson:"customer_id"`
	PolicyID    string    `bson:"policy_id"`
	Amount      float64   `bson:"amount"`
	PaymentDate time.Time `bson:"payment_date"`
	Method      string    `bson:"payment_method"`
	Status      string    `bson:"status"`
}

func toPaymentDoc(p core.Payment) PaymentDoc {
	return PaymentDoc{
		PaymentID:   p.PaymentID,
		Reference:   p.Reference,
		CustomerID:  p.CustomerID,
		PolicyID:    p.PolicyID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Method:      string(p.Method),
		Status:      string(p.Status),
	}
}

func fromPaymentDoc(d PaymentDoc) core.Payment {
	return core.Payment{
		PaymentID:   d.PaymentID,
		Reference:   d.Reference,
		CustomerID:  d.CustomerID,
		PolicyID:    d.PolicyID,
		Amount:      d.Amount,
		PaymentDate: d.PaymentDate,
		Method:      core.PaymentMethod(d.Method),
		Status:      core.PaymentStatus(d.Status),
	}
}

// Details docs. _id is the policy ID; exactly one variant exists per policy.
type LifeDetailsDoc struct {
	PolicyID        string  `bson:"_id"`
	CustomerID      string  `bson:"customer_id,omitempty"`
	BeneficiaryName string  `bson:"beneficiary_name"`
	DeathBenefit    float64 `bson:"death_benefit"`
	MedicalHistory  string  `bson:"medical_history"`
}

type VehicleDetailsDoc struct {
	PolicyID            string  `bson:"_id"`
	CustomerID          string  `bson:"customer_id,omitempty"`
	VehicleType         string  `bson:"vehicle_type"`
	VehicleValue        float64 `bson:"vehicle_value"`
	VehicleAge          int     `bson:"vehicle_age"`
	VehicleRegistration string  `bson:"vehicle_registration"`
	AccidentCoverage    bool    `bson:"accident_coverage"`
}

type PropertyDetailsDoc struct {
	PolicyID        string  `bson:"_id"`
	CustomerID      string  `bson:"customer_id,omitempty"`
	PropertyAddress string  `bson:"property_address"`
	PropertyType    string  `bson:"property_type"`
	PropertyValue   float64 `bson:"property_value"`
	PropertyAge     int     `bson:"property_age"`
}

type HealthDetailsDoc struct {
	PolicyID       string  `bson:"_id"`
	CustomerID     string  `bson:"customer_id,omitempty"`
	CoverageType   string  `bson:"coverage_type"`
	MedicalHistory string  `bson:"medical_history"`
	Deductible     float64 `bson:"deductible"`
	Copayment      float64 `bson:"copayment"`
}
