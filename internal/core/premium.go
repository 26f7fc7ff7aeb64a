package core

import (
	"math"
	"strings"
)

// Premium calculators. Pure functions of risk attributes; all use the
// multiplicative model base_amount x factor_1 x factor_2 x ... and round the
// final result half-up to 2 decimal places. They are total: any numeric or
// string input yields a number, never an error. Input bounds are enforced by
// the workflows, not here.

const (
	lifeBaseRate     = 0.15  // monthly, per RM1000 of coverage at age 25
	vehicleBaseRate  = 0.05  // of vehicle value
	propertyBaseRate = 0.003 // of property value
	healthBaseRate   = 0.03  // per RM1000 of coverage
)

// healthCoverageFactors maps coverage types to premium multipliers.
// Unrecognized types fall back to 1.0.
var healthCoverageFactors = map[string]float64{
	"BASIC":         1.0,
	"COMPREHENSIVE": 1.5,
	"FAMILY":        2.0,
	"INDIVIDUAL":    0.8,
	"HOSPITAL":      1.2,
	"OUTPATIENT":    1.1,
	"SPECIALIST":    1.3,
}

// propertyRiskFactors maps property types (case-insensitive) to risk
// multipliers. Unknown types fall back to 1.0.
var propertyRiskFactors = map[string]float64{
	"residential": 1.0,
	"commercial":  1.2,
	"industrial":  1.5,
}

// CalculateLifePremium returns the annual life premium.
// The monthly rate grows 4% per year of age above 25 and shrinks 2% per year
// below 25 (floored at 0.8); any declared medical condition multiplies by 1.5.
func CalculateLifePremium(age int, coverage float64, medicalHistory string) float64 {
	ageFactor := 1 + float64(age-25)*0.04
	if age < 25 {
		ageFactor = max(0.8, 1-float64(25-age)*0.02)
	}

	coverageFactor := 1 + (coverage/1_000_000)*0.1

	medicalFactor := 1.0
	if hasMedicalHistory(medicalHistory) {
		medicalFactor = 1.5
	}

	monthly := (coverage / 1000) * lifeBaseRate * ageFactor * coverageFactor * medicalFactor
	return round2(monthly * 12)
}

// CalculateVehiclePremium returns the annual vehicle premium: 5% of value,
// +10% per year of vehicle age, scaled up with value.
func CalculateVehiclePremium(vehicleValue float64, vehicleAge int) float64 {
	ageFactor := 1 + float64(vehicleAge)*0.1
	valueFactor := 1 + vehicleValue/100_000
	return round2(vehicleValue * vehicleBaseRate * ageFactor * valueFactor)
}

// CalculatePropertyPremium returns the annual property premium: 0.3% of value,
// +1.5% per year of property age, scaled with value and the property-type risk.
func CalculatePropertyPremium(propertyValue float64, propertyAge int, propertyType string) float64 {
	ageFactor := 1 + float64(propertyAge)*0.015
	valueFactor := 1 + propertyValue/1_000_000
	risk, ok := propertyRiskFactors[strings.ToLower(propertyType)]
	if !ok {
		risk = 1.0
	}
	return round2(propertyValue * propertyBaseRate * ageFactor * valueFactor * risk)
}

// CalculateHealthPremium returns the annual health premium: 3% per RM1000 of
// coverage, +2.5% per year of age, scaled with coverage, with an 80% loading
// for pre-existing conditions and a coverage-type multiplier.
func CalculateHealthPremium(age int, coverage float64, medicalHistory, coverageType string) float64 {
	ageFactor := 1 + float64(age)*0.025
	coverageFactor := 1 + coverage/100_000

	risk := 1.0
	if hasMedicalHistory(medicalHistory) {
		risk = 1.8
	}

	typeFactor, ok := healthCoverageFactors[strings.ToUpper(coverageType)]
	if !ok {
		typeFactor = 1.0
	}

	return round2((coverage / 1000) * healthBaseRate * ageFactor * coverageFactor * risk * typeFactor)
}

// PremiumFor dispatches on the details variant. Age is the applicant's age,
// coverage the requested coverage amount; both are ignored by variants whose
// formula does not use them.
func PremiumFor(d PolicyDetails, age int, coverage float64) float64 {
	switch v := d.(type) {
	case LifeDetails:
		return CalculateLifePremium(age, coverage, v.MedicalHistory)
	case VehicleDetails:
		return CalculateVehiclePremium(v.VehicleValue, v.VehicleAge)
	case HealthDetails:
		return CalculateHealthPremium(age, coverage, v.MedicalHistory, v.CoverageType)
	case PropertyDetails:
		return CalculatePropertyPremium(v.PropertyValue, v.PropertyAge, v.PropertyType)
	}
	return 0
}

func hasMedicalHistory(history string) bool {
	h := strings.TrimSpace(history)
	return h != "" && !strings.EqualFold(h, "none")
}

// round2 rounds half-up to 2 decimal places, for any float64.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100.0
}
