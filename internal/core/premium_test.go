package core

import "testing"

func TestCalculateLifePremium(t *testing.T) {
	// age 25, RM30k coverage, clean history: factors 1.0 x 1.003 x 1.0.
	if got, want := CalculateLifePremium(25, 30000, "none"), 54.16; got != want {
		t.Errorf("baseline = %v, want %v", got, want)
	}

	// A declared condition loads the premium by 50%.
	if got, want := CalculateLifePremium(25, 30000, "diabetes"), 81.24; got != want {
		t.Errorf("with medical history = %v, want %v", got, want)
	}

	// "none" and blanks are equivalent to no history, case-insensitively.
	for _, history := range []string{"", "  ", "none", "None", "NONE"} {
		if got := CalculateLifePremium(25, 30000, history); got != 54.16 {
			t.Errorf("history %q = %v, want 54.16", history, got)
		}
	}
}

func TestLifeAgeFactorMonotonic(t *testing.T) {
	prev := CalculateLifePremium(25, 100000, "none")
	for age := 26; age <= 90; age++ {
		cur := CalculateLifePremium(age, 100000, "none")
		if cur < prev {
			t.Fatalf("premium decreased from age %d (%v) to %d (%v)", age-1, prev, age, cur)
		}
		prev = cur
	}
}

func TestLifeYoungAgeFloor(t *testing.T) {
	// Below 25 the discount bottoms out at a 0.8 factor; ages 5 and 15 both
	// hit the floor and price identically.
	atFloor := CalculateLifePremium(15, 100000, "none")
	if got := CalculateLifePremium(5, 100000, "none"); got != atFloor {
		t.Errorf("age 5 = %v, want floor value %v", got, atFloor)
	}
	if atFloor >= CalculateLifePremium(25, 100000, "none") {
		t.Error("floored young-age premium should undercut the age-25 premium")
	}
}

func TestCalculateVehiclePremium(t *testing.T) {
	// RM50k value, 3 years old: 50000 x 0.05 x 1.3 x 1.5.
	if got, want := CalculateVehiclePremium(50000, 3), 4875.00; got != want {
		t.Errorf("premium = %v, want %v", got, want)
	}

	// A new vehicle carries no age loading.
	if got, want := CalculateVehiclePremium(50000, 0), 3750.00; got != want {
		t.Errorf("new vehicle = %v, want %v", got, want)
	}
}

func TestCalculatePropertyPremium(t *testing.T) {
	// RM200k residential, 5 years old: 200000 x 0.003 x 1.075 x 1.2 x 1.0.
	if got, want := CalculatePropertyPremium(200000, 5, "residential"), 774.00; got != want {
		t.Errorf("residential = %v, want %v", got, want)
	}

	// Property type is matched case-insensitively; commercial risk is 1.2x.
	if got, want := CalculatePropertyPremium(200000, 5, "Commercial"), 928.80; got != want {
		t.Errorf("commercial = %v, want %v", got, want)
	}

	// Unknown types price at the neutral 1.0 risk factor.
	if got := CalculatePropertyPremium(200000, 5, "houseboat"); got != 774.00 {
		t.Errorf("unknown type = %v, want 774.00", got)
	}
}

func TestCalculateHealthPremium(t *testing.T) {
	// age 30, RM20k BASIC, clean history: (20000/1000) x 0.03 x 1.75 x 1.2.
	if got, want := CalculateHealthPremium(30, 20000, "None", "BASIC"), 1.26; got != want {
		t.Errorf("baseline = %v, want %v", got, want)
	}

	// Pre-existing conditions load by 80%.
	if got, want := CalculateHealthPremium(30, 20000, "asthma", "BASIC"), 2.27; got != want {
		t.Errorf("with medical history = %v, want %v", got, want)
	}

	// COMPREHENSIVE carries a 1.5x type multiplier.
	if got, want := CalculateHealthPremium(30, 20000, "None", "COMPREHENSIVE"), 1.89; got != want {
		t.Errorf("comprehensive = %v, want %v", got, want)
	}

	// Unknown coverage types fall back to the 1.0 multiplier.
	if got := CalculateHealthPremium(30, 20000, "None", "PLATINUM"); got != 1.26 {
		t.Errorf("unknown coverage type = %v, want 1.26", got)
	}
}

func TestPremiumForDispatch(t *testing.T) {
	life := PremiumFor(LifeDetails{MedicalHistory: "none"}, 25, 30000)
	if life != CalculateLifePremium(25, 30000, "none") {
		t.Errorf("life dispatch = %v", life)
	}

	vehicle := PremiumFor(VehicleDetails{VehicleValue: 50000, VehicleAge: 3}, 0, 0)
	if vehicle != CalculateVehiclePremium(50000, 3) {
		t.Errorf("vehicle dispatch = %v", vehicle)
	}

	health := PremiumFor(HealthDetails{MedicalHistory: "None", CoverageType: "BASIC"}, 30, 20000)
	if health != CalculateHealthPremium(30, 20000, "None", "BASIC") {
		t.Errorf("health dispatch = %v", health)
	}

	property := PremiumFor(PropertyDetails{PropertyValue: 200000, PropertyAge: 5, PropertyType: "residential"}, 0, 0)
	if property != CalculatePropertyPremium(200000, 5, "residential") {
		t.Errorf("property dispatch = %v", property)
	}

	if got := PremiumFor(nil, 30, 10000); got != 0 {
		t.Errorf("nil details = %v, want 0", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{12.344, 12.34},
		{12.346, 12.35},
		{0.005, 0.01},
		{0, 0},
		{-1.239, -1.24},
		// Beyond int64 range after the x100 scale; must still round cleanly.
		{1e18, 1e18},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
