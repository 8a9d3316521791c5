package savings

import "github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"

// FlatRatePreset is a named set of defaults for an application archetype.
type FlatRatePreset struct {
	Name string `json:"name"`
	domain.MotorConfiguration
}

// DefaultFlatRatePreset seeds the calculator form.
const DefaultFlatRatePreset = "bombas-ventiladores"

var flatRatePresets = map[string]FlatRatePreset{
	"bombas-ventiladores": {
		Name: "Bombas/Ventiladores",
		MotorConfiguration: domain.MotorConfiguration{
			Motors:               1,
			HPPerMotor:           10,
			LoadFactor:           90,
			OperationHours:       2500,
			ElectricityRate:      2.5,
			DriveSavings:         30,
			AvoidedStopHours:     40,
			StopCostPerHour:      25000,
			CurrentMaintenance:   10000,
			MaintenanceReduction: 30,
			PackageCostPerMotor:  2400,
			ProjectHorizon:       5,
		},
	},
	"transportadores": {
		Name: "Transportadores",
		MotorConfiguration: domain.MotorConfiguration{
			Motors:               2,
			HPPerMotor:           5,
			LoadFactor:           85,
			OperationHours:       3000,
			ElectricityRate:      2.5,
			DriveSavings:         25,
			AvoidedStopHours:     30,
			StopCostPerHour:      20000,
			CurrentMaintenance:   8000,
			MaintenanceReduction: 25,
			PackageCostPerMotor:  2000,
			ProjectHorizon:       5,
		},
	},
	"carga-fija": {
		Name: "Carga Fija",
		MotorConfiguration: domain.MotorConfiguration{
			Motors:               1,
			HPPerMotor:           15,
			LoadFactor:           95,
			OperationHours:       4000,
			ElectricityRate:      2.5,
			DriveSavings:         20,
			AvoidedStopHours:     20,
			StopCostPerHour:      30000,
			CurrentMaintenance:   12000,
			MaintenanceReduction: 35,
			PackageCostPerMotor:  3000,
			ProjectHorizon:       5,
		},
	},
}

// canonical duty-cycle ladder, 100% down to 10% of nominal flow
var flowLevels = [10]float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}

// time fractions per flow level, aligned with flowLevels
var loadProfilePresets = map[string][10]float64{
	"bombas-caudal-variable": {0, 0, 0.80, 0, 0.20, 0, 0, 0, 0, 0},
	"ventiladores-variable":  {0.10, 0.15, 0.25, 0.30, 0.15, 0.05, 0, 0, 0, 0},
	"carga-constante":        {1.00, 0, 0, 0, 0, 0, 0, 0, 0, 0},
}

// FlatRatePresets returns a copy of the application presets keyed by id.
func FlatRatePresets() map[string]FlatRatePreset {
	out := make(map[string]FlatRatePreset, len(flatRatePresets))
	for k, v := range flatRatePresets {
		out[k] = v
	}
	return out
}

// FlatRatePresetByKey returns one application preset.
func FlatRatePresetByKey(key string) (FlatRatePreset, bool) {
	p, ok := flatRatePresets[key]
	return p, ok
}

// FlowLevels returns the canonical flow ladder.
func FlowLevels() []float64 {
	out := make([]float64, len(flowLevels))
	copy(out, flowLevels[:])
	return out
}

// LoadProfilePresets returns fresh copies of the duty-cycle templates.
func LoadProfilePresets() map[string]domain.LoadProfile {
	out := make(map[string]domain.LoadProfile, len(loadProfilePresets))
	for k := range loadProfilePresets {
		out[k], _ = LoadProfilePreset(k)
	}
	return out
}

// LoadProfilePreset returns a fresh copy of one duty-cycle template.
func LoadProfilePreset(key string) (domain.LoadProfile, bool) {
	fractions, ok := loadProfilePresets[key]
	if !ok {
		return nil, false
	}
	profile := make(domain.LoadProfile, len(flowLevels))
	for i, flow := range flowLevels {
		profile[i] = domain.LoadProfilePoint{Flow: flow, TimePercent: fractions[i]}
	}
	return profile, true
}
