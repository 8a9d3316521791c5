// Package savings holds the calculation engines: the flat-rate model and the
// affinity-law load-profile model. Both are pure functions of their input.
package savings

import "github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"

// KWPerHP converts mechanical horsepower to kilowatts.
const KWPerHP = 0.746

// FlatRate computes the savings of retrofitting every motor with a drive
// package, using fixed percentages for energy and maintenance reductions.
//
// No input is rejected: a zero investment gives an infinite ROI and zero
// savings give an infinite (or NaN) payback, exactly as IEEE-754 division does.
func FlatRate(cfg domain.MotorConfiguration) domain.FlatRateResult {
	kwPerMotor := cfg.HPPerMotor * KWPerHP

	currentConsumption := cfg.Motors * kwPerMotor * (cfg.LoadFactor / 100) * cfg.OperationHours
	currentEnergyCost := currentConsumption * cfg.ElectricityRate

	energySavings := currentEnergyCost * (cfg.DriveSavings / 100)
	stopSavings := cfg.AvoidedStopHours * cfg.StopCostPerHour
	maintenanceSavings := cfg.CurrentMaintenance * (cfg.MaintenanceReduction / 100)

	totalAnnualSavings := energySavings + stopSavings + maintenanceSavings
	totalInvestment := cfg.PackageCostPerMotor * cfg.Motors

	return domain.FlatRateResult{
		KWPerMotor:         domain.Float(kwPerMotor),
		CurrentConsumption: domain.Float(currentConsumption),
		CurrentEnergyCost:  domain.Float(currentEnergyCost),
		EnergySavings:      domain.Float(energySavings),
		StopSavings:        domain.Float(stopSavings),
		MaintenanceSavings: domain.Float(maintenanceSavings),
		TotalAnnualSavings: domain.Float(totalAnnualSavings),
		TotalInvestment:    domain.Float(totalInvestment),
		PaybackYears:       domain.Float(totalInvestment / totalAnnualSavings),
		AnnualROI:          domain.Float((totalAnnualSavings / totalInvestment) * 100),
		AccumulatedSavings: domain.Float(totalAnnualSavings * cfg.ProjectHorizon),
	}
}
