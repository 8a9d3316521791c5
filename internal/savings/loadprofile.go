package savings

import (
	"math"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/converter"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

// ProfileTolerance is how far the time fractions of a load profile may sum
// from 1.0 before the profile is reported as incomplete.
const ProfileTolerance = 0.001

// LoadProfile computes the energy a fan or pump saves with a drive, using the
// affinity law: at a fraction f of nominal speed the motor draws f³ of its
// nominal power. The drive-enabled energy is the sum over the duty cycle of
// f³ × hours × motors × time fraction × kW.
//
// An incomplete profile is not an error: ProfileValid is false and every
// number is still computed.
func LoadProfile(cfg domain.LoadProfileConfiguration) domain.LoadProfileResult {
	var totalTime float64
	for _, p := range cfg.LoadProfile {
		totalTime += p.TimePercent
	}

	kw := (cfg.HP * KWPerHP) / cfg.Efficiency

	fullKWh := cfg.Hours * cfg.Motors * kw
	fullCost := cfg.RatePerKWh * fullKWh

	var driveKWh float64
	breakdown := make([]domain.LoadPointConsumption, 0, len(cfg.LoadProfile))
	for _, p := range cfg.LoadProfile {
		pointKWh := math.Pow(p.Flow, 3) * cfg.Hours * cfg.Motors * p.TimePercent * kw
		driveKWh += pointKWh
		breakdown = append(breakdown, domain.LoadPointConsumption{
			Flow:        domain.Float(p.Flow),
			TimePercent: domain.Float(p.TimePercent),
			KWh:         domain.Float(pointKWh),
		})
	}
	driveCost := cfg.RatePerKWh * driveKWh

	savingsKWh := fullKWh - driveKWh
	savingsCost := fullCost - driveCost

	payback := paybackFor(cfg.Investment, savingsCost)
	var roiYears float64
	if savingsCost > 0 {
		roiYears = cfg.Investment / savingsCost
	}

	conv := &converter.EnergyConverter{}
	return domain.LoadProfileResult{
		KW:               domain.Float(kw),
		FullVoltageKWh:   domain.Float(fullKWh),
		FullVoltageMWh:   domain.Float(conv.KWhToMWh(fullKWh)),
		FullVoltageCost:  domain.Float(fullCost),
		DriveKWh:         domain.Float(driveKWh),
		DriveMWh:         domain.Float(conv.KWhToMWh(driveKWh)),
		DriveCost:        domain.Float(driveCost),
		SavingsKWh:       domain.Float(savingsKWh),
		SavingsMWh:       domain.Float(conv.KWhToMWh(savingsKWh)),
		SavingsCost:      domain.Float(savingsCost),
		ROIYears:         domain.Float(roiYears),
		ROIMonths:        domain.Float(roiYears * 12),
		Payback:          payback,
		TotalTimePercent: domain.Float(totalTime),
		ProfileValid:     ProfileComplete(totalTime),
		Breakdown:        breakdown,
	}
}

// ProfileComplete reports whether time fractions summing to total describe a
// whole duty cycle.
func ProfileComplete(total float64) bool {
	return math.Abs(total-1.0) < ProfileTolerance
}

// paybackFor classifies an investment against its annual savings. roiAnios
// keeps reporting 0 for unrecoverable investments; this carries the reason.
func paybackFor(investment, annualSavings float64) domain.Payback {
	switch {
	case math.IsNaN(annualSavings):
		return domain.Payback{Status: domain.PaybackNotViable, Reason: "savings are undefined"}
	case annualSavings <= 0:
		return domain.Payback{Status: domain.PaybackNotViable, Reason: "the drive does not reduce the energy cost"}
	}
	return domain.Payback{Status: domain.PaybackViable, Years: domain.Float(investment / annualSavings)}
}
