package savings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

func pumpsAndFans() domain.MotorConfiguration {
	p, _ := FlatRatePresetByKey(DefaultFlatRatePreset)
	return p.MotorConfiguration
}

func TestFlatRateReferenceScenario(t *testing.T) {
	r := FlatRate(pumpsAndFans())

	assert.InDelta(t, 7.46, float64(r.KWPerMotor), 1e-9)
	assert.InDelta(t, 16785.0, float64(r.CurrentConsumption), 1e-6)
	assert.InDelta(t, 41962.5, float64(r.CurrentEnergyCost), 1e-6)
	assert.InDelta(t, 12588.75, float64(r.EnergySavings), 1e-6)
	assert.Equal(t, domain.Float(1_000_000), r.StopSavings)
	assert.Equal(t, domain.Float(3000), r.MaintenanceSavings)
	assert.InDelta(t, 1_015_588.75, float64(r.TotalAnnualSavings), 1e-6)
	assert.Equal(t, domain.Float(2400), r.TotalInvestment)
	assert.InDelta(t, 0.00236, float64(r.PaybackYears), 1e-5)
	assert.InDelta(t, 42316.2, float64(r.AnnualROI), 0.1)
	assert.InDelta(t, 5_077_943.75, float64(r.AccumulatedSavings), 1e-5)
}

func TestFlatRateIdentities(t *testing.T) {
	for key, p := range FlatRatePresets() {
		r := FlatRate(p.MotorConfiguration)
		require.Greater(t, float64(r.TotalAnnualSavings), 0.0, key)
		require.Greater(t, float64(r.TotalInvestment), 0.0, key)

		assert.Equal(t, r.TotalInvestment/r.TotalAnnualSavings, r.PaybackYears, key)
		assert.Equal(t, r.TotalAnnualSavings*domain.Float(p.ProjectHorizon), r.AccumulatedSavings, key)
	}
}

func TestFlatRateZeroPackageCost(t *testing.T) {
	cfg := pumpsAndFans()
	cfg.PackageCostPerMotor = 0
	r := FlatRate(cfg)

	assert.Zero(t, float64(r.TotalInvestment))
	assert.True(t, math.IsInf(float64(r.AnnualROI), 1))
	assert.Zero(t, float64(r.PaybackYears))
}

func TestFlatRateAllZero(t *testing.T) {
	r := FlatRate(domain.MotorConfiguration{})
	assert.True(t, math.IsNaN(float64(r.PaybackYears)))
	assert.True(t, math.IsNaN(float64(r.AnnualROI)))
	assert.Zero(t, float64(r.AccumulatedSavings))
}

func TestFlatRateIsDeterministic(t *testing.T) {
	cfg := pumpsAndFans()
	assert.Equal(t, FlatRate(cfg), FlatRate(cfg))
}

func variablePump() domain.LoadProfileConfiguration {
	profile, _ := LoadProfilePreset("bombas-caudal-variable")
	return domain.LoadProfileConfiguration{
		Motors:      1,
		HP:          100,
		Efficiency:  0.95,
		Voltage:     480,
		Hours:       5000,
		RatePerKWh:  0.12,
		Investment:  15000,
		LoadProfile: profile,
	}
}

func TestLoadProfileReferenceScenario(t *testing.T) {
	r := LoadProfile(variablePump())

	kw := 100 * 0.746 / 0.95
	assert.InDelta(t, kw, float64(r.KW), 1e-9)
	assert.InDelta(t, 78.526, float64(r.KW), 1e-3)
	assert.InDelta(t, 5000*kw, float64(r.FullVoltageKWh), 1e-6)
	assert.InEpsilon(t, 392_632.0, float64(r.FullVoltageKWh), 1e-5)
	assert.InDelta(t, 0.4528*5000*kw, float64(r.DriveKWh), 1e-6)
	assert.InEpsilon(t, 177_679.0, float64(r.DriveKWh), 1e-3)
	assert.InEpsilon(t, 214_953.0, float64(r.SavingsKWh), 1e-3)
	assert.InDelta(t, float64(r.SavingsKWh)/1000, float64(r.SavingsMWh), 1e-9)
	assert.InDelta(t, 0.12*float64(r.SavingsKWh), float64(r.SavingsCost), 1e-6)

	assert.True(t, r.ProfileValid)
	assert.InDelta(t, 1.0, float64(r.TotalTimePercent), 1e-12)

	require.Len(t, r.Breakdown, 10)
	assert.Equal(t, domain.Float(0.8), r.Breakdown[2].Flow)
	assert.Equal(t, domain.Float(0.8), r.Breakdown[2].TimePercent)
	assert.InDelta(t, 0.4096*5000*kw, float64(r.Breakdown[2].KWh), 1e-6)
	assert.Zero(t, float64(r.Breakdown[0].KWh))

	assert.True(t, r.Payback.Viable())
	assert.InDelta(t, 15000/float64(r.SavingsCost), float64(r.ROIYears), 1e-12)
	assert.Equal(t, r.ROIYears, r.Payback.Years)
	assert.Equal(t, r.ROIYears*12, r.ROIMonths)
}

func TestLoadProfileConstantFullSpeed(t *testing.T) {
	cfg := variablePump()
	cfg.LoadProfile = domain.LoadProfile{{Flow: 1.0, TimePercent: 1.0}}
	r := LoadProfile(cfg)

	assert.Equal(t, r.FullVoltageKWh, r.DriveKWh)
	assert.Zero(t, float64(r.SavingsKWh))
	assert.True(t, r.ProfileValid)

	// no savings: ROI floors to zero and the payback says why
	assert.Zero(t, float64(r.ROIYears))
	assert.Zero(t, float64(r.ROIMonths))
	assert.False(t, r.Payback.Viable())
	assert.Equal(t, domain.PaybackNotViable, r.Payback.Status)
	assert.NotEmpty(t, r.Payback.Reason)
}

func TestLoadProfileIncompleteProfile(t *testing.T) {
	for _, total := range []float64{0.85, 0.9} {
		cfg := variablePump()
		cfg.LoadProfile = domain.LoadProfile{
			{Flow: 0.8, TimePercent: total - 0.2},
			{Flow: 0.6, TimePercent: 0.2},
		}
		r := LoadProfile(cfg)

		assert.False(t, r.ProfileValid)
		assert.InDelta(t, total, float64(r.TotalTimePercent), 1e-12)
		assert.True(t, r.DriveKWh.IsFinite())
		assert.Greater(t, float64(r.SavingsKWh), 0.0)
	}
}

func TestLoadProfileDriveNeverExceedsFullVoltage(t *testing.T) {
	for key, profile := range LoadProfilePresets() {
		cfg := variablePump()
		cfg.LoadProfile = profile
		r := LoadProfile(cfg)

		assert.True(t, r.ProfileValid, key)
		assert.LessOrEqual(t, float64(r.DriveKWh), float64(r.FullVoltageKWh), key)
	}
}

func TestLoadProfileEmptyProfile(t *testing.T) {
	cfg := variablePump()
	cfg.LoadProfile = nil
	r := LoadProfile(cfg)

	assert.False(t, r.ProfileValid)
	assert.Zero(t, float64(r.DriveKWh))
	assert.Empty(t, r.Breakdown)
	assert.NotNil(t, r.Breakdown)
}

func TestLoadProfileIsDeterministic(t *testing.T) {
	cfg := variablePump()
	assert.Equal(t, LoadProfile(cfg), LoadProfile(cfg))
}

func TestProfileComplete(t *testing.T) {
	assert.True(t, ProfileComplete(1.0))
	assert.True(t, ProfileComplete(1.0009))
	assert.True(t, ProfileComplete(0.9991))
	assert.False(t, ProfileComplete(1.0011))
	assert.False(t, ProfileComplete(0.998))
	assert.False(t, ProfileComplete(0.85))
}

func TestPresetsAreCopies(t *testing.T) {
	levels := FlowLevels()
	require.Equal(t, []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}, levels)
	levels[0] = 42
	assert.Equal(t, 1.0, FlowLevels()[0])

	profiles := LoadProfilePresets()
	require.Len(t, profiles, 3)
	profiles["carga-constante"][0].TimePercent = 0
	again, ok := LoadProfilePreset("carga-constante")
	require.True(t, ok)
	assert.Equal(t, 1.0, again[0].TimePercent)

	presets := FlatRatePresets()
	require.Len(t, presets, 3)
	p := presets["transportadores"]
	p.Motors = 99
	presets["transportadores"] = p
	orig, ok := FlatRatePresetByKey("transportadores")
	require.True(t, ok)
	assert.Equal(t, 2.0, orig.Motors)
	assert.Equal(t, "Transportadores", orig.Name)

	_, ok = LoadProfilePreset("missing")
	assert.False(t, ok)
}
