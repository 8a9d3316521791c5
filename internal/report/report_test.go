package report

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/savings"
)

var reportTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func pumpsAndFans(t *testing.T) domain.MotorConfiguration {
	t.Helper()
	p, ok := savings.FlatRatePresetByKey(savings.DefaultFlatRatePreset)
	require.True(t, ok)
	return p.MotorConfiguration
}

func TestMarkdownReferenceScenario(t *testing.T) {
	cfg := pumpsAndFans(t)
	md := Markdown(cfg, savings.FlatRate(cfg), reportTime)

	assert.Contains(t, md, "# Reporte de Ahorro Energético")
	assert.Contains(t, md, "Fecha: 01/03/2025")
	assert.Contains(t, md, "- HP por motor: 10 HP (7.46 kW)")
	assert.Contains(t, md, "- Horas de operación: 2.500 horas/año")
	assert.Contains(t, md, "- Consumo energético anual: 16.785 kWh/año")
	assert.Contains(t, md, "- Costo de energía actual: $41.963/año")
	assert.Contains(t, md, "| Ahorro por paros evitados (40 horas) | $1.000.000 |")
	assert.Contains(t, md, "| **AHORRO TOTAL ANUAL** | **$1.015.589** |")
	assert.Contains(t, md, "- Periodo de retorno (Payback): 0.00 años")
	assert.Contains(t, md, "- ROI Anual: 42316.2%")
	assert.Contains(t, md, "se recupera en aproximadamente 1 meses, generando un ROI del 42316%.")
	assert.Contains(t, md, "En 5 años, el ahorro total será de $5.077.944.")
}

func TestMarkdownNonFiniteResult(t *testing.T) {
	cfg := pumpsAndFans(t)
	cfg.PackageCostPerMotor = 0
	res := savings.FlatRate(cfg)
	require.True(t, math.IsInf(float64(res.AnnualROI), 1))

	md := Markdown(cfg, res, reportTime)
	assert.Contains(t, md, "- ROI Anual: N/D%")
	assert.Contains(t, md, "aproximadamente 0 meses")

	var zero domain.MotorConfiguration
	md = Markdown(zero, savings.FlatRate(zero), reportTime)
	assert.Contains(t, md, "Con los parámetros actuales la inversión no se recupera.")
}

func TestPaybackMonths(t *testing.T) {
	for _, tc := range []struct {
		years  float64
		months int
		ok     bool
	}{
		{0.00236, 1, true},
		{1, 12, true},
		{1.01, 13, true},
		{0, 0, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{1e18, 0, false},
		{-1e18, 0, false},
	} {
		months, ok := PaybackMonths(domain.Float(tc.years))
		assert.Equal(t, tc.ok, ok, tc.years)
		assert.Equal(t, tc.months, months, tc.years)
	}
}

func TestBuild(t *testing.T) {
	cfg := pumpsAndFans(t)
	r := Build(cfg, savings.FlatRate(cfg), reportTime)

	assert.Regexp(t, regexp.MustCompile(`^reports/2025/03/01/[0-9a-f-]{36}\.html$`), r.Key)
	assert.NotEqual(t, r.Key, Build(cfg, savings.FlatRate(cfg), reportTime).Key)
	assert.Equal(t, reportTime, r.GeneratedAt)

	page := string(r.HTML)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<h1")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<strong>AHORRO TOTAL ANUAL</strong>")
}

func TestGrouped(t *testing.T) {
	assert.Equal(t, "0", grouped(0.4))
	assert.Equal(t, "999", grouped(999))
	assert.Equal(t, "1.000", grouped(999.5))
	assert.Equal(t, "-12.345", grouped(-12345))
	assert.Equal(t, "N/D", grouped(math.NaN()))
	assert.Equal(t, "1.000.000.000.000.000", grouped(1e15))
	assert.Equal(t, "N/D", grouped(1e19))
	assert.Equal(t, "N/D", grouped(-1e19))
}
