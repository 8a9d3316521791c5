// Package report renders a flat-rate savings calculation as a markdown
// document and its HTML rendering.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/savings"
)

const ContentType = "text/html; charset=utf-8"

type Report struct {
	Key         string
	Markdown    string
	HTML        []byte
	GeneratedAt time.Time
}

// Build renders cfg and its result. The key is unique per call and is used as
// the archive object name.
func Build(cfg domain.MotorConfiguration, res domain.FlatRateResult, now time.Time) Report {
	md := Markdown(cfg, res, now)
	return Report{
		Key:         NewKey(now),
		Markdown:    md,
		HTML:        RenderHTML(md),
		GeneratedAt: now,
	}
}

// KeyPrefix is the archive folder every report key lives under.
const KeyPrefix = "reports/"

// NewKey returns reports/YYYY/MM/DD/<uuid>.html.
func NewKey(now time.Time) string {
	return fmt.Sprintf("%s%s/%s.html", KeyPrefix, now.UTC().Format("2006/01/02"), uuid.NewString())
}

// RenderHTML wraps the rendered markdown in a standalone page.
func RenderHTML(md string) []byte {
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)
	// dollar amounts must not open inline math spans
	p := parser.NewWithExtensions(parser.CommonExtensions &^ parser.MathJax)
	body := markdown.ToHTML([]byte(md), p, renderer)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n<title>Reporte de Ahorro Energético</title>\n</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// PaybackMonths rounds a payback period in years up to whole months. ok is
// false when the period is not finite or too large to count.
func PaybackMonths(years domain.Float) (months int, ok bool) {
	if !years.IsFinite() {
		return 0, false
	}
	m := math.Ceil(float64(years) * 12)
	if math.Abs(m) >= math.MaxInt64 {
		return 0, false
	}
	return int(m), true
}

func Markdown(cfg domain.MotorConfiguration, res domain.FlatRateResult, now time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line("# Reporte de Ahorro Energético")
	line("")
	line("Drive + Reactor + Guardamotor  ")
	line("Fecha: %s", now.Format("02/01/2006"))
	line("")

	line("## 1. Parámetros de Entrada")
	line("")
	line("- Motores: %s unidades", plain(cfg.Motors))
	line("- HP por motor: %s HP (%s kW)", plain(cfg.HPPerMotor), fixed(cfg.HPPerMotor*savings.KWPerHP, 2))
	line("- Factor de carga: %s%%", plain(cfg.LoadFactor))
	line("- Horas de operación: %s horas/año", grouped(cfg.OperationHours))
	line("- Tarifa eléctrica: $%s/kWh", plain(cfg.ElectricityRate))
	line("- Horizonte del proyecto: %s años", plain(cfg.ProjectHorizon))
	line("- Ahorro energético por Drive: %s%%", plain(cfg.DriveSavings))
	line("- Horas de paro evitadas: %s horas/año", plain(cfg.AvoidedStopHours))
	line("- Costo por hora de paro: $%s/h", grouped(cfg.StopCostPerHour))
	line("- Gasto mantenimiento actual: $%s/año", grouped(cfg.CurrentMaintenance))
	line("- Reducción de mantenimiento: %s%%", plain(cfg.MaintenanceReduction))
	line("- Costo del paquete por motor: $%s", grouped(cfg.PackageCostPerMotor))
	line("")

	line("## 2. Análisis de Consumo Actual")
	line("")
	line("- Consumo energético anual: %s kWh/año", grouped(float64(res.CurrentConsumption)))
	line("- Costo de energía actual: $%s/año", grouped(float64(res.CurrentEnergyCost)))
	line("")

	line("## 3. Desglose de Ahorros Anuales")
	line("")
	line("| Concepto | Ahorro anual |")
	line("|---|---:|")
	line("| Ahorro energético (%s%% eficiencia) | $%s |", plain(cfg.DriveSavings), grouped(float64(res.EnergySavings)))
	line("| Ahorro por paros evitados (%s horas) | $%s |", plain(cfg.AvoidedStopHours), grouped(float64(res.StopSavings)))
	line("| Ahorro en mantenimiento (%s%% reducción) | $%s |", plain(cfg.MaintenanceReduction), grouped(float64(res.MaintenanceSavings)))
	line("| **AHORRO TOTAL ANUAL** | **$%s** |", grouped(float64(res.TotalAnnualSavings)))
	line("")

	line("## 4. Análisis Financiero")
	line("")
	line("- Inversión total requerida: $%s", grouped(float64(res.TotalInvestment)))
	line("- Periodo de retorno (Payback): %s años", fixed(float64(res.PaybackYears), 2))
	line("- ROI Anual: %s%%", fixed(float64(res.AnnualROI), 1))
	line("- Ahorro acumulado en %s años: $%s", plain(cfg.ProjectHorizon), grouped(float64(res.AccumulatedSavings)))
	line("")

	line("## Conclusión")
	line("")
	if months, ok := PaybackMonths(res.PaybackYears); ok {
		line("La inversión se recupera en aproximadamente %d meses, generando un ROI del %s%%.", months, fixed(float64(res.AnnualROI), 0))
	} else {
		line("Con los parámetros actuales la inversión no se recupera.")
	}
	line("En %s años, el ahorro total será de $%s.", plain(cfg.ProjectHorizon), grouped(float64(res.AccumulatedSavings)))
	line("")
	line("---")
	line("")
	line("Generado: %s", now.Format("02/01/2006 15:04:05"))
	return b.String()
}

const notAvailable = "N/D"

func plain(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// grouped rounds v and separates thousands with dots.
func grouped(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
		return notAvailable
	}
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
