package service

import (
	"context"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

const (
	defaultHistoryLimit = 20
	trendWindow         = 5
)

type historyStore interface {
	RecentCalculations(ctx context.Context, limit int) ([]domain.Calculation, error)
}

// HistoryService reads the audit log. Reads never fail: a missing store or a
// failed query yields an empty history.
type HistoryService struct {
	store historyStore
	limit int
}

func (s *HistoryService) Limit() int {
	if s.limit <= 0 {
		return defaultHistoryLimit
	}
	return s.limit
}

func (s *HistoryService) Recent(ctx context.Context) []domain.Calculation {
	if s.store == nil {
		return []domain.Calculation{}
	}
	rows, err := s.store.RecentCalculations(ctx, s.Limit())
	if err != nil {
		log.Error().Err(err).Msg("history read failed")
		return []domain.Calculation{}
	}
	if rows == nil {
		rows = []domain.Calculation{}
	}
	return rows
}

type HistorySummary struct {
	Count                int       `json:"count"`
	TotalAnnualSavings   float64   `json:"totalAnnualSavings"`
	AverageAnnualSavings float64   `json:"averageAnnualSavings"`
	Trend                []float64 `json:"trend,omitempty"`
}

// annualSavingsField is the annual dollar savings of each result kind.
var annualSavingsField = map[string]string{
	domain.KindFlatRate:    "totalAnnualSavings",
	domain.KindLoadProfile: "ahorroUsd",
}

// Summary aggregates the annual savings of the recent calculations, oldest
// first. Rows without a finite savings figure are skipped. Trend is a moving
// average once enough rows exist.
func (s *HistoryService) Summary(ctx context.Context) HistorySummary {
	rows := s.Recent(ctx)

	points := make([]aggregator.Point, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		v, ok := annualSavings(rows[i])
		if !ok {
			continue
		}
		points = append(points, aggregator.Point{Value: v, Timestamp: rows[i].CreatedAt})
	}

	out := HistorySummary{Count: len(points)}
	if len(points) == 0 {
		return out
	}
	out.TotalAnnualSavings = aggregator.Sum(points)
	out.AverageAnnualSavings = aggregator.Average(points)
	if len(points) >= trendWindow {
		out.Trend = aggregator.MovingAverage(points, trendWindow)
	}
	return out
}

func annualSavings(calc domain.Calculation) (float64, bool) {
	field, ok := annualSavingsField[calc.Kind]
	if !ok {
		return 0, false
	}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(calc.Result, &result); err != nil {
		return 0, false
	}
	raw, ok := result[field]
	if !ok {
		return 0, false
	}
	var v domain.Float
	if err := json.Unmarshal(raw, &v); err != nil || !v.IsFinite() {
		return 0, false
	}
	return float64(v), true
}
