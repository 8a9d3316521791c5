package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/report"
)

// ReportArchive stores rendered reports, returns download URLs and lists
// stored keys.
type ReportArchive interface {
	UploadReport(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListReports(ctx context.Context, prefix string) ([]string, error)
}

type ReportService struct {
	calc    *CalculatorService
	archive ReportArchive
	now     func() time.Time
}

// ReportOutcome is either an archived report (Key and URL) or, when no
// archive is configured or the upload failed, the rendered HTML.
type ReportOutcome struct {
	Key  string
	URL  string
	HTML []byte
}

func (o ReportOutcome) Archived() bool { return o.URL != "" }

// Generate runs the flat-rate engine on body and renders the report. The
// calculation is recorded like any other.
func (s *ReportService) Generate(ctx context.Context, body []byte) (ReportOutcome, error) {
	cfg, res, err := s.calc.flatRate(body)
	if err != nil {
		return ReportOutcome{}, err
	}

	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	r := report.Build(cfg, res, now)

	if s.archive == nil {
		return ReportOutcome{Key: r.Key, HTML: r.HTML}, nil
	}
	url, err := s.archive.UploadReport(ctx, r.Key, r.HTML, report.ContentType)
	if err != nil {
		log.Error().Err(err).Str("key", r.Key).Msg("report upload failed; returning inline")
		return ReportOutcome{Key: r.Key, HTML: r.HTML}, nil
	}
	return ReportOutcome{Key: r.Key, URL: url}, nil
}

// List returns the archived report keys under prefix, which is relative to
// the reports folder (e.g. "2025/03"). Without an archive, or when listing
// fails, the list is empty.
func (s *ReportService) List(ctx context.Context, prefix string) []string {
	keys := []string{}
	if s.archive == nil {
		return keys
	}
	full := report.KeyPrefix + strings.TrimPrefix(strings.TrimSpace(prefix), report.KeyPrefix)
	found, err := s.archive.ListReports(ctx, full)
	if err != nil {
		log.Error().Err(err).Str("prefix", full).Msg("report listing failed")
		return keys
	}
	return append(keys, found...)
}
