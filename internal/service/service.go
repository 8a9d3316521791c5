package service

import (
	"context"
	"fmt"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/audit"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/catalog"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/chat"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/messaging"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/repository"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/savings"
)

// Deps are the collaborators the services are built from. Every field is
// optional; a missing one disables the feature that needs it.
type Deps struct {
	Repos        *repository.Repos
	Recorder     *audit.Recorder
	Chat         *chat.Client
	Catalog      *catalog.Catalog
	Archive      ReportArchive
	Strict       bool
	HistoryLimit int
}

type Services struct {
	Calculator *CalculatorService
	History    *HistoryService
	Reports    *ReportService
	Ingest     *IngestService
	Chat       *chat.Client
	Catalog    *catalog.Catalog
}

func New(d Deps) *Services {
	calc := &CalculatorService{recorder: d.Recorder, strict: d.Strict}
	var history historyStore
	if d.Repos != nil {
		history = d.Repos
	}
	var sink audit.Sink
	if d.Repos != nil {
		sink = d.Repos
	}
	if d.Chat == nil {
		d.Chat = chat.New(chat.Config{})
	}
	if d.Catalog == nil {
		d.Catalog = catalog.New(catalog.Config{})
	}
	return &Services{
		Calculator: calc,
		History:    &HistoryService{store: history, limit: d.HistoryLimit},
		Reports:    &ReportService{calc: calc, archive: d.Archive},
		Ingest:     &IngestService{sink: sink},
		Chat:       d.Chat,
		Catalog:    d.Catalog,
	}
}

// CalculatorService runs the engines on request bodies and records every
// successful calculation.
type CalculatorService struct {
	recorder *audit.Recorder
	strict   bool
}

func (s *CalculatorService) FlatRate(body []byte) (domain.FlatRateResult, error) {
	_, res, err := s.flatRate(body)
	return res, err
}

func (s *CalculatorService) flatRate(body []byte) (domain.MotorConfiguration, domain.FlatRateResult, error) {
	cfg, err := domain.DecodeMotorConfiguration(body, s.strict)
	if err != nil {
		return cfg, domain.FlatRateResult{}, err
	}
	res := savings.FlatRate(cfg)
	s.recorder.Record(domain.KindFlatRate, cfg, res)
	return cfg, res, nil
}

func (s *CalculatorService) LoadProfile(body []byte) (domain.LoadProfileResult, error) {
	cfg, err := domain.DecodeLoadProfileConfiguration(body, s.strict)
	if err != nil {
		return domain.LoadProfileResult{}, err
	}
	res := savings.LoadProfile(cfg)
	s.recorder.Record(domain.KindLoadProfile, cfg, res)
	return res, nil
}

// IngestService persists calculation events received over MQTT.
type IngestService struct {
	sink audit.Sink
}

func (s *IngestService) FromMQTT(ctx context.Context, topic string, payload []byte) error {
	if s.sink == nil {
		return fmt.Errorf("no store configured for %s", topic)
	}
	event, err := messaging.DecodeEvent(payload)
	if err != nil {
		return err
	}
	return s.sink.Append(ctx, event.Calculation())
}
