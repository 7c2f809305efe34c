package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/maayanhealth/clinic-api/internal/billing"
	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
	apperrors "github.com/maayanhealth/clinic-api/pkg/errors"
)

type FinanceService interface {
	Summary(ctx context.Context, patientID uuid.UUID) (*model.FinancialSummary, error)
	Report(ctx context.Context) ([]*model.FinancialSummary, error)
	ActionLog(ctx context.Context, filters *model.ActionLogFilters) ([]*model.ActionLogEntry, error)
	Flush()
}

type Service struct {
	patients repository.PatientRepository
	txs      repository.TransactionRepository
	actions  repository.ActionLogRepository
	cache    *cache.Cache
	now      func() time.Time
}

// NewService builds the read side of the billing engine. Summaries are
// cached per patient; any financial mutation flushes the whole cache
// because split arrangements couple patients to each other.
func NewService(patients repository.PatientRepository, txs repository.TransactionRepository, actions repository.ActionLogRepository, ttl time.Duration) *Service {
	return &Service{
		patients: patients,
		txs:      txs,
		actions:  actions,
		cache:    cache.New(ttl, 2*ttl),
		now:      time.Now,
	}
}

func (s *Service) Summary(ctx context.Context, patientID uuid.UUID) (*model.FinancialSummary, error) {
	if cached, found := s.cache.Get(patientID.String()); found {
		summary := cached.(model.FinancialSummary)
		return &summary, nil
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	var patient *model.Patient
	for _, p := range roster {
		if p.ID == patientID {
			patient = p
			break
		}
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient", nil)
	}

	summary := billing.Summarize(patient, roster, s.now())
	s.cache.SetDefault(patientID.String(), summary)
	return &summary, nil
}

// Report computes a summary for every patient against the same roster
// snapshot, so cross-patient split shares stay consistent within one
// response.
func (s *Service) Report(ctx context.Context) ([]*model.FinancialSummary, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	summaries := make([]*model.FinancialSummary, 0, len(roster))
	for _, p := range roster {
		summary := billing.Summarize(p, roster, asOf)
		s.cache.SetDefault(p.ID.String(), summary)
		summaries = append(summaries, &summary)
	}
	return summaries, nil
}

func (s *Service) ActionLog(ctx context.Context, filters *model.ActionLogFilters) ([]*model.ActionLogEntry, error) {
	entries, err := s.actions.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list action log: %w", err)
	}
	return entries, nil
}

func (s *Service) Flush() {
	s.cache.Flush()
}

func (s *Service) loadRoster(ctx context.Context) ([]*model.Patient, error) {
	roster, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient roster: %w", err)
	}
	for _, p := range roster {
		if err := p.DecodeJSONFields(); err != nil {
			return nil, fmt.Errorf("failed to decode patient %s: %w", p.ID, err)
		}
		txs, err := s.txs.ListByPatient(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transactions for %s: %w", p.ID, err)
		}
		p.Transactions = txs
	}
	return roster, nil
}
