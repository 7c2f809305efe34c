package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maayanhealth/clinic-api/internal/billing"
	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
	apperrors "github.com/maayanhealth/clinic-api/pkg/errors"
	"github.com/maayanhealth/clinic-api/pkg/validator"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actor string) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actor string) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	ChangeRate(ctx context.Context, id uuid.UUID, req *model.ChangeRateRequest, actor string) (*model.Patient, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req *model.ChangeStatusRequest, actor string) (*model.Patient, error)
	AddTransaction(ctx context.Context, id uuid.UUID, req *model.AddTransactionRequest, actor string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, id uuid.UUID) ([]model.Transaction, error)
	RequestDiscount(ctx context.Context, id uuid.UUID, req *model.RequestDiscountRequest, actor string) (*model.Discount, error)
	DecideDiscount(ctx context.Context, patientID, discountID uuid.UUID, req *model.DecideDiscountRequest, actor string) (*model.Discount, error)
	SetSplitBilling(ctx context.Context, id uuid.UUID, req *model.SetSplitBillingRequest, actor string) (*model.Patient, error)
	RemoveSplitBilling(ctx context.Context, id uuid.UUID, actor string) (*model.Patient, error)
	AddRelationship(ctx context.Context, id uuid.UUID, req *model.AddRelationshipRequest, actor string) (*model.Patient, error)
	RemoveRelationship(ctx context.Context, id, relatedID uuid.UUID, actor string) (*model.Patient, error)
}

// SummaryCache invalidates cached financial summaries. A split partner's
// mutation can change another patient's summary, so invalidation is
// always a full flush.
type SummaryCache interface {
	Flush()
}

type Service struct {
	repo    repository.PatientRepository
	txRepo  repository.TransactionRepository
	actions repository.ActionLogRepository
	cache   SummaryCache
}

func NewService(repo repository.PatientRepository, txRepo repository.TransactionRepository, actions repository.ActionLogRepository, cache SummaryCache) *Service {
	return &Service{
		repo:    repo,
		txRepo:  txRepo,
		actions: actions,
		cache:   cache,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actor string) (*model.Patient, error) {
	if !validator.ValidIsraeliID(req.NationalID) {
		return nil, apperrors.BadRequest("invalid national ID", nil)
	}
	exists, err := s.repo.ExistsByNationalID(ctx, req.NationalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check national ID: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("a patient with this national ID already exists", nil)
	}

	now := time.Now()
	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = req.ReferralDate
	}

	patient := &model.Patient{
		Base:              model.Base{ID: uuid.New()},
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		NationalID:        req.NationalID,
		Address:           req.Address,
		BirthDate:         req.BirthDate,
		Gender:            req.Gender,
		Phone:             req.Phone,
		Email:             req.Email,
		Notes:             req.Notes,
		TherapeuticCenter: req.TherapeuticCenter,
		Therapist:         req.Therapist,
		TreatmentType:     req.TreatmentType,
		ReferralDate:      req.ReferralDate,
		StartDate:         startDate,
		Status:            req.Status,
		StatusHistory: []model.StatusHistoryEntry{{
			Date:      req.ReferralDate,
			Status:    req.Status,
			ChangedBy: actor,
		}},
	}
	if req.InitialRate.IsPositive() {
		patient.RateHistory = []model.RateHistoryEntry{{
			StartDate: req.ReferralDate,
			Rate:      req.InitialRate,
			CreatedAt: now,
			CreatedBy: actor,
		}}
	}
	patient.Touch(actor, now)

	if err := patient.EncodeJSONFields(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.logAction(ctx, actor, patient.ID, model.ActionPatientCreate,
		fmt.Sprintf("patient %s %s registered", patient.FirstName, patient.LastName))
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if err := patient.DecodeJSONFields(); err != nil {
		return nil, err
	}
	txs, err := s.txRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	patient.Transactions = txs
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actor string) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.TherapeuticCenter != nil {
		patient.TherapeuticCenter = *req.TherapeuticCenter
	}
	if req.Therapist != nil {
		patient.Therapist = *req.Therapist
	}
	if req.TreatmentType != nil {
		patient.TreatmentType = *req.TreatmentType
	}
	if req.StartDate != nil {
		patient.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		patient.EndDate = req.EndDate
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return apperrors.NotFound("patient", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	s.cache.Flush()
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	for _, patient := range patients {
		if err := patient.DecodeJSONFields(); err != nil {
			return nil, fmt.Errorf("failed to decode patient %s: %w", patient.ID, err)
		}
	}
	return patients, nil
}

// ChangeRate appends a rate history entry taking effect today. Setting
// the same rate as the latest entry is a no-op: history records changes,
// not confirmations.
func (s *Service) ChangeRate(ctx context.Context, id uuid.UUID, req *model.ChangeRateRequest, actor string) (*model.Patient, error) {
	if req.Rate.IsNegative() {
		return nil, apperrors.BadRequest("rate must not be negative", nil)
	}
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if latest := billing.ResolveRate(patient.RateHistory, now); latest != nil && latest.Rate.Equal(req.Rate) {
		return patient, nil
	}

	patient.RateHistory = append(patient.RateHistory, model.RateHistoryEntry{
		StartDate: truncateToDay(now),
		Rate:      req.Rate,
		CreatedAt: now,
		CreatedBy: actor,
	})
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionRateChange, fmt.Sprintf("rate changed to %s", req.Rate))
	s.cache.Flush()
	return patient, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req *model.ChangeStatusRequest, actor string) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patient.Status = req.Status
	patient.StatusHistory = append(patient.StatusHistory, model.StatusHistoryEntry{
		Date:      truncateToDay(now),
		Status:    req.Status,
		ChangedBy: actor,
		Notes:     req.Notes,
	})
	if req.EndDate != nil {
		patient.EndDate = req.EndDate
	}
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionStatusChange, fmt.Sprintf("status changed to %s", req.Status))
	s.cache.Flush()
	return patient, nil
}

func (s *Service) AddTransaction(ctx context.Context, id uuid.UUID, req *model.AddTransactionRequest, actor string) (*model.Transaction, error) {
	if req.Amount.IsNegative() {
		return nil, apperrors.BadRequest("amount must not be negative", nil)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	tx := &model.Transaction{
		ID:          uuid.New(),
		PatientID:   id,
		Type:        req.Type,
		Date:        req.Date,
		Amount:      req.Amount,
		ForMonths:   req.ForMonths,
		Method:      req.Method,
		Description: req.Description,
		Reason:      req.Reason,
		Notes:       req.Notes,
		CreatedAt:   time.Now(),
		CreatedBy:   actor,
	}
	switch req.Type {
	case model.TransactionTypePayment:
		tx.Collector = actor
	case model.TransactionTypeCharge:
		tx.IssuedBy = actor
	case model.TransactionTypeRefund:
		tx.ProcessedBy = actor
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logAction(ctx, actor, id, model.ActionTransactionAdd,
		fmt.Sprintf("%s of %s recorded", tx.Type, tx.Amount))
	s.cache.Flush()
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, id uuid.UUID) ([]model.Transaction, error) {
	txs, err := s.txRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) RequestDiscount(ctx context.Context, id uuid.UUID, req *model.RequestDiscountRequest, actor string) (*model.Discount, error) {
	if req.Value.IsNegative() {
		return nil, apperrors.BadRequest("discount value must not be negative", nil)
	}
	if req.Kind == model.DiscountKindPercentage && req.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.BadRequest("percentage discount cannot exceed 100", nil)
	}
	if req.ValidUntil.Before(req.ValidFrom) {
		return nil, apperrors.BadRequest("discount validity window is inverted", nil)
	}
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	discount := model.Discount{
		ID:          uuid.New(),
		RequestDate: truncateToDay(now),
		Requester:   actor,
		Reason:      req.Reason,
		Kind:        req.Kind,
		Value:       req.Value,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		Status:      model.DiscountStatusPending,
	}
	patient.Discounts = append(patient.Discounts, discount)
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionDiscountRequest,
		fmt.Sprintf("discount requested: %s %s", req.Kind, req.Value))
	return &discount, nil
}

func (s *Service) DecideDiscount(ctx context.Context, patientID, discountID uuid.UUID, req *model.DecideDiscountRequest, actor string) (*model.Discount, error) {
	patient, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var decided *model.Discount
	for i := range patient.Discounts {
		if patient.Discounts[i].ID != discountID {
			continue
		}
		if req.Approve {
			patient.Discounts[i].Status = model.DiscountStatusApproved
		} else {
			patient.Discounts[i].Status = model.DiscountStatusRejected
		}
		patient.Discounts[i].Approver = actor
		patient.Discounts[i].DecisionDate = truncateToDay(time.Now())
		patient.Discounts[i].Notes = req.Notes
		decided = &patient.Discounts[i]
		break
	}
	if decided == nil {
		return nil, apperrors.NotFound("discount", nil)
	}

	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}
	s.logAction(ctx, actor, patientID, model.ActionDiscountDecision,
		fmt.Sprintf("discount %s", decided.Status))
	s.cache.Flush()
	return decided, nil
}

// SetSplitBilling records a directed split. Self-references and mutual
// (two-patient) cycles are rejected at creation time; the engine itself
// would not fail on them, but they double count.
func (s *Service) SetSplitBilling(ctx context.Context, id uuid.UUID, req *model.SetSplitBillingRequest, actor string) (*model.Patient, error) {
	pct := req.SplitPercentage
	if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.BadRequest("split percentage must be between 0 and 100", nil)
	}
	if req.SplitWithPatientID == id {
		return nil, apperrors.BadRequest("a patient cannot split a bill with themselves", nil)
	}

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	partner, err := s.repo.Get(ctx, req.SplitWithPatientID)
	if err != nil {
		return nil, apperrors.NotFound("split partner", err)
	}
	if err := partner.DecodeJSONFields(); err != nil {
		return nil, err
	}
	if partner.BillingInfo != nil && partner.BillingInfo.SplitWithPatientID == id {
		return nil, apperrors.Conflict("split partner already splits their bill with this patient", nil)
	}

	patient.BillingInfo = &model.BillingInfo{
		SplitWithPatientID: req.SplitWithPatientID,
		SplitPercentage:    pct,
	}
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionBillingSplitUpdate,
		fmt.Sprintf("bill split with %s, %s%% to primary payer", partner.NationalID, pct))
	s.cache.Flush()
	return patient, nil
}

func (s *Service) RemoveSplitBilling(ctx context.Context, id uuid.UUID, actor string) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	patient.BillingInfo = nil
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionBillingSplitUpdate, "bill split removed")
	s.cache.Flush()
	return patient, nil
}

// AddRelationship links two patients as family. The edge is symmetric:
// the reciprocal entry is written onto the related patient with the
// same relationship type.
func (s *Service) AddRelationship(ctx context.Context, id uuid.UUID, req *model.AddRelationshipRequest, actor string) (*model.Patient, error) {
	if req.RelatedPatientID == id {
		return nil, apperrors.BadRequest("a patient cannot be related to themselves", nil)
	}

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, rel := range patient.Relationships {
		if rel.RelatedPatientID == req.RelatedPatientID {
			return nil, apperrors.Conflict("these patients are already related", nil)
		}
	}

	related, err := s.repo.Get(ctx, req.RelatedPatientID)
	if err != nil {
		return nil, apperrors.NotFound("related patient", err)
	}
	if err := related.DecodeJSONFields(); err != nil {
		return nil, err
	}

	patient.Relationships = append(patient.Relationships, model.Relationship{
		RelatedPatientID: req.RelatedPatientID,
		RelationshipType: req.RelationshipType,
	})
	related.Relationships = append(related.Relationships, model.Relationship{
		RelatedPatientID: id,
		RelationshipType: req.RelationshipType,
	})

	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}
	if err := s.save(ctx, related, actor); err != nil {
		return nil, err
	}

	s.logAction(ctx, actor, id, model.ActionRelationshipChange,
		fmt.Sprintf("relationship created with %s %s", related.FirstName, related.LastName))
	return patient, nil
}

// RemoveRelationship unlinks both sides of a family connection.
func (s *Service) RemoveRelationship(ctx context.Context, id, relatedID uuid.UUID, actor string) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	patient.Relationships = withoutRelationship(patient.Relationships, relatedID)
	if err := s.save(ctx, patient, actor); err != nil {
		return nil, err
	}

	if related, err := s.repo.Get(ctx, relatedID); err == nil {
		if err := related.DecodeJSONFields(); err != nil {
			return nil, err
		}
		related.Relationships = withoutRelationship(related.Relationships, id)
		if err := s.save(ctx, related, actor); err != nil {
			return nil, err
		}
	}

	s.logAction(ctx, actor, id, model.ActionRelationshipChange,
		fmt.Sprintf("relationship removed with patient %s", relatedID))
	return patient, nil
}

func withoutRelationship(rels []model.Relationship, relatedID uuid.UUID) []model.Relationship {
	out := rels[:0]
	for _, rel := range rels {
		if rel.RelatedPatientID != relatedID {
			out = append(out, rel)
		}
	}
	return out
}

func (s *Service) save(ctx context.Context, patient *model.Patient, actor string) error {
	patient.Touch(actor, time.Now())
	if err := patient.EncodeJSONFields(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (s *Service) logAction(ctx context.Context, actor string, patientID uuid.UUID, actionType model.ActionType, details string) {
	entry := &model.ActionLogEntry{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		UserName:  actor,
		PatientID: &patientID,
		Type:      actionType,
		Details:   details,
	}
	// Action logging never fails the business operation.
	_ = s.actions.Create(ctx, entry)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
