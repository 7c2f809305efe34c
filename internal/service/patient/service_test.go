package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maayanhealth/clinic-api/internal/model"
	apperrors "github.com/maayanhealth/clinic-api/pkg/errors"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	stored := *p
	f.patients[p.ID] = &stored
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	copied := *p
	copied.RateHistory = nil
	copied.StatusHistory = nil
	copied.Discounts = nil
	copied.BillingInfo = nil
	copied.Relationships = nil
	return &copied, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	if _, ok := f.patients[p.ID]; !ok {
		return apperrors.NotFound("patient", nil)
	}
	stored := *p
	f.patients[p.ID] = &stored
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakePatientRepo) ExistsByNationalID(_ context.Context, nationalID string) (bool, error) {
	for _, p := range f.patients {
		if p.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTransactionRepo struct {
	txs []model.Transaction
}

func (f *fakeTransactionRepo) Create(_ context.Context, tx *model.Transaction) error {
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeTransactionRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, tx := range f.txs {
		if tx.PatientID == patientID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeActionLog struct {
	entries []model.ActionLogEntry
}

func (f *fakeActionLog) Create(_ context.Context, entry *model.ActionLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActionLog) List(_ context.Context, _ *model.ActionLogFilters) ([]*model.ActionLogEntry, error) {
	var out []*model.ActionLogEntry
	for i := range f.entries {
		out = append(out, &f.entries[i])
	}
	return out, nil
}

type fakeCache struct {
	flushes int
}

func (f *fakeCache) Flush() { f.flushes++ }

type fixture struct {
	svc     *Service
	repo    *fakePatientRepo
	txs     *fakeTransactionRepo
	actions *fakeActionLog
	cache   *fakeCache
}

func newFixture() *fixture {
	repo := newFakePatientRepo()
	txs := &fakeTransactionRepo{}
	actions := &fakeActionLog{}
	cache := &fakeCache{}
	return &fixture{
		svc:     NewService(repo, txs, actions, cache),
		repo:    repo,
		txs:     txs,
		actions: actions,
		cache:   cache,
	}
}

func validCreateRequest() *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		FirstName:    "Noa",
		LastName:     "Levi",
		NationalID:   "123456782",
		BirthDate:    time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
		ReferralDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		Status:       model.PatientStatusInTreatment,
		InitialRate:  decimal.NewFromInt(600),
	}
}

func (f *fixture) mustCreate(t *testing.T, req *model.CreatePatientRequest) *model.Patient {
	t.Helper()
	p, err := f.svc.CreatePatient(context.Background(), req, "secretary")
	require.NoError(t, err)
	return p
}

func TestCreatePatient_SeedsHistories(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	require.Len(t, p.RateHistory, 1)
	assert.True(t, p.RateHistory[0].Rate.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, p.ReferralDate, p.RateHistory[0].StartDate)

	require.Len(t, p.StatusHistory, 1)
	assert.Equal(t, model.PatientStatusInTreatment, p.StatusHistory[0].Status)
	assert.Equal(t, "secretary", p.StatusHistory[0].ChangedBy)

	// Start date defaults to the referral date when omitted.
	assert.Equal(t, p.ReferralDate, p.StartDate)
}

func TestCreatePatient_NoInitialRate(t *testing.T) {
	f := newFixture()
	req := validCreateRequest()
	req.InitialRate = decimal.Zero

	p := f.mustCreate(t, req)
	assert.Empty(t, p.RateHistory)
}

func TestCreatePatient_RejectsInvalidNationalID(t *testing.T) {
	f := newFixture()
	req := validCreateRequest()
	req.NationalID = "123456789"

	_, err := f.svc.CreatePatient(context.Background(), req, "secretary")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreatePatient_RejectsDuplicateNationalID(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, validCreateRequest())

	_, err := f.svc.CreatePatient(context.Background(), validCreateRequest(), "secretary")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestChangeRate_AppendsEntry(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	updated, err := f.svc.ChangeRate(context.Background(), p.ID, &model.ChangeRateRequest{Rate: decimal.NewFromInt(700)}, "manager")
	require.NoError(t, err)
	require.Len(t, updated.RateHistory, 2)
	assert.True(t, updated.RateHistory[1].Rate.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, "manager", updated.RateHistory[1].CreatedBy)
	assert.Equal(t, 1, f.cache.flushes)
}

func TestChangeRate_SameRateIsNoOp(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	updated, err := f.svc.ChangeRate(context.Background(), p.ID, &model.ChangeRateRequest{Rate: decimal.NewFromInt(600)}, "manager")
	require.NoError(t, err)
	assert.Len(t, updated.RateHistory, 1)
	assert.Zero(t, f.cache.flushes)
	assert.Empty(t, actionsOfType(f.actions, model.ActionRateChange))
}

func TestChangeRate_RejectsNegative(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.ChangeRate(context.Background(), p.ID, &model.ChangeRateRequest{Rate: decimal.NewFromInt(-5)}, "manager")
	require.Error(t, err)
}

func TestChangeStatus_AppendsHistoryAndEndDate(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	endDate := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	updated, err := f.svc.ChangeStatus(context.Background(), p.ID, &model.ChangeStatusRequest{
		Status:  model.PatientStatusTreatmentEnded,
		EndDate: &endDate,
		Notes:   "completed program",
	}, "therapist")
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusTreatmentEnded, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, "completed program", updated.StatusHistory[1].Notes)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, endDate, *updated.EndDate)
	assert.Equal(t, 1, f.cache.flushes)
}

func TestAddTransaction_StampsActorByType(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	date := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	payment, err := f.svc.AddTransaction(context.Background(), p.ID, &model.AddTransactionRequest{
		Type: model.TransactionTypePayment, Date: date, Amount: decimal.NewFromInt(500), Method: "cash",
	}, "accountant")
	require.NoError(t, err)
	assert.Equal(t, "accountant", payment.Collector)
	assert.Empty(t, payment.IssuedBy)

	charge, err := f.svc.AddTransaction(context.Background(), p.ID, &model.AddTransactionRequest{
		Type: model.TransactionTypeCharge, Date: date, Amount: decimal.NewFromInt(50), Description: "intake fee",
	}, "accountant")
	require.NoError(t, err)
	assert.Equal(t, "accountant", charge.IssuedBy)

	refund, err := f.svc.AddTransaction(context.Background(), p.ID, &model.AddTransactionRequest{
		Type: model.TransactionTypeRefund, Date: date, Amount: decimal.NewFromInt(100), Reason: "overpayment",
	}, "accountant")
	require.NoError(t, err)
	assert.Equal(t, "accountant", refund.ProcessedBy)

	assert.Len(t, f.txs.txs, 3)
	assert.Equal(t, 3, f.cache.flushes)
}

func TestAddTransaction_RejectsNegativeAmount(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.AddTransaction(context.Background(), p.ID, &model.AddTransactionRequest{
		Type: model.TransactionTypePayment, Date: time.Now(), Amount: decimal.NewFromInt(-1),
	}, "accountant")
	require.Error(t, err)
	assert.Empty(t, f.txs.txs)
}

func TestRequestDiscount_StoredPending(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	d, err := f.svc.RequestDiscount(context.Background(), p.ID, &model.RequestDiscountRequest{
		Reason:     "financial hardship",
		Kind:       model.DiscountKindPercentage,
		Value:      decimal.NewFromInt(10),
		ValidFrom:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC),
	}, "therapist")
	require.NoError(t, err)

	assert.Equal(t, model.DiscountStatusPending, d.Status)
	assert.Equal(t, "therapist", d.Requester)

	stored, err := f.svc.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Discounts, 1)
}

func TestRequestDiscount_RejectsInvertedWindow(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.RequestDiscount(context.Background(), p.ID, &model.RequestDiscountRequest{
		Reason:     "typo in dates",
		Kind:       model.DiscountKindFixedAmount,
		Value:      decimal.NewFromInt(100),
		ValidFrom:  time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	}, "therapist")
	require.Error(t, err)
}

func TestRequestDiscount_RejectsPercentageOverHundred(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.RequestDiscount(context.Background(), p.ID, &model.RequestDiscountRequest{
		Reason:     "over-generous",
		Kind:       model.DiscountKindPercentage,
		Value:      decimal.NewFromInt(150),
		ValidFrom:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}, "therapist")
	require.Error(t, err)
}

func TestDecideDiscount_ApproveAndReject(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	window := &model.RequestDiscountRequest{
		Reason:     "sibling in treatment",
		Kind:       model.DiscountKindFixedAmount,
		Value:      decimal.NewFromInt(100),
		ValidFrom:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	first, err := f.svc.RequestDiscount(context.Background(), p.ID, window, "therapist")
	require.NoError(t, err)
	second, err := f.svc.RequestDiscount(context.Background(), p.ID, window, "therapist")
	require.NoError(t, err)

	approved, err := f.svc.DecideDiscount(context.Background(), p.ID, first.ID, &model.DecideDiscountRequest{Approve: true}, "manager")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusApproved, approved.Status)
	assert.Equal(t, "manager", approved.Approver)

	rejected, err := f.svc.DecideDiscount(context.Background(), p.ID, second.ID, &model.DecideDiscountRequest{Approve: false, Notes: "duplicate"}, "manager")
	require.NoError(t, err)
	assert.Equal(t, model.DiscountStatusRejected, rejected.Status)
	assert.Equal(t, "duplicate", rejected.Notes)

	stored, err := f.svc.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Discounts, 2)
	assert.Equal(t, model.DiscountStatusApproved, stored.Discounts[0].Status)
	assert.Equal(t, model.DiscountStatusRejected, stored.Discounts[1].Status)
}

func TestDecideDiscount_UnknownDiscount(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.DecideDiscount(context.Background(), p.ID, uuid.New(), &model.DecideDiscountRequest{Approve: true}, "manager")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestSetSplitBilling_Valid(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	partnerReq := validCreateRequest()
	partnerReq.NationalID = "111111118"
	partner := f.mustCreate(t, partnerReq)

	updated, err := f.svc.SetSplitBilling(context.Background(), p.ID, &model.SetSplitBillingRequest{
		SplitWithPatientID: partner.ID,
		SplitPercentage:    decimal.NewFromInt(60),
	}, "manager")
	require.NoError(t, err)

	require.NotNil(t, updated.BillingInfo)
	assert.Equal(t, partner.ID, updated.BillingInfo.SplitWithPatientID)
	assert.True(t, updated.BillingInfo.SplitPercentage.Equal(decimal.NewFromInt(60)))
}

func TestSetSplitBilling_RejectsSelf(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.SetSplitBilling(context.Background(), p.ID, &model.SetSplitBillingRequest{
		SplitWithPatientID: p.ID,
		SplitPercentage:    decimal.NewFromInt(50),
	}, "manager")
	require.Error(t, err)
}

func TestSetSplitBilling_RejectsMutualCycle(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	partnerReq := validCreateRequest()
	partnerReq.NationalID = "111111118"
	partner := f.mustCreate(t, partnerReq)

	_, err := f.svc.SetSplitBilling(context.Background(), p.ID, &model.SetSplitBillingRequest{
		SplitWithPatientID: partner.ID,
		SplitPercentage:    decimal.NewFromInt(60),
	}, "manager")
	require.NoError(t, err)

	_, err = f.svc.SetSplitBilling(context.Background(), partner.ID, &model.SetSplitBillingRequest{
		SplitWithPatientID: p.ID,
		SplitPercentage:    decimal.NewFromInt(40),
	}, "manager")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestSetSplitBilling_RejectsPercentageOutOfRange(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	partnerReq := validCreateRequest()
	partnerReq.NationalID = "111111118"
	partner := f.mustCreate(t, partnerReq)

	for _, pct := range []int64{0, -10, 101} {
		_, err := f.svc.SetSplitBilling(context.Background(), p.ID, &model.SetSplitBillingRequest{
			SplitWithPatientID: partner.ID,
			SplitPercentage:    decimal.NewFromInt(pct),
		}, "manager")
		assert.Error(t, err, "percentage %d should be rejected", pct)
	}
}

func TestRemoveSplitBilling(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	partnerReq := validCreateRequest()
	partnerReq.NationalID = "111111118"
	partner := f.mustCreate(t, partnerReq)

	_, err := f.svc.SetSplitBilling(context.Background(), p.ID, &model.SetSplitBillingRequest{
		SplitWithPatientID: partner.ID,
		SplitPercentage:    decimal.NewFromInt(60),
	}, "manager")
	require.NoError(t, err)

	updated, err := f.svc.RemoveSplitBilling(context.Background(), p.ID, "manager")
	require.NoError(t, err)
	assert.Nil(t, updated.BillingInfo)

	stored, err := f.svc.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.BillingInfo)
}

func (f *fixture) mustRelate(t *testing.T, id, relatedID uuid.UUID, relType string) {
	t.Helper()
	_, err := f.svc.AddRelationship(context.Background(), id, &model.AddRelationshipRequest{
		RelatedPatientID: relatedID,
		RelationshipType: relType,
	}, "secretary")
	require.NoError(t, err)
}

func TestAddRelationship_Symmetric(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	siblingReq := validCreateRequest()
	siblingReq.NationalID = "111111118"
	sibling := f.mustCreate(t, siblingReq)

	f.mustRelate(t, p.ID, sibling.ID, "sibling")

	stored, err := f.svc.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Relationships, 1)
	assert.Equal(t, sibling.ID, stored.Relationships[0].RelatedPatientID)
	assert.Equal(t, "sibling", stored.Relationships[0].RelationshipType)

	other, err := f.svc.GetPatient(context.Background(), sibling.ID)
	require.NoError(t, err)
	require.Len(t, other.Relationships, 1)
	assert.Equal(t, p.ID, other.Relationships[0].RelatedPatientID)
	assert.Equal(t, "sibling", other.Relationships[0].RelationshipType)

	assert.Len(t, actionsOfType(f.actions, model.ActionRelationshipChange), 1)
}

func TestAddRelationship_RejectsDuplicate(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	siblingReq := validCreateRequest()
	siblingReq.NationalID = "111111118"
	sibling := f.mustCreate(t, siblingReq)

	f.mustRelate(t, p.ID, sibling.ID, "sibling")

	_, err := f.svc.AddRelationship(context.Background(), p.ID, &model.AddRelationshipRequest{
		RelatedPatientID: sibling.ID,
		RelationshipType: "parent",
	}, "secretary")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	stored, err := f.svc.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Relationships, 1)
}

func TestAddRelationship_RejectsSelf(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.AddRelationship(context.Background(), p.ID, &model.AddRelationshipRequest{
		RelatedPatientID: p.ID,
		RelationshipType: "spouse",
	}, "secretary")
	require.Error(t, err)
}

func TestAddRelationship_UnknownRelatedPatient(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.AddRelationship(context.Background(), p.ID, &model.AddRelationshipRequest{
		RelatedPatientID: uuid.New(),
		RelationshipType: "spouse",
	}, "secretary")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestRemoveRelationship_Symmetric(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())
	spouseReq := validCreateRequest()
	spouseReq.NationalID = "111111118"
	spouse := f.mustCreate(t, spouseReq)

	f.mustRelate(t, p.ID, spouse.ID, "spouse")

	updated, err := f.svc.RemoveRelationship(context.Background(), p.ID, spouse.ID, "secretary")
	require.NoError(t, err)
	assert.Empty(t, updated.Relationships)

	other, err := f.svc.GetPatient(context.Background(), spouse.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Relationships)

	assert.Len(t, actionsOfType(f.actions, model.ActionRelationshipChange), 2)
}

func TestMutationsAreLogged(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, validCreateRequest())

	_, err := f.svc.ChangeRate(context.Background(), p.ID, &model.ChangeRateRequest{Rate: decimal.NewFromInt(700)}, "manager")
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(context.Background(), p.ID, &model.ChangeStatusRequest{Status: model.PatientStatusFrozen}, "manager")
	require.NoError(t, err)

	assert.Len(t, actionsOfType(f.actions, model.ActionPatientCreate), 1)
	assert.Len(t, actionsOfType(f.actions, model.ActionRateChange), 1)
	assert.Len(t, actionsOfType(f.actions, model.ActionStatusChange), 1)
}

func actionsOfType(log *fakeActionLog, actionType model.ActionType) []model.ActionLogEntry {
	var out []model.ActionLogEntry
	for _, e := range log.entries {
		if e.Type == actionType {
			out = append(out, e)
		}
	}
	return out
}
