package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maayanhealth/clinic-api/internal/model"
)

// Summarize computes the patient's financial summary as of the given
// instant against a roster snapshot of all patients.
//
// The charged side is the pro-rata base charge, adjusted by the
// patient's own split percentage when they split their bill, plus
// one-time charges (never split), plus the complementary share of the
// first roster patient who splits toward this one. The paid side is
// payments minus refunds. Both sides round to 2 decimal places and the
// balance is paid minus charged, so a non-negative balance means the
// patient is in good standing.
//
// Degenerate split arrangements (self-reference, mutual splits, more
// than one incoming claimant) are not corrected; they are reported in
// SplitAnomalies so the caller can surface them.
func Summarize(p *model.Patient, roster []*model.Patient, asOf time.Time) model.FinancialSummary {
	base := BaseCharge(p, asOf)
	oneTime := sumByType(p.Transactions, model.TransactionTypeCharge)

	charged := base.Add(oneTime)
	var anomalies []model.SplitAnomaly

	if p.BillingInfo != nil && p.BillingInfo.SplitWithPatientID != uuid.Nil {
		charged = base.Mul(p.BillingInfo.SplitPercentage).Div(hundred).Add(oneTime)
		if p.BillingInfo.SplitWithPatientID == p.ID {
			anomalies = append(anomalies, model.SplitAnomaly{
				Kind:      model.SplitAnomalySelfReference,
				PatientID: p.ID,
			})
		}
	}

	// Only the first incoming split is absorbed; further claimants are
	// flagged instead of summed.
	var payer *model.Patient
	for _, other := range roster {
		bi := other.BillingInfo
		if bi == nil || bi.SplitWithPatientID != p.ID {
			continue
		}
		if payer == nil {
			payer = other
			continue
		}
		anomalies = append(anomalies, model.SplitAnomaly{
			Kind:      model.SplitAnomalyExtraClaimant,
			PatientID: other.ID,
		})
	}

	if payer != nil {
		share := BaseCharge(payer, asOf).Mul(hundred.Sub(payer.BillingInfo.SplitPercentage)).Div(hundred)
		charged = charged.Add(share)

		if payer.ID != p.ID && p.BillingInfo != nil && p.BillingInfo.SplitWithPatientID == payer.ID {
			anomalies = append(anomalies, model.SplitAnomaly{
				Kind:      model.SplitAnomalyMutualSplit,
				PatientID: payer.ID,
			})
		}
	}

	paid := sumByType(p.Transactions, model.TransactionTypePayment).
		Sub(sumByType(p.Transactions, model.TransactionTypeRefund))

	chargedRounded := charged.Round(2)
	paidRounded := paid.Round(2)

	return model.FinancialSummary{
		PatientID:      p.ID,
		TotalCharged:   chargedRounded,
		TotalPaid:      paidRounded,
		Balance:        paidRounded.Sub(chargedRounded),
		SplitAnomalies: anomalies,
	}
}

func sumByType(txs []model.Transaction, t model.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}
