package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingInfo declares a directed bill split: the owning patient pays
// SplitPercentage of their own base charge and the designated partner
// is billed the complement. Only the declaring patient carries the
// record; the partner is discovered by scanning the roster.
type BillingInfo struct {
	SplitWithPatientID uuid.UUID       `json:"split_with_patient_id"`
	SplitPercentage    decimal.Decimal `json:"split_percentage"`
}

type SplitAnomalyKind string

const (
	// SplitAnomalySelfReference marks a patient splitting with themselves.
	SplitAnomalySelfReference SplitAnomalyKind = "self_reference"
	// SplitAnomalyMutualSplit marks two patients splitting toward each
	// other; both summaries double count.
	SplitAnomalyMutualSplit SplitAnomalyKind = "mutual_split"
	// SplitAnomalyExtraClaimant marks an incoming split that was not
	// absorbed because another claimant matched first.
	SplitAnomalyExtraClaimant SplitAnomalyKind = "extra_claimant"
)

// SplitAnomaly flags a suspect billing-split arrangement detected while
// summarizing. Anomalies never fail the computation; they accompany it.
type SplitAnomaly struct {
	Kind      SplitAnomalyKind `json:"kind"`
	PatientID uuid.UUID        `json:"patient_id"`
}

// FinancialSummary is the single consumer-facing result of the billing
// engine. Balance is paid minus charged: non-negative means the patient
// is in good standing.
type FinancialSummary struct {
	PatientID      uuid.UUID       `json:"patient_id"`
	TotalCharged   decimal.Decimal `json:"total_charged"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Balance        decimal.Decimal `json:"balance"`
	SplitAnomalies []SplitAnomaly  `json:"split_anomalies,omitempty"`
}

type SetSplitBillingRequest struct {
	SplitWithPatientID uuid.UUID       `json:"split_with_patient_id" binding:"required"`
	SplitPercentage    decimal.Decimal `json:"split_percentage" binding:"required"`
}
