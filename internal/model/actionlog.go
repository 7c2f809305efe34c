package model

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionRateChange         ActionType = "rate-change"
	ActionDiscountRequest    ActionType = "discount-request"
	ActionDiscountDecision   ActionType = "discount-decision"
	ActionBillingSplitUpdate ActionType = "billing-split-update"
	ActionStatusChange       ActionType = "status-change"
	ActionTransactionAdd     ActionType = "transaction-add"
	ActionRelationshipChange ActionType = "relationship-change"
	ActionPatientCreate      ActionType = "patient-create"
)

// ActionLogEntry records a financially significant mutation for the
// action trail screen. It is append-only.
type ActionLogEntry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Timestamp time.Time  `db:"timestamp" json:"timestamp"`
	UserName  string     `db:"user_name" json:"user_name"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Type      ActionType `db:"type" json:"type"`
	Details   string     `db:"details" json:"details"`
}

type ActionLogFilters struct {
	PatientID uuid.UUID  `form:"patient_id"`
	Type      ActionType `form:"type"`
	Limit     int        `form:"limit"`
}
