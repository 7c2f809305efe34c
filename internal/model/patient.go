package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PatientStatus string

const (
	PatientStatusInTreatment       PatientStatus = "in_treatment"
	PatientStatusWaiting           PatientStatus = "waiting"
	PatientStatusDiscontinued      PatientStatus = "discontinued"
	PatientStatusEndedSuccessfully PatientStatus = "ended_successfully"
	PatientStatusTreatmentEnded    PatientStatus = "treatment_ended"
	PatientStatusFrozen            PatientStatus = "frozen"
)

// Terminal reports whether the status stops charge accrual at EndDate.
func (s PatientStatus) Terminal() bool {
	switch s {
	case PatientStatusTreatmentEnded, PatientStatusDiscontinued, PatientStatusEndedSuccessfully:
		return true
	}
	return false
}

// Patient is the aggregate root. Rate history, status history, discounts
// and billing info are owned child collections persisted as JSON columns;
// the ledger lives in the transactions table and is attached on load.
type Patient struct {
	Base
	FirstName         string        `db:"first_name" json:"first_name"`
	LastName          string        `db:"last_name" json:"last_name"`
	NationalID        string        `db:"national_id" json:"national_id"`
	Address           string        `db:"address" json:"address"`
	BirthDate         time.Time     `db:"birth_date" json:"birth_date"`
	Gender            string        `db:"gender" json:"gender"`
	Phone             string        `db:"phone" json:"phone"`
	Email             string        `db:"email" json:"email"`
	Notes             string        `db:"notes" json:"notes,omitempty"`
	TherapeuticCenter string        `db:"therapeutic_center" json:"therapeutic_center"`
	Therapist         string        `db:"therapist" json:"therapist"`
	TreatmentType     string        `db:"treatment_type" json:"treatment_type"`
	ReferralDate      time.Time     `db:"referral_date" json:"referral_date"`
	StartDate         time.Time     `db:"start_date" json:"start_date"`
	EndDate           *time.Time    `db:"end_date" json:"end_date,omitempty"`
	Status            PatientStatus `db:"status" json:"status"`

	RateHistory   []RateHistoryEntry   `db:"-" json:"rate_history"`
	StatusHistory []StatusHistoryEntry `db:"-" json:"status_history"`
	Discounts     []Discount           `db:"-" json:"discounts"`
	BillingInfo   *BillingInfo         `db:"-" json:"billing_info,omitempty"`
	Relationships []Relationship       `db:"-" json:"relationships"`
	Transactions  []Transaction        `db:"-" json:"transactions,omitempty"`

	RateHistoryJSON   string `db:"rate_history" json:"-"`
	StatusHistoryJSON string `db:"status_history" json:"-"`
	DiscountsJSON     string `db:"discounts" json:"-"`
	BillingInfoJSON   string `db:"billing_info" json:"-"`
	RelationshipsJSON string `db:"relationships" json:"-"`
}

// EncodeJSONFields serializes the child collections into their JSON
// columns before persisting.
func (p *Patient) EncodeJSONFields() error {
	rh, err := json.Marshal(p.RateHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal rate history: %w", err)
	}
	p.RateHistoryJSON = string(rh)

	sh, err := json.Marshal(p.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}
	p.StatusHistoryJSON = string(sh)

	ds, err := json.Marshal(p.Discounts)
	if err != nil {
		return fmt.Errorf("failed to marshal discounts: %w", err)
	}
	p.DiscountsJSON = string(ds)

	if p.BillingInfo != nil {
		bi, err := json.Marshal(p.BillingInfo)
		if err != nil {
			return fmt.Errorf("failed to marshal billing info: %w", err)
		}
		p.BillingInfoJSON = string(bi)
	} else {
		p.BillingInfoJSON = ""
	}

	rel, err := json.Marshal(p.Relationships)
	if err != nil {
		return fmt.Errorf("failed to marshal relationships: %w", err)
	}
	p.RelationshipsJSON = string(rel)
	return nil
}

// DecodeJSONFields rehydrates the child collections from their JSON
// columns after loading.
func (p *Patient) DecodeJSONFields() error {
	if p.RateHistoryJSON != "" {
		if err := json.Unmarshal([]byte(p.RateHistoryJSON), &p.RateHistory); err != nil {
			return fmt.Errorf("failed to unmarshal rate history: %w", err)
		}
	}
	if p.StatusHistoryJSON != "" {
		if err := json.Unmarshal([]byte(p.StatusHistoryJSON), &p.StatusHistory); err != nil {
			return fmt.Errorf("failed to unmarshal status history: %w", err)
		}
	}
	if p.DiscountsJSON != "" {
		if err := json.Unmarshal([]byte(p.DiscountsJSON), &p.Discounts); err != nil {
			return fmt.Errorf("failed to unmarshal discounts: %w", err)
		}
	}
	if p.BillingInfoJSON != "" {
		var bi BillingInfo
		if err := json.Unmarshal([]byte(p.BillingInfoJSON), &bi); err != nil {
			return fmt.Errorf("failed to unmarshal billing info: %w", err)
		}
		p.BillingInfo = &bi
	} else {
		p.BillingInfo = nil
	}
	if p.RelationshipsJSON != "" {
		if err := json.Unmarshal([]byte(p.RelationshipsJSON), &p.Relationships); err != nil {
			return fmt.Errorf("failed to unmarshal relationships: %w", err)
		}
	}
	return nil
}

type PatientFilters struct {
	Status            PatientStatus `form:"status"`
	TherapeuticCenter string        `form:"therapeutic_center"`
	Therapist         string        `form:"therapist"`
	SearchTerm        string        `form:"search"`
}

type CreatePatientRequest struct {
	FirstName         string          `json:"first_name" binding:"required"`
	LastName          string          `json:"last_name" binding:"required"`
	NationalID        string          `json:"national_id" binding:"required,israeli_id"`
	Address           string          `json:"address"`
	BirthDate         time.Time       `json:"birth_date" binding:"required"`
	Gender            string          `json:"gender"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email" binding:"omitempty,email"`
	TherapeuticCenter string          `json:"therapeutic_center"`
	Therapist         string          `json:"therapist"`
	TreatmentType     string          `json:"treatment_type"`
	ReferralDate      time.Time       `json:"referral_date" binding:"required"`
	StartDate         time.Time       `json:"start_date"`
	Status            PatientStatus   `json:"status" binding:"required"`
	InitialRate       decimal.Decimal `json:"initial_rate"`
	Notes             string          `json:"notes"`
}

type UpdatePatientRequest struct {
	FirstName         *string    `json:"first_name"`
	LastName          *string    `json:"last_name"`
	Address           *string    `json:"address"`
	Phone             *string    `json:"phone"`
	Email             *string    `json:"email" binding:"omitempty,email"`
	TherapeuticCenter *string    `json:"therapeutic_center"`
	Therapist         *string    `json:"therapist"`
	TreatmentType     *string    `json:"treatment_type"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Notes             *string    `json:"notes"`
}

type ChangeRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

type ChangeStatusRequest struct {
	Status  PatientStatus `json:"status" binding:"required"`
	EndDate *time.Time    `json:"end_date"`
	Notes   string        `json:"notes"`
}
