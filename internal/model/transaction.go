package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeCharge  TransactionType = "charge"
	TransactionTypeRefund  TransactionType = "refund"
)

// Transaction is one row of a patient's append-only ledger. Amount is
// always a non-negative magnitude; direction is implied by Type.
// Payments and refunds make up the paid side of the balance, one-time
// charges the charged side.
type Transaction struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	PatientID uuid.UUID       `json:"patient_id" db:"patient_id"`
	Type      TransactionType `json:"type" db:"type"`
	Date      time.Time       `json:"date" db:"date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`

	// payment fields
	ForMonths string `json:"for_months,omitempty" db:"for_months"`
	Method    string `json:"method,omitempty" db:"method"`
	Collector string `json:"collector,omitempty" db:"collector"`

	// one-time charge fields
	Description string `json:"description,omitempty" db:"description"`
	IssuedBy    string `json:"issued_by,omitempty" db:"issued_by"`

	// refund fields
	Reason      string `json:"reason,omitempty" db:"reason"`
	ProcessedBy string `json:"processed_by,omitempty" db:"processed_by"`

	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy string    `json:"created_by" db:"created_by"`
}

type AddTransactionRequest struct {
	Type        TransactionType `json:"type" binding:"required,oneof=payment charge refund"`
	Date        time.Time       `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ForMonths   string          `json:"for_months"`
	Method      string          `json:"method"`
	Description string          `json:"description"`
	Reason      string          `json:"reason"`
	Notes       string          `json:"notes"`
}
