package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountKindPercentage  DiscountKind = "percentage"
	DiscountKindFixedAmount DiscountKind = "fixed_amount"
)

type DiscountStatus string

const (
	DiscountStatusPending  DiscountStatus = "pending"
	DiscountStatusApproved DiscountStatus = "approved"
	DiscountStatusRejected DiscountStatus = "rejected"
)

// Discount is a per-patient reduction request. Only approved discounts
// whose validity window overlaps a month reduce that month's charge.
// Value is a percentage (e.g. 10 for 10%) or a fixed monthly amount,
// depending on Kind.
type Discount struct {
	ID           uuid.UUID       `json:"id"`
	RequestDate  time.Time       `json:"request_date"`
	Requester    string          `json:"requester"`
	Reason       string          `json:"reason"`
	Kind         DiscountKind    `json:"kind"`
	Value        decimal.Decimal `json:"value"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidUntil   time.Time       `json:"valid_until"`
	Status       DiscountStatus  `json:"status"`
	Approver     string          `json:"approver,omitempty"`
	DecisionDate time.Time       `json:"decision_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

type RequestDiscountRequest struct {
	Reason     string          `json:"reason" binding:"required"`
	Kind       DiscountKind    `json:"kind" binding:"required,oneof=percentage fixed_amount"`
	Value      decimal.Decimal `json:"value" binding:"required"`
	ValidFrom  time.Time       `json:"valid_from" binding:"required"`
	ValidUntil time.Time       `json:"valid_until" binding:"required"`
}

type DecideDiscountRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}
