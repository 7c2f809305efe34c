package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateHistoryEntry records a monthly rate taking effect on StartDate.
// Rate corrections append a new entry; existing entries are never edited.
type RateHistoryEntry struct {
	StartDate time.Time       `json:"start_date"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"`
}

// StatusHistoryEntry records a status taking effect on Date.
type StatusHistoryEntry struct {
	Date      time.Time     `json:"date"`
	Status    PatientStatus `json:"status"`
	ChangedBy string        `json:"changed_by"`
	Notes     string        `json:"notes,omitempty"`
}
