package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy string    `json:"updated_by" db:"updated_by"`
}

// Touch stamps the audit fields for a mutation performed by actor.
func (b *Base) Touch(actor string, now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
		b.CreatedBy = actor
	}
	b.UpdatedAt = now
	b.UpdatedBy = actor
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}
