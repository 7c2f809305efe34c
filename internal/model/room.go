package model

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Location string    `db:"location" json:"location,omitempty"`
}

// RoomBooking reserves a room for a time slot on a single date. Blocked
// bookings mark maintenance windows with no therapist attached.
type RoomBooking struct {
	Base
	RoomID      uuid.UUID  `db:"room_id" json:"room_id"`
	Date        time.Time  `db:"date" json:"date"`
	StartTime   time.Time  `db:"start_time" json:"start_time"`
	EndTime     time.Time  `db:"end_time" json:"end_time"`
	TherapistID *uuid.UUID `db:"therapist_id" json:"therapist_id,omitempty"`
	IsBlocked   bool       `db:"is_blocked" json:"is_blocked"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
}

type CreateRoomBookingRequest struct {
	RoomID      uuid.UUID  `json:"room_id" binding:"required"`
	Date        time.Time  `json:"date" binding:"required"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     time.Time  `json:"end_time" binding:"required"`
	TherapistID *uuid.UUID `json:"therapist_id"`
	IsBlocked   bool       `json:"is_blocked"`
	Notes       string     `json:"notes"`
}
