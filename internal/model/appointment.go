package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	Base
	Title       string            `db:"title" json:"title"`
	PatientID   *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	TherapistID uuid.UUID         `db:"therapist_id" json:"therapist_id"`
	StartTime   time.Time         `db:"start_time" json:"start_time"`
	EndTime     time.Time         `db:"end_time" json:"end_time"`
	AllDay      bool              `db:"all_day" json:"all_day"`
	CheckedIn   bool              `db:"checked_in" json:"checked_in"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Notes       string            `db:"notes" json:"notes,omitempty"`
}

type AppointmentFilters struct {
	PatientID   uuid.UUID `form:"patient_id"`
	TherapistID uuid.UUID `form:"therapist_id"`
	From        time.Time `form:"from"`
	To          time.Time `form:"to"`
}

type CreateAppointmentRequest struct {
	Title       string     `json:"title" binding:"required"`
	PatientID   *uuid.UUID `json:"patient_id"`
	TherapistID uuid.UUID  `json:"therapist_id" binding:"required"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     time.Time  `json:"end_time" binding:"required"`
	AllDay      bool       `json:"all_day"`
	Notes       string     `json:"notes"`
}
