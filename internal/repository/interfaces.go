package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maayanhealth/clinic-api/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	ExistsByNationalID(ctx context.Context, nationalID string) (bool, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Transaction, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	ListRooms(ctx context.Context) ([]*model.Room, error)
	CreateBooking(ctx context.Context, booking *model.RoomBooking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	ListBookings(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*model.RoomBooking, error)
}

type ActionLogRepository interface {
	Create(ctx context.Context, entry *model.ActionLogEntry) error
	List(ctx context.Context, filters *model.ActionLogFilters) ([]*model.ActionLogEntry, error)
}
