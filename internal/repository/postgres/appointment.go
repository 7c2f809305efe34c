package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, title, patient_id, therapist_id, start_time, end_time,
			all_day, checked_in, status, notes, created_at, created_by, updated_at, updated_by)
		VALUES (:id, :title, :patient_id, :therapist_id, :start_time, :end_time,
			:all_day, :checked_in, :status, :notes, :created_at, :created_by, :updated_at, :updated_by)
	`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, `SELECT * FROM appointments WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments SET title = :title, patient_id = :patient_id,
			therapist_id = :therapist_id, start_time = :start_time, end_time = :end_time,
			all_day = :all_day, checked_in = :checked_in, status = :status, notes = :notes,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments`
	var conditions []string
	var args []interface{}

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
		}
		if filters.TherapistID != uuid.Nil {
			args = append(args, filters.TherapistID)
			conditions = append(conditions, fmt.Sprintf("therapist_id = $%d", len(args)))
		}
		if !filters.From.IsZero() {
			args = append(args, filters.From)
			conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)))
		}
		if !filters.To.IsZero() {
			args = append(args, filters.To)
			conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(args)))
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
