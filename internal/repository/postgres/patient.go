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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, first_name, last_name, national_id, address, birth_date, gender,
	phone, email, notes, therapeutic_center, therapist, treatment_type, referral_date,
	start_date, end_date, status, rate_history, status_history, discounts, billing_info,
	relationships, created_at, created_by, updated_at, updated_by`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (:id, :first_name, :last_name, :national_id, :address, :birth_date, :gender,
			:phone, :email, :notes, :therapeutic_center, :therapist, :treatment_type, :referral_date,
			:start_date, :end_date, :status, :rate_history, :status_history, :discounts, :billing_info,
			:relationships, :created_at, :created_by, :updated_at, :updated_by)
	`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = :first_name, last_name = :last_name, address = :address,
			phone = :phone, email = :email, notes = :notes,
			therapeutic_center = :therapeutic_center, therapist = :therapist,
			treatment_type = :treatment_type, start_date = :start_date, end_date = :end_date,
			status = :status, rate_history = :rate_history, status_history = :status_history,
			discounts = :discounts, billing_info = :billing_info,
			relationships = :relationships,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id
	`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var conditions []string
	var args []interface{}

	if filters != nil {
		if filters.Status != "" {
			args = append(args, filters.Status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if filters.TherapeuticCenter != "" {
			args = append(args, filters.TherapeuticCenter)
			conditions = append(conditions, fmt.Sprintf("therapeutic_center = $%d", len(args)))
		}
		if filters.Therapist != "" {
			args = append(args, filters.Therapist)
			conditions = append(conditions, fmt.Sprintf("therapist = $%d", len(args)))
		}
		if filters.SearchTerm != "" {
			args = append(args, "%"+filters.SearchTerm+"%")
			conditions = append(conditions, fmt.Sprintf(
				"(first_name ILIKE $%d OR last_name ILIKE $%d OR national_id ILIKE $%d)",
				len(args), len(args), len(args)))
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ExistsByNationalID(ctx context.Context, nationalID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE national_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, nationalID); err != nil {
		return false, fmt.Errorf("failed to check national ID: %w", err)
	}
	return exists, nil
}
