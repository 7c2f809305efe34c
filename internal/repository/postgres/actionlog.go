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

type actionLogRepository struct {
	db *sqlx.DB
}

func NewActionLogRepository(db *sqlx.DB) repository.ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Create(ctx context.Context, entry *model.ActionLogEntry) error {
	query := `
		INSERT INTO action_log (id, timestamp, user_name, patient_id, type, details)
		VALUES (:id, :timestamp, :user_name, :patient_id, :type, :details)
	`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to create action log entry: %w", err)
	}
	return nil
}

func (r *actionLogRepository) List(ctx context.Context, filters *model.ActionLogFilters) ([]*model.ActionLogEntry, error) {
	query := `SELECT * FROM action_log`
	var conditions []string
	var args []interface{}

	limit := 100
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
		}
		if filters.Type != "" {
			args = append(args, filters.Type)
			conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
		}
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	var entries []*model.ActionLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list action log: %w", err)
	}
	return entries, nil
}
