package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, patient_id, type, date, amount, for_months, method,
			collector, description, issued_by, reason, processed_by, notes, created_at, created_by)
		VALUES (:id, :patient_id, :type, :date, :amount, :for_months, :method,
			:collector, :description, :issued_by, :reason, :processed_by, :notes, :created_at, :created_by)
	`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Transaction, error) {
	query := `SELECT * FROM transactions WHERE patient_id = $1 ORDER BY date, created_at`
	var txs []model.Transaction
	if err := r.db.SelectContext(ctx, &txs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
