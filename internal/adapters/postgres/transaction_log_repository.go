package postgres

import (
	"context"
	"fmt"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// TransactionLogRepository implements ports.TransactionLogRepository with pgx
type TransactionLogRepository struct {
	db ports.DBPort
}

// NewTransactionLogRepository creates a new transaction log repository
func NewTransactionLogRepository(db ports.DBPort) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

func (r *TransactionLogRepository) dbtx(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

// Create appends one immutable log entry
func (r *TransactionLogRepository) Create(ctx context.Context, tx ports.DBTX, entry *models.TransactionLog) error {
	_, err := r.dbtx(tx).Exec(ctx, `
		INSERT INTO transaction_logs (id, transaction_id, payload, created_at)
		VALUES ($1, $2, $3, now())`,
		entry.ID, entry.TransactionID, entry.Payload,
	)
	if err != nil {
		return fmt.Errorf("create transaction log: %w", err)
	}
	return nil
}

// ListByTransaction returns all entries for a transaction in creation order
func (r *TransactionLogRepository) ListByTransaction(ctx context.Context, db ports.DBTX, transactionID string) ([]*models.TransactionLog, error) {
	rows, err := r.dbtx(db).Query(ctx, `
		SELECT id, transaction_id, payload, created_at
		FROM transaction_logs
		WHERE transaction_id = $1
		ORDER BY created_at ASC`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.TransactionLog
	for rows.Next() {
		var entry models.TransactionLog
		if err := rows.Scan(&entry.ID, &entry.TransactionID, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction log: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
