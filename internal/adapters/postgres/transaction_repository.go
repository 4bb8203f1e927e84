package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// TransactionRepository implements ports.TransactionRepository with pgx
type TransactionRepository struct {
	db ports.DBPort
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db ports.DBPort) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) dbtx(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

// Create persists a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx ports.DBTX, txn *models.Transaction) error {
	amount, err := decimalToPgNumeric(txn.Amount)
	if err != nil {
		return err
	}

	_, err = r.dbtx(tx).Exec(ctx, `
		INSERT INTO transactions (
			id, party_id, address_id, gateway_id, payment_profile_id,
			amount, currency, state, provider_reference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
		txn.ID, txn.PartyID, nullText(txn.AddressID), txn.GatewayID,
		nullText(txn.PaymentProfileID), amount, txn.Currency,
		string(txn.State), nullText(txn.ProviderReference),
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Transaction, error) {
	row := r.dbtx(db).QueryRow(ctx, `
		SELECT id, party_id, address_id, gateway_id, payment_profile_id,
		       amount, currency, state, provider_reference, created_at, updated_at
		FROM transactions WHERE id = $1`, id)

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeTxnNotFound,
				"transaction not found").WithDetail("transaction_id", id)
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return txn, nil
}

// UpdateState atomically updates state and, when non-nil, the provider
// reference of a transaction
func (r *TransactionRepository) UpdateState(ctx context.Context, tx ports.DBTX, id string, state models.TransactionState, providerReference *string) error {
	var ref pgtype.Text
	if providerReference != nil {
		ref = pgtype.Text{String: *providerReference, Valid: true}
	}

	tag, err := r.dbtx(tx).Exec(ctx, `
		UPDATE transactions
		SET state = $2,
		    provider_reference = COALESCE($3, provider_reference),
		    updated_at = now()
		WHERE id = $1`,
		id, string(state), ref,
	)
	if err != nil {
		return fmt.Errorf("update transaction state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrorCodeTxnNotFound,
			"transaction not found").WithDetail("transaction_id", id)
	}
	return nil
}

// ListByParty lists transactions for a party with pagination
func (r *TransactionRepository) ListByParty(ctx context.Context, db ports.DBTX, partyID string, limit, offset int32) ([]*models.Transaction, error) {
	rows, err := r.dbtx(db).Query(ctx, `
		SELECT id, party_id, address_id, gateway_id, payment_profile_id,
		       amount, currency, state, provider_reference, created_at, updated_at
		FROM transactions
		WHERE party_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, partyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions by party: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		txn       models.Transaction
		addressID pgtype.Text
		profileID pgtype.Text
		amount    pgtype.Numeric
		state     string
		ref       pgtype.Text
	)
	err := row.Scan(&txn.ID, &txn.PartyID, &addressID, &txn.GatewayID,
		&profileID, &amount, &txn.Currency, &state, &ref,
		&txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		return nil, err
	}

	dec, err := pgNumericToDecimal(amount)
	if err != nil {
		return nil, err
	}
	txn.Amount = dec
	txn.AddressID = addressID.String
	txn.PaymentProfileID = profileID.String
	txn.State = models.TransactionState(state)
	txn.ProviderReference = ref.String
	return &txn, nil
}
