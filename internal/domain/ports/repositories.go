package ports

import (
	"context"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
)

// TransactionRepository defines persistence for payment transactions
type TransactionRepository interface {
	// Create persists a new transaction
	Create(ctx context.Context, tx DBTX, txn *models.Transaction) error

	// GetByID retrieves a transaction by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*models.Transaction, error)

	// UpdateState atomically updates state and, when non-nil, the provider
	// reference of a transaction
	UpdateState(ctx context.Context, tx DBTX, id string, state models.TransactionState, providerReference *string) error

	// ListByParty lists transactions for a party with pagination
	ListByParty(ctx context.Context, db DBTX, partyID string, limit, offset int32) ([]*models.Transaction, error)
}

// PaymentProfileRepository defines persistence for payment profiles
type PaymentProfileRepository interface {
	// Create persists a new payment profile
	Create(ctx context.Context, tx DBTX, profile *models.PaymentProfile) error

	// GetByID retrieves a profile by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*models.PaymentProfile, error)

	// FindCustomerID returns the provider customer id recorded for a
	// party+gateway pair, or "" when none exists. Duplicates are tolerated;
	// the oldest match wins.
	FindCustomerID(ctx context.Context, db DBTX, partyID, gatewayID string) (string, error)
}

// TransactionLogRepository defines persistence for the append-only audit
// trail of provider round trips
type TransactionLogRepository interface {
	// Create appends one immutable log entry
	Create(ctx context.Context, tx DBTX, entry *models.TransactionLog) error

	// ListByTransaction returns all entries for a transaction in creation order
	ListByTransaction(ctx context.Context, db DBTX, transactionID string) ([]*models.TransactionLog, error)
}

// GatewayRepository defines persistence for gateway configuration records
type GatewayRepository interface {
	// Create persists a new gateway record
	Create(ctx context.Context, tx DBTX, gateway *models.Gateway) error

	// GetByID retrieves a gateway by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*models.Gateway, error)
}
