package ports

import (
	"context"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
)

// LedgerPoster posts a completed transaction to the host's ledger. Assumed
// idempotent; posting failures are logged by the caller, never raised.
type LedgerPoster interface {
	Post(ctx context.Context, txn *models.Transaction) error
}

// PartyDirectory exposes read-only access to the host's party and address
// entities.
type PartyDirectory interface {
	GetParty(ctx context.Context, id string) (*models.Party, error)
	GetAddress(ctx context.Context, id string) (*models.Address, error)
}

// InFlightStore guards against concurrent operations on the same
// transaction across processes. TryAcquire returns false when another
// operation already holds the transaction.
type InFlightStore interface {
	TryAcquire(ctx context.Context, transactionID string) (bool, error)
	Release(ctx context.Context, transactionID string) error
}
