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

// GatewayRepository implements ports.GatewayRepository with pgx
type GatewayRepository struct {
	db ports.DBPort
}

// NewGatewayRepository creates a new gateway repository
func NewGatewayRepository(db ports.DBPort) *GatewayRepository {
	return &GatewayRepository{db: db}
}

func (r *GatewayRepository) dbtx(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

// Create persists a new gateway record
func (r *GatewayRepository) Create(ctx context.Context, tx ports.DBTX, gateway *models.Gateway) error {
	_, err := r.dbtx(tx).Exec(ctx, `
		INSERT INTO gateways (id, provider, mode, test_api_key, live_api_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`,
		gateway.ID, gateway.Provider, string(gateway.Mode),
		nullText(gateway.TestAPIKey), nullText(gateway.LiveAPIKey),
	)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	return nil
}

// GetByID retrieves a gateway by its ID
func (r *GatewayRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Gateway, error) {
	var (
		gateway models.Gateway
		mode    string
		testKey pgtype.Text
		liveKey pgtype.Text
	)
	err := r.dbtx(db).QueryRow(ctx, `
		SELECT id, provider, mode, test_api_key, live_api_key, created_at, updated_at
		FROM gateways WHERE id = $1`, id).
		Scan(&gateway.ID, &gateway.Provider, &mode, &testKey, &liveKey,
			&gateway.CreatedAt, &gateway.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeGatewayNotFound,
				"gateway not found").WithDetail("gateway_id", id)
		}
		return nil, fmt.Errorf("get gateway by id: %w", err)
	}
	gateway.Mode = models.GatewayMode(mode)
	gateway.TestAPIKey = testKey.String
	gateway.LiveAPIKey = liveKey.String
	return &gateway, nil
}
