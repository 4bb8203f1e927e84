package secrets

import (
	"context"
	"fmt"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// KeyResolvingGatewayRepository decorates a gateway repository so that
// gateways stored without an API key get theirs from the secret backend.
// Secrets live at "payment-gateway/stripe/{gateway_id}/{mode}". Gateways
// that carry their key in the database pass through untouched.
type KeyResolvingGatewayRepository struct {
	inner   ports.GatewayRepository
	secrets ports.SecretManager
	logger  ports.Logger
}

// NewKeyResolvingGatewayRepository wraps a gateway repository with secret
// backend key resolution
func NewKeyResolvingGatewayRepository(inner ports.GatewayRepository, secrets ports.SecretManager, logger ports.Logger) *KeyResolvingGatewayRepository {
	return &KeyResolvingGatewayRepository{inner: inner, secrets: secrets, logger: logger}
}

// Create passes through to the wrapped repository
func (r *KeyResolvingGatewayRepository) Create(ctx context.Context, tx ports.DBTX, gateway *models.Gateway) error {
	return r.inner.Create(ctx, tx, gateway)
}

// GetByID loads the gateway and fills a missing active API key from the
// secret backend. Resolution failures are logged and left for
// ActiveAPIKey to report as a configuration error.
func (r *KeyResolvingGatewayRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Gateway, error) {
	gateway, err := r.inner.GetByID(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if _, err := gateway.ActiveAPIKey(); err == nil {
		return gateway, nil
	}

	path := fmt.Sprintf("payment-gateway/%s/%s/%s", gateway.Provider, gateway.ID, gateway.Mode)
	secret, err := r.secrets.GetSecret(ctx, path)
	if err != nil {
		r.logger.Warn("gateway API key not resolvable from secret backend",
			ports.String("gateway_id", gateway.ID),
			ports.String("path", path),
			ports.Err(err))
		return gateway, nil
	}

	if gateway.Mode == models.ModeTest {
		gateway.TestAPIKey = secret.Value
	} else {
		gateway.LiveAPIKey = secret.Value
	}
	return gateway, nil
}
