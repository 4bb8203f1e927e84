package models

import (
	"fmt"
	"time"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
)

// GatewayMode selects which API key a gateway uses at charge time
type GatewayMode string

const (
	ModeTest GatewayMode = "test"
	ModeLive GatewayMode = "live"
)

// Gateway holds provider credentials for one configured payment gateway.
// Records are created by an administrator and are read-only at charge time.
type Gateway struct {
	ID         string
	Provider   string // e.g. "stripe"
	Mode       GatewayMode
	TestAPIKey string
	LiveAPIKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActiveAPIKey returns the API key matching the gateway mode: the test key
// when the gateway runs in test mode, the live key otherwise. An empty
// selected key is a configuration error.
func (g *Gateway) ActiveAPIKey() (string, error) {
	key := g.LiveAPIKey
	if g.Mode == ModeTest {
		key = g.TestAPIKey
	}
	if key == "" {
		return "", domain.NewDomainError(domain.ErrorCodeConfigMissingAPIKey,
			fmt.Sprintf("no %s API key configured for gateway %s", g.Mode, g.ID))
	}
	return key, nil
}
