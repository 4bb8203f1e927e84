// Package profile exchanges raw card data for a stored payment profile.
// The card is tokenized with the provider and only the resulting
// references (customer id, card id, last4, expiry) are persisted.
package profile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/pkg/observability"
	"github.com/aroraumang/payment-gateway-stripe/pkg/resilience"
)

const providerName = "stripe"

// Provisioner creates payment profiles against the charge processor
type Provisioner struct {
	db        ports.DBPort
	profiles  ports.PaymentProfileRepository
	gateways  ports.GatewayRepository
	directory ports.PartyDirectory
	charges   ports.ChargeGateway
	logger    ports.Logger
	timeouts  *resilience.TimeoutConfig
}

// NewProvisioner creates a profile provisioner
func NewProvisioner(
	db ports.DBPort,
	profiles ports.PaymentProfileRepository,
	gateways ports.GatewayRepository,
	directory ports.PartyDirectory,
	charges ports.ChargeGateway,
	logger ports.Logger,
) *Provisioner {
	return &Provisioner{
		db:        db,
		profiles:  profiles,
		gateways:  gateways,
		directory: directory,
		charges:   charges,
		logger:    logger,
		timeouts:  resilience.DefaultTimeoutConfig(),
	}
}

// WithTimeouts overrides the default timeout hierarchy
func (p *Provisioner) WithTimeouts(tc *resilience.TimeoutConfig) *Provisioner {
	p.timeouts = tc
	return p
}

// Provision tokenizes the card and persists a payment profile for the
// party. When the party already has a provider customer on this gateway
// the card is attached to it as a new source; otherwise a new customer is
// created with the card as its default source. Provider failures propagate
// as profile creation errors carrying the provider's message.
func (p *Provisioner) Provision(ctx context.Context, partyID, gatewayID string, card *models.CardInfo) (*models.PaymentProfile, error) {
	dbCtx, cancel := p.timeouts.DatabaseContext(ctx)
	defer cancel()

	party, err := p.directory.GetParty(dbCtx, partyID)
	if err != nil {
		return nil, err
	}

	gateway, err := p.gateways.GetByID(dbCtx, p.db.GetDB(), gatewayID)
	if err != nil {
		return nil, err
	}
	apiKey, err := gateway.ActiveAPIKey()
	if err != nil {
		return nil, err
	}

	customerID, err := p.profiles.FindCustomerID(dbCtx, p.db.GetDB(), partyID, gatewayID)
	if err != nil {
		return nil, err
	}

	source := &ports.CardSource{
		Number:      card.Number,
		ExpiryMonth: card.ExpiryMonth,
		ExpiryYear:  card.ExpiryYear,
		CVC:         card.SecurityCode,
		Name:        ownerName(card, party),
	}
	if addr := card.Address; addr != nil {
		source.AddressLine1 = addr.Street
		source.AddressLine2 = addr.StreetBis
		source.City = addr.City
		source.Zip = addr.Zip
		source.State = addr.Subdivision
		source.Country = addr.Country
	}

	apiCtx, cancel := p.timeouts.ExternalAPIContext(ctx)
	defer cancel()

	var providerCard *ports.Card
	if customerID != "" {
		providerCard, err = p.charges.CreateCustomerSource(apiCtx, apiKey, customerID, source)
	} else {
		var customer *ports.Customer
		customer, err = p.charges.CreateCustomer(apiCtx, apiKey, source, party.Name, party.Email)
		if err == nil {
			customerID = customer.ID
			providerCard = customer.DefaultSource
		}
	}
	if err != nil {
		observability.RecordProfileProvisioned(providerName, "failed")
		return nil, p.creationError(partyID, err)
	}
	if providerCard == nil {
		observability.RecordProfileProvisioned(providerName, "failed")
		return nil, domain.NewDomainError(domain.ErrorCodeProfileCreationFailed,
			"provider returned no card reference").
			WithDetail("party_id", partyID)
	}

	prof := &models.PaymentProfile{
		ID:               uuid.New().String(),
		PartyID:          partyID,
		GatewayID:        gatewayID,
		StripeCustomerID: customerID,
		CardReference:    providerCard.ID,
		LastFourDigits:   providerCard.Last4,
		ExpiryMonth:      providerCard.ExpMonth,
		ExpiryYear:       providerCard.ExpYear,
		CreatedAt:        time.Now(),
	}

	persistCtx, cancel := p.timeouts.DatabaseContext(ctx)
	defer cancel()
	if err := p.profiles.Create(persistCtx, p.db.GetDB(), prof); err != nil {
		return nil, err
	}

	p.logger.Info("payment profile created",
		ports.String("profile_id", prof.ID),
		ports.String("party_id", partyID),
		ports.String("customer_id", customerID),
		ports.String("last4", prof.LastFourDigits))
	observability.RecordProfileProvisioned(providerName, "created")

	return prof, nil
}

// creationError wraps a provider failure, keeping the provider's own
// message visible to the caller
func (p *Provisioner) creationError(partyID string, err error) error {
	derr := domain.WrapError(domain.ErrorCodeProfileCreationFailed,
		"could not create payment profile", err).
		WithDetail("party_id", partyID)
	if pe, ok := ports.AsProviderError(err); ok {
		derr = derr.WithDetail("provider_message", pe.Message)
	}
	return derr
}

func ownerName(card *models.CardInfo, party *models.Party) string {
	if card.OwnerName != "" {
		return card.OwnerName
	}
	if card.Address != nil && card.Address.Name != "" {
		return card.Address.Name
	}
	return party.Name
}
