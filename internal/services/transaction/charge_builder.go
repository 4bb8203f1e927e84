package transaction

import (
	"strings"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// BuildChargeRequest assembles the provider payload for a transaction.
// Pure: no I/O, no clock, no mutation of its inputs.
//
// The payment source is resolved in priority order: raw card data when
// supplied, otherwise the transaction's stored payment profile. With a
// card, the owner name falls back through the billing address name to the
// party name, and address fields are copied only when present. With a
// profile, only the provider's customer and card references are sent,
// never card data. A transaction with neither source cannot be charged.
func BuildChargeRequest(txn *models.Transaction, profile *models.PaymentProfile, card *models.CardInfo, address *models.Address, party *models.Party) (*ports.ChargeRequest, error) {
	req := &ports.ChargeRequest{
		AmountMinor: models.MinorUnits(txn.Amount, txn.Currency),
		Currency:    strings.ToLower(txn.Currency),
	}

	switch {
	case card != nil:
		src := &ports.CardSource{
			Number:      card.Number,
			ExpiryMonth: card.ExpiryMonth,
			ExpiryYear:  card.ExpiryYear,
			CVC:         card.SecurityCode,
			Name:        ownerName(card, address, party),
		}
		applyAddress(src, card, address)
		req.Card = src

	case profile != nil:
		req.CustomerID = profile.StripeCustomerID
		req.CardRef = profile.CardReference

	default:
		return nil, domain.NewDomainError(domain.ErrorCodeTxnNoPaymentSource,
			"transaction has neither card data nor a payment profile").
			WithDetail("transaction_id", txn.ID)
	}

	return req, nil
}

// ownerName resolves the cardholder name: explicit owner, then the billing
// address contact name, then the party name
func ownerName(card *models.CardInfo, address *models.Address, party *models.Party) string {
	if card.OwnerName != "" {
		return card.OwnerName
	}
	if address != nil && address.Name != "" {
		return address.Name
	}
	if party != nil {
		return party.Name
	}
	return ""
}

// applyAddress copies billing address fields onto the card source. The
// address attached to the card wins over the transaction's billing address.
func applyAddress(src *ports.CardSource, card *models.CardInfo, address *models.Address) {
	addr := card.Address
	if addr == nil {
		addr = address
	}
	if addr == nil {
		return
	}

	src.AddressLine1 = addr.Street
	src.AddressLine2 = addr.StreetBis
	src.City = addr.City
	src.Zip = addr.Zip
	src.State = addr.Subdivision
	src.Country = addr.Country
}
