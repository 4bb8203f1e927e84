package models

import "time"

// PaymentProfile is a tokenized, reusable reference to a customer's stored
// payment source with the provider. Created once by the provisioner and
// read-only afterwards.
type PaymentProfile struct {
	ID               string
	PartyID          string
	GatewayID        string
	StripeCustomerID string
	CardReference    string // provider card/source id attached to the customer
	LastFourDigits   string
	ExpiryMonth      int
	ExpiryYear       int
	CreatedAt        time.Time
}
