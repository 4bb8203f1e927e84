package ports

import (
	"context"
	"errors"
	"fmt"
)

// ProviderErrorType classifies provider failures the way the charge API
// reports them. All five types receive the same local handling during
// transaction operations (state failed, logged); during profile
// provisioning they propagate to the caller.
type ProviderErrorType string

const (
	ProviderErrCard           ProviderErrorType = "card_error"
	ProviderErrInvalidRequest ProviderErrorType = "invalid_request_error"
	ProviderErrAuthentication ProviderErrorType = "authentication_error"
	ProviderErrConnection     ProviderErrorType = "api_connection_error"
	ProviderErrGeneric        ProviderErrorType = "api_error"
)

// ProviderError is a failure reported by (or on the way to) the charge
// processor. RawBody carries the serialized error payload for the audit
// trail.
type ProviderError struct {
	Type    ProviderErrorType
	Code    string // provider error code, e.g. "card_declined"
	Message string
	RawBody []byte
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AsProviderError extracts a ProviderError from an error chain
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CardSource is the raw card block of a charge or customer payload.
// Address fields are optional; empty values are omitted on the wire.
type CardSource struct {
	Number       string
	ExpiryMonth  int
	ExpiryYear   int
	CVC          string
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	Zip          string
	State        string
	Country      string
}

// ChargeRequest is the payload for creating a charge. Exactly one of Card
// or CustomerID+CardRef is set; the charge builder enforces that.
type ChargeRequest struct {
	AmountMinor int64
	Currency    string // lower case ISO 4217
	Capture     bool
	Card        *CardSource
	CustomerID  string
	CardRef     string
}

// Charge is the provider-side record of a payment attempt
type Charge struct {
	ID       string
	Amount   int64
	Currency string
	Captured bool
	Refunded bool
	Status   string
	Raw      []byte // full serialized response, recorded in the audit log
}

// Refund is the provider-side record of a refund against a charge
type Refund struct {
	ID       string
	ChargeID string
	Amount   int64
	Raw      []byte
}

// Customer is a provider-side customer holding stored payment sources
type Customer struct {
	ID            string
	DefaultSource *Card
	Raw           []byte
}

// Card is a tokenized card attached to a provider customer
type Card struct {
	ID       string
	Last4    string
	ExpMonth int
	ExpYear  int
	Brand    string
	Raw      []byte
}

// ChargeGateway defines the charge-processor API surface the engine uses.
// The API key is passed per call because it is scoped to the gateway record
// driving the operation, not to the client. All failures are reported as
// *ProviderError; connectivity problems map to ProviderErrConnection.
type ChargeGateway interface {
	// CreateCharge creates a charge, authorization-only when Capture is false
	CreateCharge(ctx context.Context, apiKey string, req *ChargeRequest) (*Charge, error)

	// CaptureCharge captures a previously authorized charge for the given
	// minor-unit amount
	CaptureCharge(ctx context.Context, apiKey, chargeID string, amountMinor int64) (*Charge, error)

	// RefundCharge refunds/voids a charge in full
	RefundCharge(ctx context.Context, apiKey, chargeID string) (*Refund, error)

	// CreateCustomer creates a customer with the card as default source
	CreateCustomer(ctx context.Context, apiKey string, card *CardSource, description, email string) (*Customer, error)

	// CreateCustomerSource attaches a new card to an existing customer
	CreateCustomerSource(ctx context.Context, apiKey, customerID string, card *CardSource) (*Card, error)
}
