package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionState represents the lifecycle state of a payment transaction
type TransactionState string

const (
	StateDraft      TransactionState = "draft"
	StateAuthorized TransactionState = "authorized"
	StateCompleted  TransactionState = "completed"
	StateFailed     TransactionState = "failed"
	StateCancelled  TransactionState = "cancel"
)

// Transaction represents a payment transaction against a configured gateway.
// Amount is a currency-scaled decimal; provider-facing amounts are converted
// to minor units via MinorUnits.
type Transaction struct {
	ID                string
	PartyID           string
	AddressID         string
	GatewayID         string
	PaymentProfileID  string // empty when the charge uses raw card data
	Amount            decimal.Decimal
	Currency          string
	State             TransactionState
	ProviderReference string // external charge id, set on successful authorize/capture
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsTerminal reports whether no further provider operations apply.
// Cancel is reachable only from authorized, so authorized is not terminal.
func (t *Transaction) IsTerminal() bool {
	return t.State == StateCompleted || t.State == StateFailed || t.State == StateCancelled
}

// CanBeSettled returns true if the transaction holds an authorization that
// can still be captured
func (t *Transaction) CanBeSettled() bool {
	return t.State == StateAuthorized && t.ProviderReference != ""
}

// CanBeCancelled returns true if the transaction can be cancelled
func (t *Transaction) CanBeCancelled() bool {
	return t.State == StateAuthorized
}

// HasPaymentProfile returns true if the transaction references a stored
// payment profile
func (t *Transaction) HasPaymentProfile() bool {
	return t.PaymentProfileID != ""
}
