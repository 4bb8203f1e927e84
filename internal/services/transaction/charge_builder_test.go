package transaction_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/transaction"
)

func builderTransaction(amount string, currency string) *models.Transaction {
	return &models.Transaction{
		ID:        "txn-1",
		PartyID:   "party-1",
		GatewayID: "gw-1",
		Amount:    decimal.RequireFromString(amount),
		Currency:  currency,
		State:     models.StateDraft,
	}
}

func TestBuildChargeRequest_MinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"two decimal currency", "25.50", "USD", 2550},
		{"zero decimal currency", "2550", "JPY", 2550},
		{"three decimal currency", "1.234", "BHD", 1234},
		{"rounds half away from zero", "0.005", "USD", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := builderTransaction(tt.amount, tt.currency)
			card := &models.CardInfo{Number: "4242424242424242", ExpiryMonth: 1, ExpiryYear: 2030}

			req, err := transaction.BuildChargeRequest(txn, nil, card, nil, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, req.AmountMinor)
		})
	}
}

func TestBuildChargeRequest_CurrencyIsLowercased(t *testing.T) {
	txn := builderTransaction("10", "USD")
	card := &models.CardInfo{Number: "4242424242424242"}

	req, err := transaction.BuildChargeRequest(txn, nil, card, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "usd", req.Currency)
}

func TestBuildChargeRequest_OwnerNameFallback(t *testing.T) {
	txn := builderTransaction("10", "USD")
	party := &models.Party{ID: "party-1", Name: "Party Name"}
	address := &models.Address{ID: "addr-1", Name: "Address Name"}

	tests := []struct {
		name    string
		card    *models.CardInfo
		address *models.Address
		party   *models.Party
		want    string
	}{
		{"explicit owner wins", &models.CardInfo{OwnerName: "Owner Name"}, address, party, "Owner Name"},
		{"address name next", &models.CardInfo{}, address, party, "Address Name"},
		{"party name last", &models.CardInfo{}, nil, party, "Party Name"},
		{"empty when nothing resolves", &models.CardInfo{}, nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := transaction.BuildChargeRequest(txn, nil, tt.card, tt.address, tt.party)

			require.NoError(t, err)
			require.NotNil(t, req.Card)
			assert.Equal(t, tt.want, req.Card.Name)
		})
	}
}

func TestBuildChargeRequest_CardAddressWinsOverBilling(t *testing.T) {
	txn := builderTransaction("10", "USD")
	card := &models.CardInfo{
		Number: "4242424242424242",
		Address: &models.Address{
			Street:      "1 Card St",
			City:        "Cardville",
			Zip:         "11111",
			Subdivision: "CA",
			Country:     "US",
		},
	}
	billing := &models.Address{Street: "2 Billing Ave", City: "Billtown"}

	req, err := transaction.BuildChargeRequest(txn, nil, card, billing, nil)

	require.NoError(t, err)
	assert.Equal(t, "1 Card St", req.Card.AddressLine1)
	assert.Equal(t, "Cardville", req.Card.City)
	assert.Equal(t, "11111", req.Card.Zip)
	assert.Equal(t, "CA", req.Card.State)
	assert.Equal(t, "US", req.Card.Country)
}

func TestBuildChargeRequest_NoAddressLeavesFieldsEmpty(t *testing.T) {
	txn := builderTransaction("10", "USD")
	card := &models.CardInfo{Number: "4242424242424242"}

	req, err := transaction.BuildChargeRequest(txn, nil, card, nil, nil)

	require.NoError(t, err)
	assert.Empty(t, req.Card.AddressLine1)
	assert.Empty(t, req.Card.City)
	assert.Empty(t, req.Card.Country)
}

func TestBuildChargeRequest_ProfileSendsReferencesOnly(t *testing.T) {
	txn := builderTransaction("10", "USD")
	profile := &models.PaymentProfile{
		ID:               "profile-1",
		StripeCustomerID: "cus_123",
		CardReference:    "card_456",
	}

	req, err := transaction.BuildChargeRequest(txn, profile, nil, nil, nil)

	require.NoError(t, err)
	assert.Nil(t, req.Card)
	assert.Equal(t, "cus_123", req.CustomerID)
	assert.Equal(t, "card_456", req.CardRef)
}

func TestBuildChargeRequest_CardWinsOverProfile(t *testing.T) {
	txn := builderTransaction("10", "USD")
	profile := &models.PaymentProfile{StripeCustomerID: "cus_123", CardReference: "card_456"}
	card := &models.CardInfo{Number: "4242424242424242"}

	req, err := transaction.BuildChargeRequest(txn, profile, card, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, req.Card)
	assert.Empty(t, req.CustomerID)
}

func TestBuildChargeRequest_NoSource(t *testing.T) {
	txn := builderTransaction("10", "USD")

	req, err := transaction.BuildChargeRequest(txn, nil, nil, nil, nil)

	require.Error(t, err)
	assert.Nil(t, req)
	assert.Equal(t, domain.ErrorCodeTxnNoPaymentSource, domain.GetErrorCode(err))
}
