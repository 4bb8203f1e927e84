package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
)

func TestActiveAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		gateway models.Gateway
		want    string
		wantErr bool
	}{
		{
			name:    "test mode selects test key",
			gateway: models.Gateway{ID: "gw-1", Mode: models.ModeTest, TestAPIKey: "sk_test", LiveAPIKey: "sk_live"},
			want:    "sk_test",
		},
		{
			name:    "live mode selects live key",
			gateway: models.Gateway{ID: "gw-1", Mode: models.ModeLive, TestAPIKey: "sk_test", LiveAPIKey: "sk_live"},
			want:    "sk_live",
		},
		{
			name:    "missing selected key is a configuration error",
			gateway: models.Gateway{ID: "gw-1", Mode: models.ModeLive, TestAPIKey: "sk_test"},
			wantErr: true,
		},
		{
			name:    "other mode's key does not substitute",
			gateway: models.Gateway{ID: "gw-1", Mode: models.ModeTest, LiveAPIKey: "sk_live"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := tt.gateway.ActiveAPIKey()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorCodeConfigMissingAPIKey, domain.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestTransactionStateHelpers(t *testing.T) {
	authorized := models.Transaction{State: models.StateAuthorized, ProviderReference: "ch_1"}
	assert.True(t, authorized.CanBeSettled())
	assert.True(t, authorized.CanBeCancelled())
	assert.False(t, authorized.IsTerminal())

	noRef := models.Transaction{State: models.StateAuthorized}
	assert.False(t, noRef.CanBeSettled(), "authorization without a charge id cannot capture")
	assert.True(t, noRef.CanBeCancelled())

	for _, state := range []models.TransactionState{
		models.StateDraft, models.StateCompleted, models.StateFailed, models.StateCancelled,
	} {
		txn := models.Transaction{State: state, ProviderReference: "ch_1"}
		assert.False(t, txn.CanBeSettled(), "state %s", state)
		assert.False(t, txn.CanBeCancelled(), "state %s", state)
	}

	assert.False(t, (&models.Transaction{State: models.StateDraft}).IsTerminal())
	assert.True(t, (&models.Transaction{State: models.StateCompleted}).IsTerminal())
	assert.True(t, (&models.Transaction{State: models.StateFailed}).IsTerminal())
	assert.True(t, (&models.Transaction{State: models.StateCancelled}).IsTerminal())
}

func TestHasPaymentProfile(t *testing.T) {
	assert.True(t, (&models.Transaction{PaymentProfileID: "profile-1"}).HasPaymentProfile())
	assert.False(t, (&models.Transaction{}).HasPaymentProfile())
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"25.50", "USD", 2550},
		{"0.99", "EUR", 99},
		{"100", "USD", 10000},
		{"2550", "JPY", 2550},
		{"1000", "KRW", 1000},
		{"1.234", "BHD", 1234},
		{"5.5", "KWD", 5500},
		{"0.005", "USD", 1},
		{"-12.34", "USD", -1234},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.want, models.MinorUnits(amount, tt.currency))
		})
	}
}

func TestMinorUnitExponent(t *testing.T) {
	assert.Equal(t, int32(2), models.MinorUnitExponent("USD"))
	assert.Equal(t, int32(0), models.MinorUnitExponent("JPY"))
	assert.Equal(t, int32(3), models.MinorUnitExponent("TND"))
	assert.Equal(t, int32(2), models.MinorUnitExponent("XYZ"), "unknown currencies default to 2")
}
