package profile_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/profile"
)

// MockDBPort mocks the database port
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockPaymentProfileRepository mocks the payment profile repository
type MockPaymentProfileRepository struct {
	mock.Mock
}

func (m *MockPaymentProfileRepository) Create(ctx context.Context, tx ports.DBTX, prof *models.PaymentProfile) error {
	args := m.Called(ctx, tx, prof)
	return args.Error(0)
}

func (m *MockPaymentProfileRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.PaymentProfile, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentProfile), args.Error(1)
}

func (m *MockPaymentProfileRepository) FindCustomerID(ctx context.Context, db ports.DBTX, partyID, gatewayID string) (string, error) {
	args := m.Called(ctx, db, partyID, gatewayID)
	return args.String(0), args.Error(1)
}

// MockGatewayRepository mocks the gateway repository
type MockGatewayRepository struct {
	mock.Mock
}

func (m *MockGatewayRepository) Create(ctx context.Context, tx ports.DBTX, gateway *models.Gateway) error {
	args := m.Called(ctx, tx, gateway)
	return args.Error(0)
}

func (m *MockGatewayRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Gateway, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gateway), args.Error(1)
}

// MockPartyDirectory mocks the host party directory
type MockPartyDirectory struct {
	mock.Mock
}

func (m *MockPartyDirectory) GetParty(ctx context.Context, id string) (*models.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *MockPartyDirectory) GetAddress(ctx context.Context, id string) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

// MockChargeGateway mocks the charge processor API
type MockChargeGateway struct {
	mock.Mock
}

func (m *MockChargeGateway) CreateCharge(ctx context.Context, apiKey string, req *ports.ChargeRequest) (*ports.Charge, error) {
	args := m.Called(ctx, apiKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Charge), args.Error(1)
}

func (m *MockChargeGateway) CaptureCharge(ctx context.Context, apiKey, chargeID string, amountMinor int64) (*ports.Charge, error) {
	args := m.Called(ctx, apiKey, chargeID, amountMinor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Charge), args.Error(1)
}

func (m *MockChargeGateway) RefundCharge(ctx context.Context, apiKey, chargeID string) (*ports.Refund, error) {
	args := m.Called(ctx, apiKey, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Refund), args.Error(1)
}

func (m *MockChargeGateway) CreateCustomer(ctx context.Context, apiKey string, card *ports.CardSource, description, email string) (*ports.Customer, error) {
	args := m.Called(ctx, apiKey, card, description, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Customer), args.Error(1)
}

func (m *MockChargeGateway) CreateCustomerSource(ctx context.Context, apiKey, customerID string, card *ports.CardSource) (*ports.Card, error) {
	args := m.Called(ctx, apiKey, customerID, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Card), args.Error(1)
}

// MockLogger mocks the logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Info(msg string, fields ...ports.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...ports.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...ports.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Debug(msg string, fields ...ports.Field) {
	m.Called(msg, fields)
}

type fixture struct {
	db          *MockDBPort
	profiles    *MockPaymentProfileRepository
	gateways    *MockGatewayRepository
	directory   *MockPartyDirectory
	charges     *MockChargeGateway
	provisioner *profile.Provisioner
}

func newFixture() *fixture {
	f := &fixture{
		db:        new(MockDBPort),
		profiles:  new(MockPaymentProfileRepository),
		gateways:  new(MockGatewayRepository),
		directory: new(MockPartyDirectory),
		charges:   new(MockChargeGateway),
	}
	logger := new(MockLogger)
	logger.On("Info", mock.Anything, mock.Anything).Return().Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Return().Maybe()
	f.provisioner = profile.NewProvisioner(f.db, f.profiles, f.gateways,
		f.directory, f.charges, logger)
	return f
}

func testGateway() *models.Gateway {
	return &models.Gateway{
		ID:         "gw-1",
		Provider:   "stripe",
		Mode:       models.ModeTest,
		TestAPIKey: "sk_test_123",
	}
}

func testCard() *models.CardInfo {
	return &models.CardInfo{
		Number:       "4242424242424242",
		ExpiryMonth:  12,
		ExpiryYear:   2030,
		SecurityCode: "123",
	}
}

func TestProvision_NewCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	party := &models.Party{ID: "party-1", Name: "Sharoon Thomas", Email: "st@example.com"}

	f.directory.On("GetParty", mock.Anything, "party-1").Return(party, nil)
	f.gateways.On("GetByID", mock.Anything, mock.Anything, "gw-1").Return(testGateway(), nil)
	f.profiles.On("FindCustomerID", mock.Anything, mock.Anything, "party-1", "gw-1").
		Return("", nil)

	customer := &ports.Customer{
		ID: "cus_new",
		DefaultSource: &ports.Card{
			ID:       "card_new",
			Last4:    "4242",
			ExpMonth: 12,
			ExpYear:  2030,
		},
	}
	f.charges.On("CreateCustomer", mock.Anything, "sk_test_123",
		mock.MatchedBy(func(src *ports.CardSource) bool {
			return src.Number == "4242424242424242" && src.Name == "Sharoon Thomas"
		}),
		"Sharoon Thomas", "st@example.com").
		Return(customer, nil)

	f.profiles.On("Create", mock.Anything, mock.Anything,
		mock.MatchedBy(func(prof *models.PaymentProfile) bool {
			return prof.PartyID == "party-1" &&
				prof.GatewayID == "gw-1" &&
				prof.StripeCustomerID == "cus_new" &&
				prof.CardReference == "card_new" &&
				prof.LastFourDigits == "4242" &&
				prof.ExpiryMonth == 12 &&
				prof.ExpiryYear == 2030
		})).Return(nil)

	prof, err := f.provisioner.Provision(ctx, "party-1", "gw-1", testCard())

	require.NoError(t, err)
	assert.NotEmpty(t, prof.ID)
	assert.Equal(t, "cus_new", prof.StripeCustomerID)
	f.charges.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.charges.AssertNotCalled(t, "CreateCustomerSource", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_ExistingCustomerAttachesSource(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	party := &models.Party{ID: "party-1", Name: "Sharoon Thomas"}

	f.directory.On("GetParty", mock.Anything, "party-1").Return(party, nil)
	f.gateways.On("GetByID", mock.Anything, mock.Anything, "gw-1").Return(testGateway(), nil)
	f.profiles.On("FindCustomerID", mock.Anything, mock.Anything, "party-1", "gw-1").
		Return("cus_existing", nil)

	f.charges.On("CreateCustomerSource", mock.Anything, "sk_test_123", "cus_existing", mock.Anything).
		Return(&ports.Card{ID: "card_extra", Last4: "4242", ExpMonth: 12, ExpYear: 2030}, nil)

	f.profiles.On("Create", mock.Anything, mock.Anything,
		mock.MatchedBy(func(prof *models.PaymentProfile) bool {
			return prof.StripeCustomerID == "cus_existing" && prof.CardReference == "card_extra"
		})).Return(nil)

	prof, err := f.provisioner.Provision(ctx, "party-1", "gw-1", testCard())

	require.NoError(t, err)
	assert.Equal(t, "cus_existing", prof.StripeCustomerID)
	f.charges.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_ProviderErrorCarriesMessage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.directory.On("GetParty", mock.Anything, "party-1").
		Return(&models.Party{ID: "party-1", Name: "Sharoon Thomas"}, nil)
	f.gateways.On("GetByID", mock.Anything, mock.Anything, "gw-1").Return(testGateway(), nil)
	f.profiles.On("FindCustomerID", mock.Anything, mock.Anything, "party-1", "gw-1").
		Return("", nil)

	providerErr := &ports.ProviderError{
		Type:    ports.ProviderErrCard,
		Code:    "incorrect_number",
		Message: "Your card number is incorrect.",
	}
	f.charges.On("CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, providerErr)

	prof, err := f.provisioner.Provision(ctx, "party-1", "gw-1", testCard())

	require.Error(t, err)
	assert.Nil(t, prof)
	assert.Equal(t, domain.ErrorCodeProfileCreationFailed, domain.GetErrorCode(err))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Your card number is incorrect.", derr.Details["provider_message"])
	f.profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_MissingCardReference(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.directory.On("GetParty", mock.Anything, "party-1").
		Return(&models.Party{ID: "party-1", Name: "Sharoon Thomas"}, nil)
	f.gateways.On("GetByID", mock.Anything, mock.Anything, "gw-1").Return(testGateway(), nil)
	f.profiles.On("FindCustomerID", mock.Anything, mock.Anything, "party-1", "gw-1").
		Return("", nil)
	f.charges.On("CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&ports.Customer{ID: "cus_new"}, nil)

	prof, err := f.provisioner.Provision(ctx, "party-1", "gw-1", testCard())

	require.Error(t, err)
	assert.Nil(t, prof)
	assert.Equal(t, domain.ErrorCodeProfileCreationFailed, domain.GetErrorCode(err))
}

func TestProvision_MissingAPIKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	gateway := testGateway()
	gateway.TestAPIKey = ""

	f.directory.On("GetParty", mock.Anything, "party-1").
		Return(&models.Party{ID: "party-1"}, nil)
	f.gateways.On("GetByID", mock.Anything, mock.Anything, "gw-1").Return(gateway, nil)

	_, err := f.provisioner.Provision(ctx, "party-1", "gw-1", testCard())

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeConfigMissingAPIKey, domain.GetErrorCode(err))
	f.charges.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
