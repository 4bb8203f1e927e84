// Package transaction implements the payment transaction state machine:
// draft transactions move to authorized or completed through the charge
// processor, authorizations settle or cancel, and every provider round
// trip leaves one audit log entry.
//
// Provider failures during authorize, capture and settle are absorbed:
// the transaction moves to failed, the error payload is logged, and the
// call returns nil. Contract violations (wrong state, missing payment
// source, unsupported operation) are returned to the caller instead.
package transaction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/audit"
	"github.com/aroraumang/payment-gateway-stripe/pkg/observability"
	"github.com/aroraumang/payment-gateway-stripe/pkg/resilience"
)

const (
	opAuthorize = "authorize"
	opCapture   = "capture"
	opSettle    = "settle"
	opCancel    = "cancel"
)

// Service coordinates transaction state transitions against the charge
// processor and the database
type Service struct {
	db        ports.DBPort
	txns      ports.TransactionRepository
	gateways  ports.GatewayRepository
	profiles  ports.PaymentProfileRepository
	directory ports.PartyDirectory
	charges   ports.ChargeGateway
	ledger    ports.LedgerPoster
	recorder  *audit.Recorder
	logger    ports.Logger
	timeouts  *resilience.TimeoutConfig
	locks     *keyedMutex
	inFlight  ports.InFlightStore
}

// Option configures optional service collaborators
type Option func(*Service)

// WithInFlightStore adds a cross-process in-flight guard on top of the
// in-process keyed mutex
func WithInFlightStore(store ports.InFlightStore) Option {
	return func(s *Service) { s.inFlight = store }
}

// WithTimeouts overrides the default timeout hierarchy
func WithTimeouts(tc *resilience.TimeoutConfig) Option {
	return func(s *Service) { s.timeouts = tc }
}

// WithLedger sets the ledger completed transactions are posted to.
// Posting is best effort; without a ledger completed transactions are
// simply not posted.
func WithLedger(ledger ports.LedgerPoster) Option {
	return func(s *Service) { s.ledger = ledger }
}

// NewService creates the transaction service
func NewService(
	db ports.DBPort,
	txns ports.TransactionRepository,
	gateways ports.GatewayRepository,
	profiles ports.PaymentProfileRepository,
	directory ports.PartyDirectory,
	charges ports.ChargeGateway,
	recorder *audit.Recorder,
	logger ports.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		db:        db,
		txns:      txns,
		gateways:  gateways,
		profiles:  profiles,
		directory: directory,
		charges:   charges,
		recorder:  recorder,
		logger:    logger,
		timeouts:  resilience.DefaultTimeoutConfig(),
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DraftParams carries the host-supplied fields of a new transaction
type DraftParams struct {
	PartyID          string
	AddressID        string
	GatewayID        string
	PaymentProfileID string
	Amount           decimal.Decimal
	Currency         string
}

// CreateDraft persists a new transaction in draft state
func (s *Service) CreateDraft(ctx context.Context, params DraftParams) (*models.Transaction, error) {
	if params.PartyID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "party id is required")
	}
	if params.GatewayID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "gateway id is required")
	}
	if params.Currency == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "currency is required")
	}

	now := time.Now()
	txn := &models.Transaction{
		ID:               uuid.New().String(),
		PartyID:          params.PartyID,
		AddressID:        params.AddressID,
		GatewayID:        params.GatewayID,
		PaymentProfileID: params.PaymentProfileID,
		Amount:           params.Amount,
		Currency:         params.Currency,
		State:            models.StateDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()
	if err := s.txns.Create(dbCtx, s.db.GetDB(), txn); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		ports.String("transaction_id", txn.ID),
		ports.String("party_id", txn.PartyID),
		ports.String("currency", txn.Currency))

	return txn, nil
}

// Get retrieves a transaction by id
func (s *Service) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()
	return s.txns.GetByID(dbCtx, s.db.GetDB(), transactionID)
}

// ListByParty lists a party's transactions with pagination
func (s *Service) ListByParty(ctx context.Context, partyID string, limit, offset int32) ([]*models.Transaction, error) {
	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()
	return s.txns.ListByParty(dbCtx, s.db.GetDB(), partyID, limit, offset)
}

// Authorize places an authorization hold for the transaction amount.
// The charge is created with capture disabled; on success the transaction
// moves to authorized and records the provider charge id.
func (s *Service) Authorize(ctx context.Context, transactionID string, card *models.CardInfo) error {
	return s.charge(ctx, opAuthorize, transactionID, card)
}

// Capture charges the transaction amount in a single step. On success the
// transaction moves to completed and is posted to the ledger.
func (s *Service) Capture(ctx context.Context, transactionID string, card *models.CardInfo) error {
	return s.charge(ctx, opCapture, transactionID, card)
}

func (s *Service) charge(ctx context.Context, op, transactionID string, card *models.CardInfo) error {
	start := time.Now()

	release, err := s.guard(ctx, transactionID)
	if err != nil {
		return err
	}
	defer release()

	txn, apiKey, err := s.load(ctx, transactionID)
	if err != nil {
		return err
	}

	if txn.Amount.LessThanOrEqual(decimal.Zero) {
		s.logger.Warn("charge rejected locally",
			ports.String("operation", op),
			ports.String("transaction_id", txn.ID),
			ports.String("amount", txn.Amount.String()))
		err = s.transition(ctx, txn, models.StateFailed, nil, map[string]string{
			"error":  "validation_error",
			"reason": "amount must be positive",
			"amount": txn.Amount.String(),
		})
		observability.RecordChargeOperation(op, string(models.StateFailed), txn.Currency, 0, time.Since(start).Seconds())
		return err
	}

	req, err := s.buildRequest(ctx, txn, card)
	if err != nil {
		return err
	}
	req.Capture = op == opCapture

	apiCtx, cancel := s.timeouts.ExternalAPIContext(ctx)
	defer cancel()
	charge, err := s.charges.CreateCharge(apiCtx, apiKey, req)
	if err != nil {
		return s.absorb(ctx, op, txn, err, start)
	}

	success := models.StateAuthorized
	if op == opCapture {
		success = models.StateCompleted
	}

	ref := charge.ID
	if err := s.transition(ctx, txn, success, &ref, json.RawMessage(charge.Raw)); err != nil {
		return err
	}

	s.logger.Info("charge succeeded",
		ports.String("operation", op),
		ports.String("transaction_id", txn.ID),
		ports.String("charge_id", charge.ID),
		ports.Int64("amount_minor", req.AmountMinor))
	observability.RecordChargeOperation(op, string(success), txn.Currency, req.AmountMinor, time.Since(start).Seconds())

	if success == models.StateCompleted {
		s.safePost(ctx, txn)
	}
	return nil
}

// Settle captures a previously authorized charge for the transaction
// amount. Only authorized transactions holding a provider reference can
// settle; anything else is a contract violation.
func (s *Service) Settle(ctx context.Context, transactionID string) error {
	start := time.Now()

	release, err := s.guard(ctx, transactionID)
	if err != nil {
		return err
	}
	defer release()

	txn, apiKey, err := s.load(ctx, transactionID)
	if err != nil {
		return err
	}

	if !txn.CanBeSettled() {
		return domain.NewDomainError(domain.ErrorCodeTxnInvalidState,
			"only authorized transactions can be settled").
			WithDetail("transaction_id", txn.ID).
			WithDetail("state", string(txn.State))
	}

	apiCtx, cancel := s.timeouts.ExternalAPIContext(ctx)
	defer cancel()
	amountMinor := models.MinorUnits(txn.Amount, txn.Currency)
	charge, err := s.charges.CaptureCharge(apiCtx, apiKey, txn.ProviderReference, amountMinor)
	if err != nil {
		return s.absorb(ctx, opSettle, txn, err, start)
	}

	ref := charge.ID
	if err := s.transition(ctx, txn, models.StateCompleted, &ref, json.RawMessage(charge.Raw)); err != nil {
		return err
	}

	s.logger.Info("charge settled",
		ports.String("transaction_id", txn.ID),
		ports.String("charge_id", charge.ID),
		ports.Int64("amount_minor", amountMinor))
	observability.RecordChargeOperation(opSettle, string(models.StateCompleted), txn.Currency, amountMinor, time.Since(start).Seconds())

	s.safePost(ctx, txn)
	return nil
}

// Cancel voids an authorization by refunding its charge. Cancelling any
// other state is a contract violation. A provider failure leaves the
// transaction authorized; only the error payload is logged.
func (s *Service) Cancel(ctx context.Context, transactionID string) error {
	start := time.Now()

	release, err := s.guard(ctx, transactionID)
	if err != nil {
		return err
	}
	defer release()

	txn, apiKey, err := s.load(ctx, transactionID)
	if err != nil {
		return err
	}

	if !txn.CanBeCancelled() {
		return domain.NewDomainError(domain.ErrorCodeTxnInvalidState,
			"only authorized transactions can be cancelled").
			WithDetail("transaction_id", txn.ID).
			WithDetail("state", string(txn.State))
	}

	apiCtx, cancel := s.timeouts.ExternalAPIContext(ctx)
	defer cancel()
	refund, err := s.charges.RefundCharge(apiCtx, apiKey, txn.ProviderReference)
	if err != nil {
		pe, ok := ports.AsProviderError(err)
		if !ok {
			return err
		}
		s.recorder.Record(ctx, s.db.GetDB(), txn.ID, json.RawMessage(pe.RawBody))
		s.logger.Warn("cancel rejected by provider",
			ports.String("transaction_id", txn.ID),
			ports.String("provider_error", string(pe.Type)),
			ports.String("provider_message", pe.Message))
		observability.RecordChargeOperation(opCancel, string(txn.State), txn.Currency, 0, time.Since(start).Seconds())
		return nil
	}

	if err := s.transition(ctx, txn, models.StateCancelled, nil, json.RawMessage(refund.Raw)); err != nil {
		return err
	}

	s.logger.Info("charge cancelled",
		ports.String("transaction_id", txn.ID),
		ports.String("refund_id", refund.ID))
	observability.RecordChargeOperation(opCancel, string(models.StateCancelled), txn.Currency, refund.Amount, time.Since(start).Seconds())
	return nil
}

// Retry is not supported by this provider
func (s *Service) Retry(ctx context.Context, transactionID string) error {
	return domain.NewDomainError(domain.ErrorCodeOpNotSupported,
		"retry is not supported for stripe transactions")
}

// UpdateStatus is not supported by this provider
func (s *Service) UpdateStatus(ctx context.Context, transactionID string) error {
	return domain.NewDomainError(domain.ErrorCodeOpNotSupported,
		"status refresh is not supported for stripe transactions")
}

// guard serializes operations on a transaction. The keyed mutex covers
// this process; when an in-flight store is configured it also covers
// concurrent processes.
func (s *Service) guard(ctx context.Context, transactionID string) (func(), error) {
	unlock := s.locks.Lock(transactionID)

	if s.inFlight == nil {
		return unlock, nil
	}

	acquired, err := s.inFlight.TryAcquire(ctx, transactionID)
	if err != nil {
		unlock()
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "in-flight guard unavailable", err)
	}
	if !acquired {
		unlock()
		return nil, domain.NewDomainError(domain.ErrorCodeTxnInFlight,
			"another operation on this transaction is in flight").
			WithDetail("transaction_id", transactionID)
	}

	return func() {
		if err := s.inFlight.Release(ctx, transactionID); err != nil {
			s.logger.Warn("in-flight guard release failed",
				ports.String("transaction_id", transactionID),
				ports.Err(err))
		}
		unlock()
	}, nil
}

// load fetches the transaction and resolves the API key of its gateway
func (s *Service) load(ctx context.Context, transactionID string) (*models.Transaction, string, error) {
	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()

	txn, err := s.txns.GetByID(dbCtx, s.db.GetDB(), transactionID)
	if err != nil {
		return nil, "", err
	}

	gateway, err := s.gateways.GetByID(dbCtx, s.db.GetDB(), txn.GatewayID)
	if err != nil {
		return nil, "", err
	}

	apiKey, err := gateway.ActiveAPIKey()
	if err != nil {
		return nil, "", err
	}

	return txn, apiKey, nil
}

// buildRequest resolves the payment source and assembles the charge
// payload. Party and address are looked up only for the raw-card path,
// where they feed the owner name fallback and the billing address block.
func (s *Service) buildRequest(ctx context.Context, txn *models.Transaction, card *models.CardInfo) (*ports.ChargeRequest, error) {
	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()

	var profile *models.PaymentProfile
	if card == nil && txn.HasPaymentProfile() {
		var err error
		profile, err = s.profiles.GetByID(dbCtx, s.db.GetDB(), txn.PaymentProfileID)
		if err != nil {
			return nil, err
		}
	}

	var address *models.Address
	var party *models.Party
	if card != nil {
		var err error
		party, err = s.directory.GetParty(dbCtx, txn.PartyID)
		if err != nil {
			return nil, err
		}
		if txn.AddressID != "" {
			address, err = s.directory.GetAddress(dbCtx, txn.AddressID)
			if err != nil {
				return nil, err
			}
		}
	}

	return BuildChargeRequest(txn, profile, card, address, party)
}

// absorb handles a provider failure on the absorbed path: the transaction
// moves to failed and the provider's error payload becomes the audit
// entry. Non-provider errors propagate unchanged.
func (s *Service) absorb(ctx context.Context, op string, txn *models.Transaction, err error, start time.Time) error {
	pe, ok := ports.AsProviderError(err)
	if !ok {
		return err
	}

	s.logger.Warn("charge failed",
		ports.String("operation", op),
		ports.String("transaction_id", txn.ID),
		ports.String("provider_error", string(pe.Type)),
		ports.String("provider_code", pe.Code),
		ports.String("provider_message", pe.Message))

	terr := s.transition(ctx, txn, models.StateFailed, nil, json.RawMessage(pe.RawBody))
	observability.RecordChargeOperation(op, string(models.StateFailed), txn.Currency, 0, time.Since(start).Seconds())
	return terr
}

// transition commits the state change and its audit entry in one database
// transaction. The audit write is best effort inside the recorder, so a
// lost entry cannot roll back the state.
func (s *Service) transition(ctx context.Context, txn *models.Transaction, state models.TransactionState, providerReference *string, payload interface{}) error {
	dbCtx, cancel := s.timeouts.DatabaseContext(ctx)
	defer cancel()

	err := s.db.WithTransaction(dbCtx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.txns.UpdateState(ctx, tx, txn.ID, state, providerReference); err != nil {
			return err
		}
		s.recorder.Record(ctx, tx, txn.ID, payload)
		return nil
	})
	if err != nil {
		return err
	}

	txn.State = state
	if providerReference != nil {
		txn.ProviderReference = *providerReference
	}
	return nil
}

// safePost mirrors the host ledger contract: completed transactions are
// posted, posting failures are logged and never raised
func (s *Service) safePost(ctx context.Context, txn *models.Transaction) {
	if s.ledger == nil {
		return
	}

	postCtx, cancel := s.timeouts.NonCriticalContext(ctx)
	defer cancel()
	if err := s.ledger.Post(postCtx, txn); err != nil {
		s.logger.Warn("ledger post failed",
			ports.String("transaction_id", txn.ID),
			ports.Err(err))
	}
}
