package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// PaymentProfileRepository implements ports.PaymentProfileRepository with pgx
type PaymentProfileRepository struct {
	db ports.DBPort
}

// NewPaymentProfileRepository creates a new payment profile repository
func NewPaymentProfileRepository(db ports.DBPort) *PaymentProfileRepository {
	return &PaymentProfileRepository{db: db}
}

func (r *PaymentProfileRepository) dbtx(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

// Create persists a new payment profile
func (r *PaymentProfileRepository) Create(ctx context.Context, tx ports.DBTX, profile *models.PaymentProfile) error {
	_, err := r.dbtx(tx).Exec(ctx, `
		INSERT INTO payment_profiles (
			id, party_id, gateway_id, stripe_customer_id, card_reference,
			last_four_digits, expiry_month, expiry_year, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		profile.ID, profile.PartyID, profile.GatewayID,
		nullText(profile.StripeCustomerID), profile.CardReference,
		nullText(profile.LastFourDigits), profile.ExpiryMonth, profile.ExpiryYear,
	)
	if err != nil {
		return fmt.Errorf("create payment profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by its ID
func (r *PaymentProfileRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.PaymentProfile, error) {
	var (
		profile    models.PaymentProfile
		customerID pgtype.Text
		lastFour   pgtype.Text
	)
	err := r.dbtx(db).QueryRow(ctx, `
		SELECT id, party_id, gateway_id, stripe_customer_id, card_reference,
		       last_four_digits, expiry_month, expiry_year, created_at
		FROM payment_profiles WHERE id = $1`, id).
		Scan(&profile.ID, &profile.PartyID, &profile.GatewayID, &customerID,
			&profile.CardReference, &lastFour, &profile.ExpiryMonth,
			&profile.ExpiryYear, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeProfileNotFound,
				"payment profile not found").WithDetail("profile_id", id)
		}
		return nil, fmt.Errorf("get payment profile by id: %w", err)
	}
	profile.StripeCustomerID = customerID.String
	profile.LastFourDigits = lastFour.String
	return &profile, nil
}

// FindCustomerID returns the provider customer id recorded for a
// party+gateway pair, or "" when none exists. The oldest profile wins when
// duplicates exist.
func (r *PaymentProfileRepository) FindCustomerID(ctx context.Context, db ports.DBTX, partyID, gatewayID string) (string, error) {
	var customerID string
	err := r.dbtx(db).QueryRow(ctx, `
		SELECT stripe_customer_id FROM payment_profiles
		WHERE party_id = $1 AND gateway_id = $2 AND stripe_customer_id IS NOT NULL
		ORDER BY created_at ASC
		LIMIT 1`, partyID, gatewayID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find customer id: %w", err)
	}
	return customerID, nil
}
