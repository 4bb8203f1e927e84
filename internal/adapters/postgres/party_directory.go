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

// PartyDirectory implements ports.PartyDirectory over the host-synced
// party read model tables
type PartyDirectory struct {
	db ports.DBPort
}

// NewPartyDirectory creates a postgres-backed party directory
func NewPartyDirectory(db ports.DBPort) *PartyDirectory {
	return &PartyDirectory{db: db}
}

// GetParty retrieves a party by its ID
func (d *PartyDirectory) GetParty(ctx context.Context, id string) (*models.Party, error) {
	var (
		party models.Party
		email pgtype.Text
	)
	err := d.db.GetDB().QueryRow(ctx, `
		SELECT id, name, email FROM parties WHERE id = $1`, id).
		Scan(&party.ID, &party.Name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodePartyNotFound,
				"party not found").WithDetail("party_id", id)
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	party.Email = email.String
	return &party, nil
}

// GetAddress retrieves an address by its ID
func (d *PartyDirectory) GetAddress(ctx context.Context, id string) (*models.Address, error) {
	var (
		addr models.Address
		name, street, streetBis, city, zip, subdivision, country pgtype.Text
	)
	err := d.db.GetDB().QueryRow(ctx, `
		SELECT id, party_id, name, street, street_bis, city, zip, subdivision, country
		FROM party_addresses WHERE id = $1`, id).
		Scan(&addr.ID, &addr.PartyID, &name, &street, &streetBis, &city,
			&zip, &subdivision, &country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeAddressNotFound,
				"address not found").WithDetail("address_id", id)
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	addr.Name = name.String
	addr.Street = street.String
	addr.StreetBis = streetBis.String
	addr.City = city.String
	addr.Zip = zip.String
	addr.Subdivision = subdivision.String
	addr.Country = country.String
	return &addr, nil
}
