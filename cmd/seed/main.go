// Command seed loads development fixtures: a demo party with a billing
// address and a test-mode gateway. Intended for local sandboxes only.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aroraumang/payment-gateway-stripe/internal/adapters/postgres"
	"github.com/aroraumang/payment-gateway-stripe/internal/config"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
)

func main() {
	testKey := flag.String("test-key", "sk_test_placeholder", "Stripe test API key for the seeded gateway")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	partyID := "party-demo"
	addressID := "address-demo"

	_, err = pool.Exec(ctx, `
		INSERT INTO parties (id, name, email)
		VALUES ($1, 'Demo Customer', 'demo@example.com')
		ON CONFLICT (id) DO NOTHING`, partyID)
	if err != nil {
		log.Fatalf("seed party: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO party_addresses (id, party_id, name, street, city, zip, subdivision, country)
		VALUES ($1, $2, 'Demo Customer', '123 Main St', 'Springfield', '62704', 'Illinois', 'United States')
		ON CONFLICT (id) DO NOTHING`, addressID, partyID)
	if err != nil {
		log.Fatalf("seed address: %v", err)
	}

	dbExec := postgres.NewDBExecutor(pool)
	gatewayRepo := postgres.NewGatewayRepository(dbExec)
	gateway := &models.Gateway{
		ID:         uuid.New().String(),
		Provider:   "stripe",
		Mode:       models.ModeTest,
		TestAPIKey: *testKey,
	}
	if err := gatewayRepo.Create(ctx, nil, gateway); err != nil {
		log.Fatalf("seed gateway: %v", err)
	}

	fmt.Printf("seeded party=%s address=%s gateway=%s\n", partyID, addressID, gateway.ID)
}
