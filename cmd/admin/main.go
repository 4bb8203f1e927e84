// Command admin drives the payment gateway engine from the command line:
// gateway management, key rotation, profile provisioning and the full
// transaction lifecycle against real or sandbox Stripe credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/aroraumang/payment-gateway-stripe/internal/adapters/postgres"
	"github.com/aroraumang/payment-gateway-stripe/internal/adapters/rediscache"
	"github.com/aroraumang/payment-gateway-stripe/internal/adapters/secrets"
	"github.com/aroraumang/payment-gateway-stripe/internal/adapters/stripe"
	"github.com/aroraumang/payment-gateway-stripe/internal/config"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/audit"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/profile"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/transaction"
	"github.com/aroraumang/payment-gateway-stripe/pkg/httpclient"
	"github.com/aroraumang/payment-gateway-stripe/pkg/logging"
)

type adminCLI struct {
	ctx         context.Context
	gateways    ports.GatewayRepository
	logs        ports.TransactionLogRepository
	secrets     ports.SecretManager
	txns        *transaction.Service
	provisioner *profile.Provisioner
	dbExec      *postgres.DBExecutor
}

func main() {
	var (
		action   = flag.String("action", "", "Action: create-gateway, set-key, provision, create-draft, authorize, capture, settle, cancel, show, logs")
		gateway  = flag.String("gateway", "", "Gateway ID")
		txnID    = flag.String("txn", "", "Transaction ID")
		party    = flag.String("party", "", "Party ID")
		address  = flag.String("address", "", "Address ID")
		prof     = flag.String("profile", "", "Payment profile ID")
		amount   = flag.String("amount", "", "Transaction amount, e.g. 19.99")
		currency = flag.String("currency", "USD", "ISO 4217 currency code")
		mode     = flag.String("mode", "test", "Gateway mode: test or live")
		testKey  = flag.String("test-key", "", "Stripe test API key")
		liveKey  = flag.String("live-key", "", "Stripe live API key")
		key      = flag.String("key", "", "API key value for set-key")

		cardNumber = flag.String("card-number", "", "Card number")
		cardMonth  = flag.Int("card-exp-month", 0, "Card expiry month")
		cardYear   = flag.Int("card-exp-year", 0, "Card expiry year")
		cardCVC    = flag.String("card-cvc", "", "Card security code")
		cardName   = flag.String("card-name", "", "Cardholder name")
	)
	flag.Parse()

	if *action == "" {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.NewZapLoggerDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	dbExec := postgres.NewDBExecutor(pool)
	txnRepo := postgres.NewTransactionRepository(dbExec)
	profileRepo := postgres.NewPaymentProfileRepository(dbExec)
	logRepo := postgres.NewTransactionLogRepository(dbExec)
	directory := postgres.NewPartyDirectory(dbExec)

	var secretManager ports.SecretManager
	switch cfg.Secrets.Backend {
	case "local":
		secretManager = secrets.NewLocalSecretManager(cfg.Secrets.LocalPath, logger)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.Token = cfg.Secrets.VaultToken
		secretManager, err = secrets.NewVaultSecretManager(ctx, vaultCfg, logger)
	case "aws":
		awsCfg := secrets.DefaultAWSConfig(cfg.Secrets.AWSRegion)
		awsCfg.Profile = cfg.Secrets.AWSProfile
		secretManager, err = secrets.NewAWSSecretManager(ctx, awsCfg, logger)
	}
	if err != nil {
		log.Fatalf("failed to initialize secret backend: %v", err)
	}

	var gatewayRepo ports.GatewayRepository = postgres.NewGatewayRepository(dbExec)
	if secretManager != nil {
		gatewayRepo = secrets.NewKeyResolvingGatewayRepository(gatewayRepo, secretManager, logger)
	}

	httpClient := httpclient.New(httpclient.StripeClientConfig(),
		time.Duration(cfg.Stripe.Timeout)*time.Second)
	stripeClient := stripe.NewClient(httpClient, logger).WithBaseURL(cfg.Stripe.BaseURL)
	recorder := audit.NewRecorder(logRepo, logger)

	var opts []transaction.Option
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		opts = append(opts, transaction.WithInFlightStore(
			rediscache.NewInFlightStore(redisClient, 0)))
	}

	cli := &adminCLI{
		ctx:      ctx,
		gateways: gatewayRepo,
		logs:     logRepo,
		secrets:  secretManager,
		txns: transaction.NewService(dbExec, txnRepo, gatewayRepo, profileRepo,
			directory, stripeClient, recorder, logger, opts...),
		provisioner: profile.NewProvisioner(dbExec, profileRepo, gatewayRepo,
			directory, stripeClient, logger),
		dbExec: dbExec,
	}

	card := cardFromFlags(*cardNumber, *cardMonth, *cardYear, *cardCVC, *cardName)

	switch *action {
	case "create-gateway":
		cli.createGateway(*mode, *testKey, *liveKey)
	case "set-key":
		cli.setKey(*gateway, *mode, *key)
	case "provision":
		cli.provision(*party, *gateway, card)
	case "create-draft":
		cli.createDraft(*party, *address, *gateway, *prof, *amount, *currency)
	case "authorize":
		cli.run(*txnID, func(id string) error { return cli.txns.Authorize(cli.ctx, id, card) })
	case "capture":
		cli.run(*txnID, func(id string) error { return cli.txns.Capture(cli.ctx, id, card) })
	case "settle":
		cli.run(*txnID, func(id string) error { return cli.txns.Settle(cli.ctx, id) })
	case "cancel":
		cli.run(*txnID, func(id string) error { return cli.txns.Cancel(cli.ctx, id) })
	case "show":
		cli.show(*txnID)
	case "logs":
		cli.showLogs(*txnID)
	default:
		fmt.Printf("unknown action: %s\n", *action)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Usage: admin -action=<action> [options]
Actions:
  create-gateway  Create a gateway record (-mode, -test-key, -live-key)
  set-key         Store an API key in the secret backend (-gateway, -mode, -key)
  provision       Create a payment profile (-party, -gateway, card flags)
  create-draft    Create a draft transaction (-party, -address, -gateway, -profile, -amount, -currency)
  authorize       Authorize a draft transaction (-txn, optional card flags)
  capture         Capture a draft transaction (-txn, optional card flags)
  settle          Settle an authorized transaction (-txn)
  cancel          Cancel an authorized transaction (-txn)
  show            Print a transaction (-txn)
  logs            Print a transaction's audit trail (-txn)`)
}

func cardFromFlags(number string, month, year int, cvc, name string) *models.CardInfo {
	if number == "" {
		return nil
	}
	return &models.CardInfo{
		Number:       number,
		ExpiryMonth:  month,
		ExpiryYear:   year,
		SecurityCode: cvc,
		OwnerName:    name,
	}
}

func (cli *adminCLI) createGateway(mode, testKey, liveKey string) {
	gateway := &models.Gateway{
		ID:         uuid.New().String(),
		Provider:   "stripe",
		Mode:       models.GatewayMode(mode),
		TestAPIKey: testKey,
		LiveAPIKey: liveKey,
	}
	if err := cli.gateways.Create(cli.ctx, nil, gateway); err != nil {
		log.Fatalf("create gateway: %v", err)
	}
	fmt.Printf("gateway created: %s (mode=%s)\n", gateway.ID, mode)
}

func (cli *adminCLI) setKey(gatewayID, mode, key string) {
	if cli.secrets == nil {
		log.Fatal("set-key requires a secret backend (SECRETS_BACKEND != env)")
	}
	if gatewayID == "" || key == "" {
		log.Fatal("set-key requires -gateway and -key")
	}
	path := fmt.Sprintf("payment-gateway/stripe/%s/%s", gatewayID, mode)
	version, err := cli.secrets.PutSecret(cli.ctx, path, key, map[string]string{
		"gateway_id": gatewayID,
		"mode":       mode,
	})
	if err != nil {
		log.Fatalf("store key: %v", err)
	}
	fmt.Printf("key stored at %s (version %s)\n", path, version)
}

func (cli *adminCLI) provision(partyID, gatewayID string, card *models.CardInfo) {
	if card == nil {
		log.Fatal("provision requires card flags")
	}
	prof, err := cli.provisioner.Provision(cli.ctx, partyID, gatewayID, card)
	if err != nil {
		log.Fatalf("provision profile: %v", err)
	}
	printJSON(prof)
}

func (cli *adminCLI) createDraft(partyID, addressID, gatewayID, profileID, amount, currency string) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		log.Fatalf("invalid amount %q: %v", amount, err)
	}
	txn, err := cli.txns.CreateDraft(cli.ctx, transaction.DraftParams{
		PartyID:          partyID,
		AddressID:        addressID,
		GatewayID:        gatewayID,
		PaymentProfileID: profileID,
		Amount:           amt,
		Currency:         currency,
	})
	if err != nil {
		log.Fatalf("create draft: %v", err)
	}
	printJSON(txn)
}

func (cli *adminCLI) run(txnID string, op func(string) error) {
	if txnID == "" {
		log.Fatal("missing -txn")
	}
	if err := op(txnID); err != nil {
		log.Fatalf("operation failed: %v", err)
	}
	cli.show(txnID)
}

func (cli *adminCLI) show(txnID string) {
	txn, err := cli.txns.Get(cli.ctx, txnID)
	if err != nil {
		log.Fatalf("get transaction: %v", err)
	}
	printJSON(txn)
}

func (cli *adminCLI) showLogs(txnID string) {
	entries, err := cli.logs.ListByTransaction(cli.ctx, cli.dbExec.GetDB(), txnID)
	if err != nil {
		log.Fatalf("list logs: %v", err)
	}
	for _, entry := range entries {
		fmt.Printf("%s  %s\n", entry.CreatedAt.Format(time.RFC3339), string(entry.Payload))
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal output: %v", err)
	}
	fmt.Println(string(data))
}
