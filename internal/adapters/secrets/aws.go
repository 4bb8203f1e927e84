package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// AWSConfig configures the AWS Secrets Manager backend
type AWSConfig struct {
	Region string

	// Optional profile for local development
	Profile string

	// Optional custom endpoint for LocalStack
	Endpoint string

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultAWSConfig returns the default AWS backend configuration
func DefaultAWSConfig(region string) *AWSConfig {
	return &AWSConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

type awsSecretManager struct {
	client *secretsmanager.Client
	logger ports.Logger
	cache  *secretCache
}

// NewAWSSecretManager creates a secret manager backed by AWS Secrets
// Manager. Credentials come from the default chain, or from the named
// profile during development.
func NewAWSSecretManager(ctx context.Context, cfg *AWSConfig, logger ports.Logger) (ports.SecretManager, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("aws secret manager initialized",
		ports.String("region", cfg.Region),
		ports.Bool("cache_enabled", cfg.EnableCache))

	return &awsSecretManager{
		client: secretsmanager.NewFromConfig(awsConfig, clientOpts...),
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret retrieves a secret by name or full ARN
func (m *awsSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := m.cache.get(path); cached != nil {
		return cached, nil
	}

	result, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("secret not found: %s", path)
		}
		return nil, fmt.Errorf("get secret value: %w", err)
	}

	secret := &ports.Secret{
		Value:   aws.ToString(result.SecretString),
		Version: aws.ToString(result.VersionId),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.UTC().Format(time.RFC3339)
	}

	m.cache.set(path, secret)
	return secret, nil
}

// PutSecret updates an existing secret, creating it on first use
func (m *awsSecretManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	result, err := m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(value),
	})
	if err == nil {
		m.cache.invalidate(path)
		return aws.ToString(result.VersionId), nil
	}

	var notFound *smtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("put secret value: %w", err)
	}

	var tags []smtypes.Tag
	for key, val := range metadata {
		tags = append(tags, smtypes.Tag{
			Key:   aws.String(key),
			Value: aws.String(val),
		})
	}

	created, err := m.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(path),
		SecretString: aws.String(value),
		Description:  aws.String("Payment gateway API key"),
		Tags:         tags,
	})
	if err != nil {
		return "", fmt.Errorf("create secret: %w", err)
	}

	m.logger.Info("secret created", ports.String("path", path))
	m.cache.invalidate(path)
	return aws.ToString(created.VersionId), nil
}
