package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// localSecretManager reads API keys from the local filesystem.
// Development only; production uses Vault or AWS Secrets Manager.
type localSecretManager struct {
	basePath string
	logger   ports.Logger
}

// NewLocalSecretManager creates a filesystem-backed secret manager
func NewLocalSecretManager(basePath string, logger ports.Logger) ports.SecretManager {
	return &localSecretManager{basePath: basePath, logger: logger}
}

// GetSecret reads a secret file, accepting either a JSON envelope with a
// "value" field or a plain text key
func (m *localSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, path)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", path)
		}
		return nil, fmt.Errorf("read secret: %w", err)
	}

	var envelope struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Value != "" {
		return &ports.Secret{
			Value:     envelope.Value,
			Version:   "v1",
			Metadata:  envelope.Tags,
			CreatedAt: envelope.CreatedAt,
		}, nil
	}

	return &ports.Secret{
		Value:   string(data),
		Version: "v1",
	}, nil
}

// PutSecret writes the secret as a JSON envelope under the base directory
func (m *localSecretManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	filePath := filepath.Join(m.basePath, path)

	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return "", fmt.Errorf("create secret directory: %w", err)
	}

	envelope := map[string]interface{}{
		"value":      value,
		"tags":       metadata,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal secret: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}

	m.logger.Info("secret stored", ports.String("path", path))
	return "v1", nil
}
