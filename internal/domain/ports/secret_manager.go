package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // the secret value (e.g. a Stripe API key)
	Version   string            // secret version identifier
	Metadata  map[string]string // additional secret metadata
	CreatedAt string            // when this version was created
}

// SecretManager defines the port for retrieving gateway credentials from a
// secret management backend. Supported backends: HashiCorp Vault, AWS
// Secrets Manager, local files. Implementations handle authentication and
// cache values with a TTL.
type SecretManager interface {
	// GetSecret retrieves a secret by its path/name. Path format depends on
	// the backend:
	//   - Vault: "secret/data/payment-gateway/stripe/{gateway_id}"
	//   - AWS:   "payment-gateway/stripe/{gateway_id}"
	//   - local: a file path relative to the configured base directory
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new version
	// identifier (admin/rotation operations)
	PutSecret(ctx context.Context, path, value string, metadata map[string]string) (version string, err error)
}
