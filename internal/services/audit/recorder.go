// Package audit persists serialized snapshots of provider round trips
// against their transaction. Recording is best effort: a transaction's
// state transition must never fail because its audit entry could not be
// written, so failures surface only as warnings.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// Recorder appends transaction log entries
type Recorder struct {
	logs   ports.TransactionLogRepository
	logger ports.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(logs ports.TransactionLogRepository, logger ports.Logger) *Recorder {
	return &Recorder{logs: logs, logger: logger}
}

// Record serializes payload and appends one immutable entry linked to the
// transaction. Raw JSON payloads ([]byte, json.RawMessage) are stored
// as-is; anything else is marshalled. Never returns an error.
func (r *Recorder) Record(ctx context.Context, tx ports.DBTX, transactionID string, payload interface{}) {
	entry := &models.TransactionLog{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		Payload:       serialize(payload),
		CreatedAt:     time.Now(),
	}

	if err := r.logs.Create(ctx, tx, entry); err != nil {
		r.logger.Warn("audit log entry lost",
			ports.String("transaction_id", transactionID),
			ports.Err(err))
	}
}

func serialize(payload interface{}) []byte {
	switch p := payload.(type) {
	case []byte:
		if json.Valid(p) {
			return p
		}
		quoted, _ := json.Marshal(string(p))
		return quoted
	case json.RawMessage:
		return p
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(map[string]string{
			"serialization_error": err.Error(),
			"payload":             fmt.Sprintf("%+v", payload),
		})
	}
	return data
}
