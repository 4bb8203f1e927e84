package audit_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/models"
	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
	"github.com/aroraumang/payment-gateway-stripe/internal/services/audit"
)

// MockTransactionLogRepository mocks the audit log repository
type MockTransactionLogRepository struct {
	mock.Mock
}

func (m *MockTransactionLogRepository) Create(ctx context.Context, tx ports.DBTX, entry *models.TransactionLog) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockTransactionLogRepository) ListByTransaction(ctx context.Context, db ports.DBTX, transactionID string) ([]*models.TransactionLog, error) {
	args := m.Called(ctx, db, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransactionLog), args.Error(1)
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

func TestRecord_RawJSONStoredVerbatim(t *testing.T) {
	logs := new(MockTransactionLogRepository)
	logger := new(MockLogger)
	recorder := audit.NewRecorder(logs, logger)

	raw := []byte(`{"id":"ch_1","status":"succeeded"}`)
	logs.On("Create", mock.Anything, mock.Anything,
		mock.MatchedBy(func(entry *models.TransactionLog) bool {
			return entry.TransactionID == "txn-1" &&
				entry.ID != "" &&
				string(entry.Payload) == string(raw)
		})).Return(nil).Once()

	recorder.Record(context.Background(), nil, "txn-1", json.RawMessage(raw))

	logs.AssertExpectations(t)
}

func TestRecord_NonJSONBytesQuoted(t *testing.T) {
	logs := new(MockTransactionLogRepository)
	logger := new(MockLogger)
	recorder := audit.NewRecorder(logs, logger)

	logs.On("Create", mock.Anything, mock.Anything,
		mock.MatchedBy(func(entry *models.TransactionLog) bool {
			return json.Valid(entry.Payload) &&
				string(entry.Payload) == `"plain text response"`
		})).Return(nil).Once()

	recorder.Record(context.Background(), nil, "txn-1", []byte("plain text response"))

	logs.AssertExpectations(t)
}

func TestRecord_StructsAreMarshalled(t *testing.T) {
	logs := new(MockTransactionLogRepository)
	logger := new(MockLogger)
	recorder := audit.NewRecorder(logs, logger)

	logs.On("Create", mock.Anything, mock.Anything,
		mock.MatchedBy(func(entry *models.TransactionLog) bool {
			var decoded map[string]string
			if err := json.Unmarshal(entry.Payload, &decoded); err != nil {
				return false
			}
			return decoded["error"] == "validation_error"
		})).Return(nil).Once()

	recorder.Record(context.Background(), nil, "txn-1", map[string]string{
		"error": "validation_error",
	})

	logs.AssertExpectations(t)
}

func TestRecord_CreateFailureOnlyWarns(t *testing.T) {
	logs := new(MockTransactionLogRepository)
	logger := new(MockLogger)
	recorder := audit.NewRecorder(logs, logger)

	logs.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()
	logger.On("Warn", "audit log entry lost", mock.Anything).Return().Once()

	recorder.Record(context.Background(), nil, "txn-1", json.RawMessage(`{}`))

	logs.AssertExpectations(t)
	logger.AssertExpectations(t)
}
