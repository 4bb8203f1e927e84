package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Gateway configuration errors (CONFIG_*)
	ErrorCodeConfigMissingAPIKey ErrorCode = "CONFIG_MISSING_API_KEY"
	ErrorCodeConfigInvalidMode   ErrorCode = "CONFIG_INVALID_MODE"

	// Transaction errors (TXN_*)
	ErrorCodeTxnNotFound        ErrorCode = "TXN_NOT_FOUND"
	ErrorCodeTxnInvalidState    ErrorCode = "TXN_INVALID_STATE"
	ErrorCodeTxnNoPaymentSource ErrorCode = "TXN_NO_PAYMENT_SOURCE"
	ErrorCodeTxnInFlight        ErrorCode = "TXN_IN_FLIGHT"

	// Unsupported operations (OP_*)
	ErrorCodeOpNotSupported ErrorCode = "OP_NOT_SUPPORTED"

	// Payment profile errors (PROFILE_*)
	ErrorCodeProfileNotFound       ErrorCode = "PROFILE_NOT_FOUND"
	ErrorCodeProfileCreationFailed ErrorCode = "PROFILE_CREATION_FAILED"

	// Party / address errors (PARTY_*)
	ErrorCodePartyNotFound   ErrorCode = "PARTY_NOT_FOUND"
	ErrorCodeAddressNotFound ErrorCode = "ADDRESS_NOT_FOUND"

	// Gateway record errors (GATEWAY_*)
	ErrorCodeGatewayNotFound ErrorCode = "GATEWAY_NOT_FOUND"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeTxnNotFound ||
		code == ErrorCodeProfileNotFound ||
		code == ErrorCodePartyNotFound ||
		code == ErrorCodeAddressNotFound ||
		code == ErrorCodeGatewayNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField
}

// IsNotSupported reports whether an error marks an operation this engine
// does not implement (retry, status refresh).
func IsNotSupported(err error) bool {
	return GetErrorCode(err) == ErrorCodeOpNotSupported
}
