package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

// errorEnvelope is the provider's error body: {"error": {...}}
type errorEnvelope struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		Message     string `json:"message"`
		DeclineCode string `json:"decline_code"`
		Param       string `json:"param"`
	} `json:"error"`
}

// parseErrorResponse maps a non-2xx provider response to a ProviderError.
// The raw body is preserved for the audit trail. Unknown or unparseable
// bodies fall back to a type derived from the HTTP status.
func parseErrorResponse(status int, body []byte) *ports.ProviderError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Type != "" {
		return &ports.ProviderError{
			Type:    providerErrorType(env.Error.Type),
			Code:    env.Error.Code,
			Message: env.Error.Message,
			RawBody: body,
		}
	}

	pe := &ports.ProviderError{
		Message: fmt.Sprintf("provider returned HTTP %d", status),
		RawBody: body,
	}
	switch {
	case status == 401:
		pe.Type = ports.ProviderErrAuthentication
	case status == 402:
		pe.Type = ports.ProviderErrCard
	case status >= 400 && status < 500:
		pe.Type = ports.ProviderErrInvalidRequest
	default:
		pe.Type = ports.ProviderErrGeneric
	}
	return pe
}

func providerErrorType(t string) ports.ProviderErrorType {
	switch t {
	case "card_error":
		return ports.ProviderErrCard
	case "invalid_request_error":
		return ports.ProviderErrInvalidRequest
	case "authentication_error":
		return ports.ProviderErrAuthentication
	case "api_connection_error":
		return ports.ProviderErrConnection
	default:
		return ports.ProviderErrGeneric
	}
}

// connectionError wraps a transport-level failure (timeout, refused
// connection, open circuit breaker) as a connectivity provider error with a
// synthesized body so the audit log still gets a payload.
func connectionError(err error) *ports.ProviderError {
	body, _ := json.Marshal(errorBody("api_connection_error", err.Error()))
	return &ports.ProviderError{
		Type:    ports.ProviderErrConnection,
		Message: err.Error(),
		RawBody: body,
	}
}

func errorBody(errType, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	}
}
