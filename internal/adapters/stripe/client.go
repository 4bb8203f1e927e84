package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aroraumang/payment-gateway-stripe/internal/domain/ports"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Client implements ports.ChargeGateway against the Stripe REST API.
// Requests are form-encoded; the API key is passed per call because keys
// are scoped to the gateway record driving the operation. A circuit
// breaker guards the single upstream host: repeated connectivity failures
// short-circuit into api_connection_error without a network round trip.
type Client struct {
	baseURL    string
	httpClient ports.HTTPClient
	breaker    *gobreaker.CircuitBreaker
	logger     ports.Logger
}

// NewClient creates a Stripe API client
func NewClient(httpClient ports.HTTPClient, logger ports.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stripe",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				// declines and bad requests are successful round trips as
				// far as the breaker is concerned
				_, bypass := err.(*breakerBypass)
				return bypass
			},
		}),
		logger: logger,
	}
}

// WithBaseURL overrides the API base URL (tests, mock servers)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// chargeResponse mirrors the fields of a provider charge the engine reads
type chargeResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Captured bool   `json:"captured"`
	Refunded bool   `json:"refunded"`
	Status   string `json:"status"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Charge string `json:"charge"`
	Amount int64  `json:"amount"`
}

type cardResponse struct {
	ID       string `json:"id"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Brand    string `json:"brand"`
}

type customerResponse struct {
	ID            string `json:"id"`
	DefaultSource string `json:"default_source"`
	Sources       struct {
		Data []cardResponse `json:"data"`
	} `json:"sources"`
}

// CreateCharge implements ports.ChargeGateway.CreateCharge
func (c *Client) CreateCharge(ctx context.Context, apiKey string, req *ports.ChargeRequest) (*ports.Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency)
	form.Set("capture", strconv.FormatBool(req.Capture))

	if req.Card != nil {
		encodeCardSource(form, "source", req.Card)
	} else {
		form.Set("customer", req.CustomerID)
		form.Set("card", req.CardRef)
	}

	body, err := c.do(ctx, apiKey, "POST", "/charges", form)
	if err != nil {
		return nil, err
	}
	return decodeCharge(body)
}

// CaptureCharge implements ports.ChargeGateway.CaptureCharge
func (c *Client) CaptureCharge(ctx context.Context, apiKey, chargeID string, amountMinor int64) (*ports.Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))

	body, err := c.do(ctx, apiKey, "POST", "/charges/"+chargeID+"/capture", form)
	if err != nil {
		return nil, err
	}
	return decodeCharge(body)
}

// RefundCharge implements ports.ChargeGateway.RefundCharge
func (c *Client) RefundCharge(ctx context.Context, apiKey, chargeID string) (*ports.Refund, error) {
	body, err := c.do(ctx, apiKey, "POST", "/charges/"+chargeID+"/refund", url.Values{})
	if err != nil {
		return nil, err
	}

	var resp refundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode refund response: %w", err)
	}
	return &ports.Refund{
		ID:       resp.ID,
		ChargeID: resp.Charge,
		Amount:   resp.Amount,
		Raw:      body,
	}, nil
}

// CreateCustomer implements ports.ChargeGateway.CreateCustomer
func (c *Client) CreateCustomer(ctx context.Context, apiKey string, card *ports.CardSource, description, email string) (*ports.Customer, error) {
	form := url.Values{}
	encodeCardSource(form, "source", card)
	if description != "" {
		form.Set("description", description)
	}
	if email != "" {
		form.Set("email", email)
	}

	body, err := c.do(ctx, apiKey, "POST", "/customers", form)
	if err != nil {
		return nil, err
	}

	var resp customerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode customer response: %w", err)
	}

	customer := &ports.Customer{ID: resp.ID, Raw: body}
	if len(resp.Sources.Data) > 0 {
		customer.DefaultSource = toCard(resp.Sources.Data[0], nil)
	}
	return customer, nil
}

// CreateCustomerSource implements ports.ChargeGateway.CreateCustomerSource
func (c *Client) CreateCustomerSource(ctx context.Context, apiKey, customerID string, card *ports.CardSource) (*ports.Card, error) {
	form := url.Values{}
	encodeCardSource(form, "source", card)

	body, err := c.do(ctx, apiKey, "POST", "/customers/"+customerID+"/sources", form)
	if err != nil {
		return nil, err
	}

	var resp cardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode card response: %w", err)
	}
	return toCard(resp, body), nil
}

// encodeCardSource writes a card block as source[number]=..&source[exp_month]=..
// Empty address fields are omitted, never sent as placeholders.
func encodeCardSource(form url.Values, prefix string, card *ports.CardSource) {
	set := func(key, value string) {
		if value != "" {
			form.Set(prefix+"["+key+"]", value)
		}
	}
	form.Set(prefix+"[object]", "card")
	set("number", card.Number)
	if card.ExpiryMonth > 0 {
		form.Set(prefix+"[exp_month]", strconv.Itoa(card.ExpiryMonth))
	}
	if card.ExpiryYear > 0 {
		form.Set(prefix+"[exp_year]", strconv.Itoa(card.ExpiryYear))
	}
	set("cvc", card.CVC)
	set("name", card.Name)
	set("address_line1", card.AddressLine1)
	set("address_line2", card.AddressLine2)
	set("address_city", card.City)
	set("address_zip", card.Zip)
	set("address_state", card.State)
	set("address_country", card.Country)
}

func decodeCharge(body []byte) (*ports.Charge, error) {
	var resp chargeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}
	return &ports.Charge{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Captured: resp.Captured,
		Refunded: resp.Refunded,
		Status:   resp.Status,
		Raw:      body,
	}, nil
}

func toCard(resp cardResponse, raw []byte) *ports.Card {
	return &ports.Card{
		ID:       resp.ID,
		Last4:    resp.Last4,
		ExpMonth: resp.ExpMonth,
		ExpYear:  resp.ExpYear,
		Brand:    resp.Brand,
		Raw:      raw,
	}
}

// do executes one form-encoded API call through the circuit breaker and
// returns the response body. Non-2xx responses and transport failures come
// back as *ports.ProviderError.
func (c *Client) do(ctx context.Context, apiKey, method, endpoint string, form url.Values) ([]byte, error) {
	if c.logger != nil {
		c.logger.Debug("calling stripe",
			ports.String("method", method),
			ports.String("endpoint", endpoint),
		)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, connectionError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, connectionError(err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			perr := parseErrorResponse(resp.StatusCode, body)
			if perr.Type == ports.ProviderErrGeneric || perr.Type == ports.ProviderErrConnection {
				// upstream outages count toward tripping the breaker
				return nil, perr
			}
			return nil, &breakerBypass{perr}
		}
		return body, nil
	})

	if err != nil {
		var bypass *breakerBypass
		if asBypass(err, &bypass) {
			return nil, bypass.err
		}
		if _, ok := ports.AsProviderError(err); ok {
			return nil, err
		}
		// breaker open / too many requests
		return nil, connectionError(err)
	}
	return result.([]byte), nil
}

// breakerBypass wraps provider errors that must not trip the breaker while
// still aborting the call.
type breakerBypass struct {
	err *ports.ProviderError
}

func (b *breakerBypass) Error() string { return b.err.Error() }

func asBypass(err error, target **breakerBypass) bool {
	if b, ok := err.(*breakerBypass); ok {
		*target = b
		return true
	}
	return false
}
