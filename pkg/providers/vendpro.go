package providers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tunde/vend-settlement/pkg/models"
)

// VendPro vends TV subscriptions and exam credentials. Its API signals
// results only through a free-text api_response field, so classification
// is substring matching against the phrases the provider is known to
// emit. The markers live in one place here precisely because they are the
// fragile part of the integration; extend the lists from recorded
// responses, never from guesswork.
type VendPro struct {
	client *resty.Client
	config Config
}

// NewVendPro creates a VendPro adapter.
func NewVendPro(config Config) *VendPro {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.timeout()).
		SetHeader("ApiKey", config.APIKey)

	return &VendPro{client: client, config: config}
}

// Make sure we conform to the interface
var _ Adapter = (*VendPro)(nil)

// Name returns the provider ID.
func (v *VendPro) Name() string { return "vendpro" }

type vendProRequest struct {
	ProductCode string `json:"product_code"`
	CardNumber  string `json:"card_number"`
	RequestID   string `json:"request_id"`
	CallbackURL string `json:"callback_url"`
}

type vendProResponse struct {
	APIResponse string `json:"api_response"`
}

var (
	vendProSuccessMarkers = []string{
		"ORDER RECEIVED",
		"TRANSACTION SUCCESSFUL",
	}
	vendProPendingMarkers = []string{
		"ORDER PROCESSING",
		"TRANSACTION IS PROCESSING",
	}
	vendProUnavailableMarkers = []string{
		"PLAN IS INACTIVE",
		"PRODUCT CURRENTLY UNAVAILABLE",
		"PACKAGE DISABLED",
	}
)

// SubmitPurchase issues one vend call to VendPro.
func (v *VendPro) SubmitPurchase(ctx context.Context, product *models.Product, target, reference string) Outcome {
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(vendProRequest{
			ProductCode: product.ProviderSKU,
			CardNumber:  target,
			RequestID:   reference,
			CallbackURL: v.config.CallbackURL,
		}).
		Post("/api/purchase")

	if err != nil {
		return Outcome{Status: OutcomeUnknown, Message: "provider did not respond in time"}
	}

	return v.classify(resp.StatusCode(), resp.Body())
}

// classify maps a VendPro response to the canonical Outcome.
// Anything that matches no known marker classifies as UNKNOWN rather than
// success: a new phrase from the provider must never silently pass as a
// fulfilled purchase.
func (v *VendPro) classify(statusCode int, body []byte) Outcome {
	raw := string(body)

	if statusCode >= 500 {
		return Outcome{Status: OutcomeUnknown, Message: "provider error", RawPayload: raw}
	}

	var parsed vendProResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if statusCode >= 400 {
			return Outcome{Status: OutcomeFailed, Message: "provider rejected the request", RawPayload: raw}
		}
		return Outcome{Status: OutcomeUnknown, Message: "unrecognized provider response", RawPayload: raw}
	}

	text := strings.ToUpper(parsed.APIResponse)

	for _, marker := range vendProSuccessMarkers {
		if strings.Contains(text, marker) {
			return Outcome{Status: OutcomeFulfilled, Message: parsed.APIResponse, RawPayload: raw}
		}
	}
	for _, marker := range vendProPendingMarkers {
		if strings.Contains(text, marker) {
			return Outcome{Status: OutcomeAccepted, Message: parsed.APIResponse, RawPayload: raw}
		}
	}
	for _, marker := range vendProUnavailableMarkers {
		if strings.Contains(text, marker) {
			return Outcome{Status: OutcomeFailed, Message: parsed.APIResponse, RawPayload: raw, Unavailable: true}
		}
	}

	if statusCode >= 400 {
		return Outcome{Status: OutcomeFailed, Message: parsed.APIResponse, RawPayload: raw}
	}

	return Outcome{Status: OutcomeUnknown, Message: parsed.APIResponse, RawPayload: raw}
}
