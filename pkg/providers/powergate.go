package providers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tunde/vend-settlement/pkg/models"
)

// PowerGate vends prepaid electricity tokens. Its API has no status field
// at all: success is the presence of a token, failure is the presence of
// an error field, and a response with neither means token generation was
// queued.
type PowerGate struct {
	client *resty.Client
	config Config
}

// NewPowerGate creates a PowerGate adapter.
func NewPowerGate(config Config) *PowerGate {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.timeout()).
		SetHeader("X-Api-Key", config.APIKey)

	return &PowerGate{client: client, config: config}
}

// Make sure we conform to the interface
var _ Adapter = (*PowerGate)(nil)

// Name returns the provider ID.
func (p *PowerGate) Name() string { return "powergate" }

type powerGateRequest struct {
	Tariff      string `json:"tariff"`
	MeterNumber string `json:"meter_number"`
	Reference   string `json:"reference"`
	WebhookURL  string `json:"webhook_url"`
}

type powerGateResponse struct {
	Token string `json:"token"`
	Units string `json:"units"`
	Error string `json:"error"`
}

// SubmitPurchase issues one token purchase to PowerGate.
func (p *PowerGate) SubmitPurchase(ctx context.Context, product *models.Product, target, reference string) Outcome {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(powerGateRequest{
			Tariff:      product.ProviderSKU,
			MeterNumber: target,
			Reference:   reference,
			WebhookURL:  p.config.CallbackURL,
		}).
		Post("/tokens")

	if err != nil {
		return Outcome{Status: OutcomeUnknown, Message: "provider did not respond in time"}
	}

	return p.classify(resp.StatusCode(), resp.Body())
}

// classify maps a PowerGate response to the canonical Outcome.
func (p *PowerGate) classify(statusCode int, body []byte) Outcome {
	raw := string(body)

	if statusCode >= 500 {
		return Outcome{Status: OutcomeUnknown, Message: "provider error", RawPayload: raw}
	}

	var parsed powerGateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if statusCode >= 400 {
			return Outcome{Status: OutcomeFailed, Message: "provider rejected the request", RawPayload: raw}
		}
		return Outcome{Status: OutcomeUnknown, Message: "unrecognized provider response", RawPayload: raw}
	}

	if parsed.Error != "" {
		return Outcome{
			Status:      OutcomeFailed,
			Message:     parsed.Error,
			RawPayload:  raw,
			Unavailable: strings.Contains(strings.ToUpper(parsed.Error), "TARIFF NOT AVAILABLE"),
		}
	}

	if parsed.Token != "" {
		return Outcome{Status: OutcomeFulfilled, Message: "Token: " + parsed.Token, RawPayload: raw}
	}

	if statusCode >= 400 {
		return Outcome{Status: OutcomeFailed, Message: "provider rejected the request", RawPayload: raw}
	}

	// No token yet and no error: the disco is generating the token and will
	// call back with it.
	return Outcome{Status: OutcomeAccepted, Message: "token generation in progress", RawPayload: raw}
}
