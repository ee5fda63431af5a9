package providers

import (
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"
	"github.com/tunde/vend-settlement/pkg/models"
)

// DataHub vends mobile data and airtime. It is the well-behaved provider:
// an explicit status enum in every response body.
type DataHub struct {
	client *resty.Client
	config Config
}

// NewDataHub creates a DataHub adapter.
func NewDataHub(config Config) *DataHub {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.timeout()).
		SetHeader("Authorization", "Token "+config.APIKey)

	return &DataHub{client: client, config: config}
}

// Make sure we conform to the interface
var _ Adapter = (*DataHub)(nil)

// Name returns the provider ID.
func (d *DataHub) Name() string { return "datahub" }

type dataHubRequest struct {
	SKU         string `json:"sku"`
	Msisdn      string `json:"msisdn"`
	Reference   string `json:"request_id"`
	CallbackURL string `json:"callback_url"`
}

type dataHubResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitPurchase issues one vend call to DataHub.
func (d *DataHub) SubmitPurchase(ctx context.Context, product *models.Product, target, reference string) Outcome {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(dataHubRequest{
			SKU:         product.ProviderSKU,
			Msisdn:      target,
			Reference:   reference,
			CallbackURL: d.config.CallbackURL,
		}).
		Post("/api/v1/vend")

	if err != nil {
		// The request may or may not have reached the provider. Ambiguous.
		return Outcome{Status: OutcomeUnknown, Message: "provider did not respond in time"}
	}

	return d.classify(resp.StatusCode(), resp.Body())
}

// classify maps a DataHub response to the canonical Outcome.
func (d *DataHub) classify(statusCode int, body []byte) Outcome {
	raw := string(body)

	if statusCode >= 500 {
		// The provider may have processed the vend before erroring out.
		return Outcome{Status: OutcomeUnknown, Message: "provider error", RawPayload: raw}
	}

	var parsed dataHubResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if statusCode >= 400 {
			return Outcome{Status: OutcomeFailed, Message: "provider rejected the request", RawPayload: raw}
		}
		return Outcome{Status: OutcomeUnknown, Message: "unrecognized provider response", RawPayload: raw}
	}

	switch parsed.Status {
	case "successful":
		return Outcome{Status: OutcomeFulfilled, Message: parsed.Message, RawPayload: raw}
	case "processing", "queued":
		return Outcome{Status: OutcomeAccepted, Message: parsed.Message, RawPayload: raw}
	case "failed":
		return Outcome{
			Status:      OutcomeFailed,
			Message:     parsed.Message,
			RawPayload:  raw,
			Unavailable: parsed.Code == "product_disabled",
		}
	default:
		if statusCode >= 400 {
			// An explicit rejection, even when the status word is one we
			// have not seen before.
			return Outcome{Status: OutcomeFailed, Message: parsed.Message, RawPayload: raw}
		}
		return Outcome{Status: OutcomeUnknown, Message: parsed.Message, RawPayload: raw}
	}
}
