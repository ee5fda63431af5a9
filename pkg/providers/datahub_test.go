package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tunde/vend-settlement/pkg/models"
)

func TestDataHubClassify(t *testing.T) {
	d := NewDataHub(Config{BaseURL: "http://localhost", APIKey: "fixture-key"})

	t.Run("Successful Vend", func(t *testing.T) {
		body := []byte(`{"status":"successful","code":"000","message":"2GB delivered to 08031234567"}`)
		outcome := d.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFulfilled, outcome.Status)
		assert.Equal(t, "2GB delivered to 08031234567", outcome.Message)
	})

	t.Run("Processing", func(t *testing.T) {
		body := []byte(`{"status":"processing","code":"001","message":"Vend queued"}`)
		outcome := d.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeAccepted, outcome.Status)
	})

	t.Run("Terminal Failure", func(t *testing.T) {
		body := []byte(`{"status":"failed","code":"104","message":"Invalid recipient number"}`)
		outcome := d.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.False(t, outcome.Unavailable)
	})

	t.Run("Product Disabled", func(t *testing.T) {
		body := []byte(`{"status":"failed","code":"product_disabled","message":"This plan has been disabled"}`)
		outcome := d.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.True(t, outcome.Unavailable)
	})

	t.Run("Server Error Is Ambiguous", func(t *testing.T) {
		outcome := d.classify(http.StatusBadGateway, []byte("<html>502</html>"))

		assert.Equal(t, OutcomeUnknown, outcome.Status)
	})

	t.Run("Unknown Status Value", func(t *testing.T) {
		body := []byte(`{"status":"in_review","message":"manual review"}`)
		outcome := d.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeUnknown, outcome.Status)
	})

	t.Run("Unknown Status Value With 4xx Is Terminal", func(t *testing.T) {
		body := []byte(`{"status":"declined","message":"Account not permitted to vend"}`)
		outcome := d.classify(http.StatusForbidden, body)

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.Equal(t, "Account not permitted to vend", outcome.Message)
	})

	t.Run("Garbage Body With 4xx", func(t *testing.T) {
		outcome := d.classify(http.StatusBadRequest, []byte("not json"))

		assert.Equal(t, OutcomeFailed, outcome.Status)
	})
}

func TestDataHubSubmitPurchase(t *testing.T) {
	product := &models.Product{ID: "mtn-2gb", ProviderID: "datahub", ProviderSKU: "MTN2GB", Kind: models.KindData, Network: "mtn", SalePrice: 46000}

	t.Run("Carries Reference And Callback URL", func(t *testing.T) {
		var received dataHubRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Token fixture-key", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"successful","message":"ok"}`))
		}))
		defer server.Close()

		d := NewDataHub(Config{BaseURL: server.URL, APIKey: "fixture-key", CallbackURL: "https://vend.example/webhooks/provider"})
		outcome := d.SubmitPurchase(context.Background(), product, "08031234567", "ref-123")

		assert.Equal(t, OutcomeFulfilled, outcome.Status)
		assert.Equal(t, "ref-123", received.Reference)
		assert.Equal(t, "https://vend.example/webhooks/provider", received.CallbackURL)
		assert.Equal(t, "MTN2GB", received.SKU)
		assert.Equal(t, "08031234567", received.Msisdn)
	})

	t.Run("Timeout Is Unknown Not Failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		d := NewDataHub(Config{BaseURL: server.URL, APIKey: "fixture-key", Timeout: 20 * time.Millisecond})
		outcome := d.SubmitPurchase(context.Background(), product, "08031234567", "ref-124")

		assert.Equal(t, OutcomeUnknown, outcome.Status)
	})
}
