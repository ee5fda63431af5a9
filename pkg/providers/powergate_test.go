package providers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerGateClassify(t *testing.T) {
	p := NewPowerGate(Config{BaseURL: "http://localhost", APIKey: "fixture-key"})

	t.Run("Token Present Means Fulfilled", func(t *testing.T) {
		body := []byte(`{"token":"1234-5678-9012-3456","units":"45.2"}`)
		outcome := p.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFulfilled, outcome.Status)
		assert.Contains(t, outcome.Message, "1234-5678-9012-3456")
	})

	t.Run("Error Field Means Failed", func(t *testing.T) {
		body := []byte(`{"error":"meter number not recognized"}`)
		outcome := p.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.False(t, outcome.Unavailable)
	})

	t.Run("Tariff Not Available Triggers Fallback", func(t *testing.T) {
		body := []byte(`{"error":"Tariff not available on this disco"}`)
		outcome := p.classify(http.StatusOK, body)

		assert.Equal(t, OutcomeFailed, outcome.Status)
		assert.True(t, outcome.Unavailable)
	})

	t.Run("Neither Token Nor Error Means Queued", func(t *testing.T) {
		body := []byte(`{"units":""}`)
		outcome := p.classify(http.StatusAccepted, body)

		assert.Equal(t, OutcomeAccepted, outcome.Status)
	})

	t.Run("Server Error Is Ambiguous", func(t *testing.T) {
		outcome := p.classify(http.StatusServiceUnavailable, nil)

		assert.Equal(t, OutcomeUnknown, outcome.Status)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(
		NewDataHub(Config{BaseURL: "http://localhost"}),
		NewPowerGate(Config{BaseURL: "http://localhost"}),
	)

	t.Run("Known Provider", func(t *testing.T) {
		adapter, err := registry.Get("datahub")

		assert.NoError(t, err)
		assert.Equal(t, "datahub", adapter.Name())
	})

	t.Run("Unknown Provider", func(t *testing.T) {
		_, err := registry.Get("ghost")

		assert.Error(t, err)
	})
}
