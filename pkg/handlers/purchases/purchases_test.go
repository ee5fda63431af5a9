package purchases

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/middleware"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/settlement"
)

// stubEngine returns a preset result and records the args it was called with.
type stubEngine struct {
	result *settlement.Result
	err    error
	args   settlement.PurchaseArgs
	called bool
}

func (s *stubEngine) Purchase(_ context.Context, args settlement.PurchaseArgs) (*settlement.Result, error) {
	s.called = true
	s.args = args
	return s.result, s.err
}

func authedHandler(engine *stubEngine) http.Handler {
	auth := &middleware.StaticTokenAuthenticator{Tokens: map[string]string{"tok-1": "acct-1"}}
	handler := NewPurchasesHandler(engine)
	return middleware.RequireAccount(auth)(http.HandlerFunc(handler.CreatePurchase))
}

func postPurchase(t *testing.T, handler http.Handler, token string, newPurchase *api.NewPurchase) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(newPurchase)
	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCreatePurchase(t *testing.T) {
	newPurchase := &api.NewPurchase{ProductId: "mtn-2gb-datahub", Kind: "DATA", DeliveryTarget: "08031234567"}

	t.Run("Success", func(t *testing.T) {
		engine := &stubEngine{result: &settlement.Result{Reference: "vnd_abc", Status: models.COMPLETED, Message: "2GB delivered"}}
		rr := postPurchase(t, authedHandler(engine), "tok-1", newPurchase)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "acct-1", engine.args.AccountID)
		assert.Equal(t, models.KindData, engine.args.Kind)

		var result api.PurchaseResult
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, "vnd_abc", result.Reference)
		assert.Equal(t, "COMPLETED", result.Status)
	})

	t.Run("Missing Token", func(t *testing.T) {
		engine := &stubEngine{}
		rr := postPurchase(t, authedHandler(engine), "", newPurchase)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, engine.called)
	})

	t.Run("Unknown Token", func(t *testing.T) {
		engine := &stubEngine{}
		rr := postPurchase(t, authedHandler(engine), "tok-bogus", newPurchase)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, engine.called)
	})

	t.Run("Validation Error Maps To 400", func(t *testing.T) {
		engine := &stubEngine{err: &settlement.ValidationError{Message: "bad target"}}
		rr := postPurchase(t, authedHandler(engine), "tok-1", newPurchase)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unknown Product Maps To 404", func(t *testing.T) {
		engine := &stubEngine{err: &settlement.NotFoundError{Message: "product not found"}}
		rr := postPurchase(t, authedHandler(engine), "tok-1", newPurchase)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Insufficient Balance Maps To 400", func(t *testing.T) {
		engine := &stubEngine{err: &settlement.InsufficientBalanceError{Balance: 100, Required: 46000}}
		rr := postPurchase(t, authedHandler(engine), "tok-1", newPurchase)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Provider Failure Maps To 502 With Body", func(t *testing.T) {
		engine := &stubEngine{err: &settlement.ProviderError{Reference: "vnd_abc", Message: "Invalid recipient number"}}
		rr := postPurchase(t, authedHandler(engine), "tok-1", newPurchase)

		assert.Equal(t, http.StatusBadGateway, rr.Code)

		var result api.PurchaseResult
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, "vnd_abc", result.Reference)
		assert.Equal(t, "FAILED", result.Status)
		assert.Equal(t, "Invalid recipient number", result.Message)
	})
}
