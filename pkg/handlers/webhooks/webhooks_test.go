package webhooks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tunde/vend-settlement/pkg/reconcile"
)

// stubReconciler records updates and returns a preset error.
type stubReconciler struct {
	err     error
	updates []reconcile.Update
}

func (s *stubReconciler) Reconcile(_ context.Context, update reconcile.Update) error {
	s.updates = append(s.updates, update)
	return s.err
}

func postCallback(t *testing.T, listener *stubReconciler, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewWebhooksHandler(listener, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/datahub", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	handler.HandleProviderCallback(rr, req)
	return rr
}

func TestHandleProviderCallback(t *testing.T) {
	t.Run("Success Status Reconciles", func(t *testing.T) {
		listener := &stubReconciler{}
		rr := postCallback(t, listener, `{"reference":"vnd_abc","status":"successful","message":"delivered"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, listener.updates, 1)
		assert.True(t, listener.updates[0].Succeeded)
		assert.Equal(t, "vnd_abc", listener.updates[0].Reference)
	})

	t.Run("Failure Status Reconciles", func(t *testing.T) {
		listener := &stubReconciler{}
		rr := postCallback(t, listener, `{"reference":"vnd_abc","status":"FAILED","message":"number barred"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, listener.updates, 1)
		assert.False(t, listener.updates[0].Succeeded)
		assert.Equal(t, "number barred", listener.updates[0].Message)
	})

	t.Run("Malformed Body Still Returns 200", func(t *testing.T) {
		listener := &stubReconciler{}
		rr := postCallback(t, listener, `{"reference":`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, listener.updates)
	})

	t.Run("Missing Reference Still Returns 200", func(t *testing.T) {
		listener := &stubReconciler{}
		rr := postCallback(t, listener, `{"status":"successful"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, listener.updates)
	})

	t.Run("Ambiguous Status Is Ignored With 200", func(t *testing.T) {
		listener := &stubReconciler{}
		rr := postCallback(t, listener, `{"reference":"vnd_abc","status":"processing"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, listener.updates)
	})

	t.Run("Storage Failure Returns 500 For Retry", func(t *testing.T) {
		listener := &stubReconciler{err: errors.New("dynamodb unavailable")}
		rr := postCallback(t, listener, `{"reference":"vnd_abc","status":"successful"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
