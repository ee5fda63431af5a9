package webhooks

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/reconcile"
)

// Reconciler is the slice of the reconciliation listener the handler needs.
type Reconciler interface {
	Reconcile(ctx context.Context, update reconcile.Update) error
}

// WebhooksHandler holds the dependencies for provider callback handlers.
type WebhooksHandler struct {
	Listener Reconciler
	Logger   *slog.Logger
}

// NewWebhooksHandler creates a new WebhooksHandler.
func NewWebhooksHandler(listener Reconciler, logger *slog.Logger) *WebhooksHandler {
	return &WebhooksHandler{Listener: listener, Logger: logger}
}

var successStatuses = map[string]bool{
	"success":    true,
	"successful": true,
	"delivered":  true,
	"completed":  true,
}

var failureStatuses = map[string]bool{
	"failed":   true,
	"failure":  true,
	"error":    true,
	"rejected": true,
	"reversed": true,
}

// HandleProviderCallback applies one provider webhook. Malformed bodies,
// unknown references and ambiguous statuses are acknowledged with 200 so
// the provider stops retrying; only a storage failure earns a 500, which
// is safe to retry because reconciliation is idempotent.
func (h *WebhooksHandler) HandleProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var callback api.ProviderCallback
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		h.Logger.Warn("discarding malformed provider callback",
			slog.String("provider", provider), slog.Any("error", err))
		w.WriteHeader(http.StatusOK)
		return
	}

	if callback.Reference == "" {
		h.Logger.Warn("discarding provider callback without reference", slog.String("provider", provider))
		w.WriteHeader(http.StatusOK)
		return
	}

	status := strings.ToLower(strings.TrimSpace(callback.Status))
	if !successStatuses[status] && !failureStatuses[status] {
		// Progress updates and unrecognized statuses resolve nothing.
		h.Logger.Info("ignoring non-terminal provider callback",
			slog.String("provider", provider),
			slog.String("reference", callback.Reference),
			slog.String("status", callback.Status))
		w.WriteHeader(http.StatusOK)
		return
	}

	update := reconcile.Update{
		Reference: callback.Reference,
		Succeeded: successStatuses[status],
		Message:   callback.Message,
	}
	if err := h.Listener.Reconcile(r.Context(), update); err != nil {
		h.Logger.Error("failed to apply provider callback",
			slog.String("provider", provider),
			slog.String("reference", callback.Reference),
			slog.Any("error", err))
		http.Error(w, "Failed to apply callback", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
