package purchases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/mapping"
	"github.com/tunde/vend-settlement/pkg/middleware"
	"github.com/tunde/vend-settlement/pkg/settlement"
)

// PurchaseEngine is the slice of the settlement engine the handler needs.
type PurchaseEngine interface {
	Purchase(ctx context.Context, args settlement.PurchaseArgs) (*settlement.Result, error)
}

// PurchasesHandler holds the dependencies for purchase-related handlers.
type PurchasesHandler struct {
	Engine PurchaseEngine
}

// NewPurchasesHandler creates a new PurchasesHandler.
func NewPurchasesHandler(engine PurchaseEngine) *PurchasesHandler {
	return &PurchasesHandler{Engine: engine}
}

// CreatePurchase handles the logic for submitting a new purchase for the
// authenticated account.
func (h *PurchasesHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	if accountID == "" {
		http.Error(w, "Missing authenticated account", http.StatusUnauthorized)
		return
	}

	var newPurchase api.NewPurchase
	if err := json.NewDecoder(r.Body).Decode(&newPurchase); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Engine.Purchase(r.Context(), mapping.ToPurchaseArgs(accountID, &newPurchase))
	if err != nil {
		h.writePurchaseError(w, err)
		return
	}

	apiResult := mapping.ToApiPurchaseResult(result)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(apiResult); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// writePurchaseError maps the settlement error taxonomy to HTTP statuses.
// A terminal provider rejection is the one case that still gets a JSON
// body: the caller needs the reference and the provider's wording.
func (h *PurchasesHandler) writePurchaseError(w http.ResponseWriter, err error) {
	var validationErr *settlement.ValidationError
	var notFoundErr *settlement.NotFoundError
	var balanceErr *settlement.InsufficientBalanceError
	var providerErr *settlement.ProviderError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusBadRequest)

	case errors.As(err, &notFoundErr):
		http.Error(w, notFoundErr.Message, http.StatusNotFound)

	case errors.As(err, &balanceErr):
		http.Error(w, "Insufficient balance", http.StatusBadRequest)

	case errors.As(err, &providerErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		body := &api.PurchaseResult{
			Reference: providerErr.Reference,
			Status:    "FAILED",
			Message:   providerErr.Message,
		}
		if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
			log.Printf("ERROR: failed to write purchase failure response: %v", encErr)
		}

	default:
		log.Printf("ERROR: purchase failed unexpectedly: %v", err)
		http.Error(w, "Failed to process purchase", http.StatusInternalServerError)
	}
}
