package transactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/mapping"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// TransactionsHandler holds the dependencies for transaction-related handlers.
type TransactionsHandler struct {
	Store storage.TransactionReader
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(store storage.TransactionReader) *TransactionsHandler {
	return &TransactionsHandler{Store: store}
}

// GetTransactionByReference handles the logic for retrieving a purchase
// by its reference. Callers poll this while a purchase is PENDING.
func (h *TransactionsHandler) GetTransactionByReference(w http.ResponseWriter, r *http.Request, reference string) {
	domainTx, err := h.Store.GetTransactionByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve transaction: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiTx := mapping.ToApiTransaction(domainTx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiTx); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// ListTransactionsByAccountId handles the logic for retrieving all
// purchases for an account, newest first.
func (h *TransactionsHandler) ListTransactionsByAccountId(w http.ResponseWriter, r *http.Request, accountID string) {
	domainTxs, err := h.Store.ListTransactionsByAccountID(r.Context(), accountID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve transactions: %v", err), http.StatusInternalServerError)
		return
	}

	apiTxs := make([]*api.Transaction, len(domainTxs))
	for i, tx := range domainTxs {
		apiTxs[i] = mapping.ToApiTransaction(&tx)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiTxs); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
