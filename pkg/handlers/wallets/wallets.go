package wallets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/mapping"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Store storage.WalletStore
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(store storage.WalletStore) *WalletsHandler {
	return &WalletsHandler{Store: store}
}

// CreateWallet handles the logic for creating a new wallet.
func (h *WalletsHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var newWallet api.NewWallet
	if err := json.NewDecoder(r.Body).Decode(&newWallet); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if newWallet.AccountId == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	domainWallet := mapping.ToDomainNewWallet(&newWallet)

	createdWallet, err := h.Store.CreateWallet(r.Context(), domainWallet)
	if err != nil {
		if errors.Is(err, storage.ErrWalletExists) {
			http.Error(w, "Wallet for this account already exists", http.StatusConflict)
		} else {
			http.Error(w, fmt.Sprintf("Failed to create wallet: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiWallet := mapping.ToApiWallet(createdWallet)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(apiWallet); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// CreditWallet handles the funding collaborator's deposit callback.
func (h *WalletsHandler) CreditWallet(w http.ResponseWriter, r *http.Request, accountID string) {
	var credit api.WalletCredit
	if err := json.NewDecoder(r.Body).Decode(&credit); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if credit.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	updatedWallet, err := h.Store.CreditWallet(r.Context(), accountID, credit.Amount)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			http.Error(w, "Wallet not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to credit wallet: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiWallet := mapping.ToApiWallet(updatedWallet)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiWallet); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetWalletByAccountId handles the logic for retrieving an account's wallet.
func (h *WalletsHandler) GetWalletByAccountId(w http.ResponseWriter, r *http.Request, accountID string) {
	domainWallet, err := h.Store.GetWallet(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			http.Error(w, "Wallet not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve wallet: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiWallet := mapping.ToApiWallet(domainWallet)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiWallet); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
