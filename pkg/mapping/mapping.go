package mapping

import (
	"github.com/tunde/vend-settlement/pkg/api"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/settlement"
)

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) *api.Wallet {
	return &api.Wallet{
		AccountId: wallet.AccountID,
		Balance:   wallet.Balance,
		Version:   wallet.Version,
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}

// ToDomainNewWallet converts an API NewWallet model to a domain Wallet
// model. New wallets start empty; balance arrives through the funding
// collaborator.
func ToDomainNewWallet(newWallet *api.NewWallet) *models.Wallet {
	return &models.Wallet{
		AccountID: newWallet.AccountId,
		Balance:   0,
	}
}

// ToApiTransaction converts a domain Transaction model to an API
// Transaction model. The debited and fulfilled flags are settlement
// internals and are not exposed.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Reference:      tx.Reference,
		AccountId:      tx.AccountID,
		Kind:           string(tx.Kind),
		ProductId:      tx.ProductID,
		ProviderId:     tx.ProviderID,
		DeliveryTarget: tx.DeliveryTarget,
		Amount:         tx.Amount,
		Status:         string(tx.Status),
		FailureReason:  tx.FailureReason,
		Metadata:       tx.Metadata,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

// ToApiPurchaseResult converts an engine purchase result to an API
// PurchaseResult model.
func ToApiPurchaseResult(result *settlement.Result) *api.PurchaseResult {
	return &api.PurchaseResult{
		Reference:   result.Reference,
		Status:      string(result.Status),
		Message:     result.Message,
		Substituted: result.Substituted,
	}
}

// ToPurchaseArgs converts an API NewPurchase model to engine arguments
// for the authenticated account.
func ToPurchaseArgs(accountID string, newPurchase *api.NewPurchase) settlement.PurchaseArgs {
	return settlement.PurchaseArgs{
		AccountID:      accountID,
		ProductID:      newPurchase.ProductId,
		DeliveryTarget: newPurchase.DeliveryTarget,
		Kind:           models.PurchaseKind(newPurchase.Kind),
	}
}
