package storage

import (
	"context"

	"github.com/tunde/vend-settlement/pkg/models"
)

// WalletStore defines the interface for the per-account stored-value ledger.
type WalletStore interface {
	// GetWallet retrieves an account's wallet.
	GetWallet(ctx context.Context, accountID string) (*models.Wallet, error)

	// CreateWallet creates a new wallet for an account.
	CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)

	// CreditWallet atomically adds amount to an account's balance. This is
	// the seam used by the external funding collaborator.
	CreditWallet(ctx context.Context, accountID string, amount int64) (*models.Wallet, error)
}
