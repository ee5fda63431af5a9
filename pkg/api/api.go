package api

import "time"

// NewWallet defines model for NewWallet.
type NewWallet struct {
	AccountId string `json:"account_id"`
}

// Wallet defines model for Wallet.
type Wallet struct {
	AccountId string    `json:"account_id"`
	Balance   int64     `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletCredit defines model for WalletCredit, the funding-collaborator
// request body.
type WalletCredit struct {
	Amount int64 `json:"amount"`
}

// NewPurchase defines model for NewPurchase.
type NewPurchase struct {
	ProductId      string `json:"product_id"`
	Kind           string `json:"kind"`
	DeliveryTarget string `json:"delivery_target"`
}

// PurchaseResult defines model for PurchaseResult.
type PurchaseResult struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	Substituted bool   `json:"substituted,omitempty"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	Reference      string            `json:"reference"`
	AccountId      string            `json:"account_id"`
	Kind           string            `json:"kind"`
	ProductId      string            `json:"product_id"`
	ProviderId     string            `json:"provider_id"`
	DeliveryTarget string            `json:"delivery_target"`
	Amount         int64             `json:"amount"`
	Status         string            `json:"status"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ProviderCallback defines model for ProviderCallback, the normalized
// shape every provider webhook is parsed into. Reference carries the
// idempotency reference originally sent with the purchase request.
type ProviderCallback struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Message string `json:"message"`
}
