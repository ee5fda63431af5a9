package storage

import (
	"context"
	"time"

	"github.com/tunde/vend-settlement/pkg/models"
)

// TransactionReader defines the interface for reading purchase transactions.
type TransactionReader interface {
	// GetTransactionByReference retrieves a transaction by its idempotency reference.
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)

	// ListTransactionsByAccountID retrieves all transactions for an account.
	ListTransactionsByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error)

	// GetStuckTransactions retrieves transactions that have been PENDING for
	// longer than maxAge. The reconciliation sweep feeds on this.
	GetStuckTransactions(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error)
}

// TransactionWriter defines the interface for advancing a purchase
// transaction through its state machine. Every mutation is a conditional
// write; the applied return value reports whether the guard held, so a
// lost race is distinguishable from a storage failure.
type TransactionWriter interface {
	// CreateTransaction persists a new PENDING transaction. It must be called
	// before any provider call is issued.
	CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// DebitForTransaction atomically debits the wallet by tx.Amount and marks
	// the transaction debited. The debit is applied at most once per
	// transaction: a second call returns ErrAlreadyDebited and leaves the
	// wallet untouched.
	DebitForTransaction(ctx context.Context, tx *models.Transaction) error

	// CompleteTransaction transitions PENDING -> COMPLETED. Returns false if
	// the transaction was already terminal.
	CompleteTransaction(ctx context.Context, reference string) (bool, error)

	// FailTransaction transitions PENDING -> FAILED for an undebited
	// transaction. Returns false if the transaction was already terminal.
	FailTransaction(ctx context.Context, reference, reason string) (bool, error)

	// RefundAndFail reverses an applied debit and transitions PENDING ->
	// FAILED in one atomic write, preserving the invariant that FAILED
	// transactions never carry a debit. Returns false if the transaction was
	// already terminal.
	RefundAndFail(ctx context.Context, tx *models.Transaction, reason string) (bool, error)

	// MarkFulfilled records that the provider confirmed fulfillment. Used to
	// flag the dangerous fulfilled-but-undebited window for the sweep when
	// the debit write fails after a provider success.
	MarkFulfilled(ctx context.Context, reference string) error

	// TagSubstitution records a fallback substitution on the transaction's metadata.
	TagSubstitution(ctx context.Context, reference string, substitute *models.Product) error
}

// TransactionStore combines the reader and writer interfaces.
type TransactionStore interface {
	TransactionReader
	TransactionWriter
}
