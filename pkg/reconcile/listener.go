package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/notifier"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// Update is one provider callback, already classified by the adapter
// layer into a definitive success or failure for a single reference.
type Update struct {
	Reference string
	Succeeded bool
	Message   string
}

// Listener applies provider callbacks and sweep repairs to pending
// transactions. Every entry point is idempotent: a terminal transaction
// is never touched again, and a duplicate delivery of the same update is
// a no-op.
type Listener struct {
	Txs      storage.TransactionStore
	Notifier notifier.Emitter
	Logger   *slog.Logger
}

// New creates a new Listener.
func New(txs storage.TransactionStore, emitter notifier.Emitter, logger *slog.Logger) *Listener {
	return &Listener{
		Txs:      txs,
		Notifier: emitter,
		Logger:   logger,
	}
}

// Reconcile applies one provider callback. Unknown references and
// already-terminal transactions are acknowledged without effect so the
// provider never retries forever.
func (l *Listener) Reconcile(ctx context.Context, update Update) error {
	tx, err := l.Txs.GetTransactionByReference(ctx, update.Reference)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			l.Logger.Warn("callback for unknown reference ignored", slog.String("reference", update.Reference))
			return nil
		}
		return fmt.Errorf("failed to load transaction for callback: %w", err)
	}

	if tx.Status.Terminal() {
		l.Logger.Info("duplicate callback for settled transaction ignored",
			slog.String("reference", tx.Reference), slog.String("status", string(tx.Status)))
		return nil
	}

	if update.Succeeded {
		return l.settleSuccess(ctx, tx, update.Message)
	}
	return l.settleFailure(ctx, tx, update.Message)
}

// Repair finishes one stuck transaction found by the sweep. The only
// state the sweep can finish on its own is fulfilled-but-undebited; a
// debited transaction still awaiting its callback is left alone, and an
// unconfirmed one past the sweep window is failed, which is safe because
// no debit was ever applied to it.
func (l *Listener) Repair(ctx context.Context, reference string) error {
	tx, err := l.Txs.GetTransactionByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load transaction for repair: %w", err)
	}

	if tx.Status.Terminal() {
		return nil
	}

	switch {
	case tx.Fulfilled && !tx.Debited:
		l.Logger.Warn("repairing fulfilled but undebited transaction", slog.String("reference", tx.Reference))
		return l.settleSuccess(ctx, tx, "settled by reconciliation sweep")

	case tx.Debited:
		// Accepted long ago and still no callback. Charging stands until
		// the provider says otherwise; only flag it for operators.
		l.Logger.Warn("debited transaction still awaiting provider confirmation",
			slog.String("reference", tx.Reference), slog.String("provider", tx.ProviderID))
		return nil

	default:
		return l.settleFailure(ctx, tx, "no provider confirmation received")
	}
}

// settleSuccess finishes a pending transaction the provider fulfilled:
// apply the outstanding debit if there is one, then complete.
func (l *Listener) settleSuccess(ctx context.Context, tx *models.Transaction, message string) error {
	if !tx.Fulfilled {
		if err := l.Txs.MarkFulfilled(ctx, tx.Reference); err != nil {
			l.Logger.Error("failed to mark transaction fulfilled", slog.String("reference", tx.Reference), slog.Any("error", err))
		}
	}

	if !tx.Debited {
		err := l.Txs.DebitForTransaction(ctx, tx)
		switch {
		case err == nil, errors.Is(err, storage.ErrAlreadyDebited):
			// Settled, possibly through a racing path.
		case errors.Is(err, storage.ErrInsufficientFunds):
			// Delivered but the wallet was drained in the meantime. Leave
			// it pending for the next sweep pass rather than write off the
			// charge.
			l.Logger.Error("CRITICAL: fulfilled transaction cannot be debited, wallet balance too low",
				slog.String("reference", tx.Reference), slog.String("account", tx.AccountID), slog.Int64("amount", tx.Amount))
			return nil
		default:
			return fmt.Errorf("failed to debit wallet during reconciliation: %w", err)
		}
	}

	applied, err := l.Txs.CompleteTransaction(ctx, tx.Reference)
	if err != nil {
		return fmt.Errorf("failed to complete transaction during reconciliation: %w", err)
	}
	if !applied {
		// Another path won the terminal transition; nothing left to do.
		return nil
	}

	l.notify(ctx, tx, fmt.Sprintf("Your purchase %s was delivered. %s", tx.Reference, message), models.SeverityInfo)
	return nil
}

// settleFailure finishes a pending transaction the provider rejected.
// A transaction that was already charged gets the credit back in the
// same atomic write that marks it FAILED, so a failed purchase never
// keeps the customer's money.
func (l *Listener) settleFailure(ctx context.Context, tx *models.Transaction, reason string) error {
	if reason == "" {
		reason = "provider reported the purchase failed"
	}

	var applied bool
	var err error
	if tx.Debited {
		applied, err = l.Txs.RefundAndFail(ctx, tx, reason)
	} else {
		applied, err = l.Txs.FailTransaction(ctx, tx.Reference, reason)
	}
	if err != nil {
		return fmt.Errorf("failed to fail transaction during reconciliation: %w", err)
	}
	if !applied {
		return nil
	}

	l.notify(ctx, tx, fmt.Sprintf("Your purchase %s failed: %s", tx.Reference, reason), models.SeverityError)
	return nil
}

func (l *Listener) notify(ctx context.Context, tx *models.Transaction, message string, severity models.NotificationSeverity) {
	err := l.Notifier.Enqueue(ctx, models.Notification{
		AccountID: tx.AccountID,
		Reference: tx.Reference,
		Message:   message,
		Severity:  severity,
	})
	if err != nil {
		l.Logger.Error("failed to enqueue notification", slog.String("reference", tx.Reference), slog.Any("error", err))
	}
}
