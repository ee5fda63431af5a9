package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tunde/vend-settlement/pkg/fallback"
	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/notifier"
	"github.com/tunde/vend-settlement/pkg/providers"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// Router abstracts the fallback router so the engine can be tested with a
// scripted implementation.
type Router interface {
	Attempt(ctx context.Context, product *models.Product, target, reference string) fallback.Result
}

// Engine is the settlement orchestrator. One instance serves every
// purchase kind; the per-kind differences live in the kindSpecs table and
// in the provider adapters.
type Engine struct {
	Wallets  storage.WalletStore
	Txs      storage.TransactionStore
	Catalog  storage.CatalogStore
	Router   Router
	Notifier notifier.Emitter
	Logger   *slog.Logger
}

// New creates a new Engine.
func New(wallets storage.WalletStore, txs storage.TransactionStore, catalog storage.CatalogStore, router Router, emitter notifier.Emitter, logger *slog.Logger) *Engine {
	return &Engine{
		Wallets:  wallets,
		Txs:      txs,
		Catalog:  catalog,
		Router:   router,
		Notifier: emitter,
		Logger:   logger,
	}
}

// PurchaseArgs identifies one purchase attempt.
type PurchaseArgs struct {
	AccountID      string
	ProductID      string
	DeliveryTarget string
	Kind           models.PurchaseKind
}

// Result summarizes a purchase attempt for the caller.
type Result struct {
	Reference   string
	Status      models.TransactionStatus
	Message     string
	Substituted bool
}

// Purchase runs one purchase end to end: validate, resolve the product,
// read-verify the balance, persist a PENDING transaction, submit via the
// fallback router, classify the outcome, debit, finalize and notify.
//
// The PENDING record is written before the provider call on purpose:
// every external call needs a durable local anchor to reconcile against,
// even across a crash mid-call.
func (e *Engine) Purchase(ctx context.Context, args PurchaseArgs) (*Result, error) {
	// 1. Kind-specific target syntax.
	if err := validateTarget(args.Kind, args.DeliveryTarget); err != nil {
		return nil, err
	}

	// 2. Resolve the product.
	product, err := e.Catalog.GetProduct(ctx, args.ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, &NotFoundError{Message: "product not found"}
		}
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if !product.Active || product.Kind != args.Kind {
		return nil, &NotFoundError{Message: "product is no longer available"}
	}

	// 3. Load the wallet.
	wallet, err := e.Wallets.GetWallet(ctx, args.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			return nil, &NotFoundError{Message: "wallet not found"}
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	// 4. Read-verify the balance strictly before any provider call. The
	// debit itself is still conditionally guarded; this check only stops
	// obviously unfundable purchases from reaching a provider.
	if wallet.Balance < product.SalePrice {
		return nil, &InsufficientBalanceError{Balance: wallet.Balance, Required: product.SalePrice}
	}

	// 5. Unguessable reference, doubling as the provider-facing idempotency token.
	reference := "vnd_" + uuid.New().String()

	// 6. Durable PENDING anchor before the provider call.
	tx, err := e.Txs.CreateTransaction(ctx, &models.Transaction{
		Reference:      reference,
		AccountID:      args.AccountID,
		Kind:           args.Kind,
		ProductID:      product.ID,
		ProviderID:     product.ProviderID,
		DeliveryTarget: args.DeliveryTarget,
		Amount:         product.SalePrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}

	// 7. Submit via the fallback router.
	routed := e.Router.Attempt(ctx, product, args.DeliveryTarget, reference)

	if routed.Substituted {
		if tagErr := e.Txs.TagSubstitution(ctx, reference, routed.Product); tagErr != nil {
			e.Logger.Error("failed to record substitution", slog.String("reference", reference), slog.Any("error", tagErr))
		}
	}

	// 8-10. Classify and settle.
	spec := kindSpecs[args.Kind]
	switch routed.Outcome.Status {
	case providers.OutcomeFulfilled:
		return e.settleFulfilled(ctx, tx, routed, spec)

	case providers.OutcomeAccepted:
		return e.settleAccepted(ctx, tx, routed, spec)

	case providers.OutcomeFailed:
		return nil, e.settleFailed(ctx, tx, routed, spec)

	default: // OutcomeUnknown
		// The provider may still fulfill and call back. No debit yet; the
		// reconciliation listener or the sweep finishes the job.
		e.Logger.Warn("provider outcome ambiguous, leaving transaction pending",
			slog.String("reference", reference), slog.String("provider", routed.Product.ProviderID))
		e.notify(ctx, tx, fmt.Sprintf("Your %s purchase is being processed.", spec.label), models.SeverityInfo)
		return &Result{
			Reference:   reference,
			Status:      models.PENDING,
			Message:     "purchase is being processed",
			Substituted: routed.Substituted,
		}, nil
	}
}

// settleFulfilled handles a synchronous provider success: debit, complete, notify.
func (e *Engine) settleFulfilled(ctx context.Context, tx *models.Transaction, routed fallback.Result, spec kindSpec) (*Result, error) {
	// Record fulfillment before touching the wallet so a failed debit write
	// leaves a findable fulfilled-but-undebited record for the sweep.
	if err := e.Txs.MarkFulfilled(ctx, tx.Reference); err != nil {
		e.Logger.Error("failed to mark transaction fulfilled", slog.String("reference", tx.Reference), slog.Any("error", err))
	}

	if err := e.debit(ctx, tx); err != nil {
		// Provider has fulfilled, wallet is not yet charged. The sweep must
		// repair this; nothing useful can be done synchronously.
		e.notify(ctx, tx, fmt.Sprintf("Your %s purchase was delivered.", spec.label), models.SeverityInfo)
		return &Result{
			Reference:   tx.Reference,
			Status:      models.PENDING,
			Message:     "purchase delivered, settlement in progress",
			Substituted: routed.Substituted,
		}, nil
	}

	if _, err := e.Txs.CompleteTransaction(ctx, tx.Reference); err != nil {
		e.Logger.Error("failed to complete transaction after debit",
			slog.String("reference", tx.Reference), slog.Any("error", err))
	}

	e.notify(ctx, tx, fmt.Sprintf("Your %s purchase was delivered. %s", spec.label, routed.Outcome.Message), models.SeverityInfo)
	return &Result{
		Reference:   tx.Reference,
		Status:      models.COMPLETED,
		Message:     routed.Outcome.Message,
		Substituted: routed.Substituted,
	}, nil
}

// settleAccepted handles a provider that queued fulfillment: debit now,
// stay PENDING until the callback resolves it.
func (e *Engine) settleAccepted(ctx context.Context, tx *models.Transaction, routed fallback.Result, spec kindSpec) (*Result, error) {
	if err := e.debit(ctx, tx); err == nil {
		e.notify(ctx, tx, fmt.Sprintf("Your %s purchase was accepted and is being delivered.", spec.label), models.SeverityInfo)
	}
	return &Result{
		Reference:   tx.Reference,
		Status:      models.PENDING,
		Message:     "purchase accepted by provider",
		Substituted: routed.Substituted,
	}, nil
}

// settleFailed handles a terminal provider rejection: no debit, FAILED,
// provider message surfaced.
func (e *Engine) settleFailed(ctx context.Context, tx *models.Transaction, routed fallback.Result, spec kindSpec) error {
	reason := routed.Outcome.Message
	if reason == "" {
		reason = "provider could not fulfill the purchase"
	}

	if _, err := e.Txs.FailTransaction(ctx, tx.Reference, reason); err != nil {
		e.Logger.Error("failed to mark transaction failed",
			slog.String("reference", tx.Reference), slog.Any("error", err))
	}

	e.notify(ctx, tx, fmt.Sprintf("Your %s purchase failed: %s", spec.label, reason), models.SeverityError)
	return &ProviderError{Reference: tx.Reference, Message: reason}
}

// debit applies the exactly-once wallet debit for a transaction. A debit
// that was already applied through another path counts as success. Any
// other failure is the dangerous window: the provider side has succeeded
// but the ledger write did not, so it is logged at the highest severity
// for the reconciliation sweep to repair.
func (e *Engine) debit(ctx context.Context, tx *models.Transaction) error {
	err := e.Txs.DebitForTransaction(ctx, tx)
	if err == nil || errors.Is(err, storage.ErrAlreadyDebited) {
		return nil
	}

	e.Logger.Error("CRITICAL: provider succeeded but wallet debit failed, sweep must reconcile",
		slog.String("reference", tx.Reference),
		slog.String("account", tx.AccountID),
		slog.Int64("amount", tx.Amount),
		slog.Any("error", err))
	return err
}

// notify hands off a fire-and-forget notification. Failures are logged
// and swallowed; a purchase never fails because a notification did.
func (e *Engine) notify(ctx context.Context, tx *models.Transaction, message string, severity models.NotificationSeverity) {
	err := e.Notifier.Enqueue(ctx, models.Notification{
		AccountID: tx.AccountID,
		Reference: tx.Reference,
		Message:   message,
		Severity:  severity,
	})
	if err != nil {
		e.Logger.Error("failed to enqueue notification", slog.String("reference", tx.Reference), slog.Any("error", err))
	}
}
