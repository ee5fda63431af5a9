package settlement

import "fmt"

// ValidationError reports a malformed delivery target or purchase kind.
// Synchronous, no side effect.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a missing or inactive product, or a missing wallet.
// Synchronous, no side effect.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// InsufficientBalanceError reports that the wallet cannot cover the sale
// price. Synchronous, no side effect: the balance is read-verified before
// any provider call.
type InsufficientBalanceError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Required)
}

// ProviderError reports a terminal provider rejection. The transaction is
// FAILED, no debit was applied, and Message carries the provider's own
// wording so the customer can pick a different product.
type ProviderError struct {
	Reference string
	Message   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("purchase %s failed: %s", e.Reference, e.Message)
}
