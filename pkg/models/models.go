package models

import (
	"time"
)

// TransactionStatus defines the possible states of a purchase transaction.
// The state machine is PENDING -> COMPLETED | FAILED; both outcomes are
// terminal and the first transition wins.
type TransactionStatus string

const (
	PENDING   TransactionStatus = "PENDING"
	COMPLETED TransactionStatus = "COMPLETED"
	FAILED    TransactionStatus = "FAILED"
)

// Terminal reports whether no further status transition is permitted.
func (s TransactionStatus) Terminal() bool {
	return s == COMPLETED || s == FAILED
}

// PurchaseKind identifies which fulfillment family a purchase belongs to.
type PurchaseKind string

const (
	KindData        PurchaseKind = "DATA"
	KindAirtime     PurchaseKind = "AIRTIME"
	KindElectricity PurchaseKind = "ELECTRICITY"
	KindTV          PurchaseKind = "TV"
	KindExam        PurchaseKind = "EXAM"
)

// Wallet represents a single account's stored-value balance.
// Balance is held in minor currency units (kobo). It is mutated only
// through conditional updates; an unguarded read-modify-write is never
// performed.
type Wallet struct {
	AccountID string    `dynamodbav:"account_id"`
	Balance   int64     `dynamodbav:"balance"`
	Version   int64     `dynamodbav:"version"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Product is a catalog entry: one purchasable deliverable at one provider
// and one price. Products are admin-curated and read-only during a
// purchase, except for the active flag, which the fallback router clears
// when a provider rejects the product as unavailable.
type Product struct {
	ID          string       `dynamodbav:"id"`
	ProviderID  string       `dynamodbav:"provider_id"`
	ProviderSKU string       `dynamodbav:"provider_sku"`
	Kind        PurchaseKind `dynamodbav:"kind"`
	Network     string       `dynamodbav:"network"`
	Name        string       `dynamodbav:"name"`
	CostPrice   int64        `dynamodbav:"cost_price"`
	SalePrice   int64        `dynamodbav:"sale_price"`
	Active      bool         `dynamodbav:"active"`
}

// Metadata keys recorded on a transaction.
const (
	MetaSubstituteProduct  = "substitute_product_id"
	MetaSubstituteProvider = "substitute_provider_id"
)

// Transaction is the durable record of one purchase attempt. It is
// created in PENDING state before any provider call is made, so every
// external call has a local anchor to reconcile against, even across a
// crash mid-call.
//
// Amount is fixed at creation and never changes, even when the fallback
// router substitutes a different product. Debited flips to true at most
// once, guarded by a conditional write.
type Transaction struct {
	Reference      string            `dynamodbav:"reference"`
	AccountID      string            `dynamodbav:"account_id"`
	Kind           PurchaseKind      `dynamodbav:"kind"`
	ProductID      string            `dynamodbav:"product_id"`
	ProviderID     string            `dynamodbav:"provider_id"`
	DeliveryTarget string            `dynamodbav:"delivery_target"`
	Amount         int64             `dynamodbav:"amount"`
	Status         TransactionStatus `dynamodbav:"status"`
	Debited        bool              `dynamodbav:"debited"`
	Fulfilled      bool              `dynamodbav:"fulfilled"`
	FailureReason  string            `dynamodbav:"failure_reason,omitempty"`
	Metadata       map[string]string `dynamodbav:"metadata"`
	CreatedAt      time.Time         `dynamodbav:"created_at"`
	UpdatedAt      time.Time         `dynamodbav:"updated_at"`
}

// NotificationSeverity classifies a notification for the downstream
// delivery collaborator.
type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "INFO"
	SeverityWarning NotificationSeverity = "WARNING"
	SeverityError   NotificationSeverity = "ERROR"
)

// Notification is a write-once, fire-and-forget message to an account.
type Notification struct {
	AccountID string               `json:"account_id"`
	Reference string               `json:"reference"`
	Message   string               `json:"message"`
	Severity  NotificationSeverity `json:"severity"`
}
