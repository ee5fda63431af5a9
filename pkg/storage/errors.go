package storage

import "errors"

// ErrInsufficientFunds is returned when a wallet's balance cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrWalletNotFound is returned when no wallet exists for an account.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrWalletExists is returned when a wallet already exists for an account.
var ErrWalletExists = errors.New("wallet already exists")

// ErrTransactionNotFound is returned when no transaction exists for a reference.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrProductNotFound is returned when a catalog lookup finds no product.
var ErrProductNotFound = errors.New("product not found")

// ErrNoSubstitute is returned when the catalog holds no viable substitute product.
var ErrNoSubstitute = errors.New("no substitute product available")

// ErrAlreadyDebited is returned when a debit has already been applied for a transaction.
// Callers treat it as confirmation that the exactly-once guarantee held.
var ErrAlreadyDebited = errors.New("transaction already debited")

// ErrDuplicateReference is returned when a transaction record already exists for a reference.
var ErrDuplicateReference = errors.New("transaction reference already exists")
