package ledger

import "errors"

var (
	// ErrAccountNotFound occurs when the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount occurs when an operation amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAccountType occurs when an account type is neither savings nor current.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrSameAccount occurs when a transfer names the same account on both sides.
	ErrSameAccount = errors.New("source and destination accounts are the same")

	// ErrDuplicateAccountNumber indicates account number generation kept
	// colliding. The store retries internally, so callers should never see
	// this in normal operation.
	ErrDuplicateAccountNumber = errors.New("duplicate account number")

	// ErrLedgerConsistency indicates a partially applied transfer could not be
	// reversed. It is never masked as an ordinary failure.
	ErrLedgerConsistency = errors.New("ledger consistency violation")
)
