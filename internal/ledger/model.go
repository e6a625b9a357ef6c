package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType tags an account as savings or current.
type AccountType string

const (
	AccountTypeSavings AccountType = "savings"
	AccountTypeCurrent AccountType = "current"
)

// Valid reports whether the type is one of the supported account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeSavings || t == AccountTypeCurrent
}

// TransactionKind classifies a ledger transaction.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
)

// Account is a customer bank account. The identity is store-assigned and
// monotonic; the number is the externally displayable account number and is
// immutable after creation.
type Account struct {
	ID        int64
	OwnerID   int64
	Name      string
	Type      AccountType
	Number    string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// Transaction is an immutable audit record of a single balance mutation.
// CounterpartyID and CorrelationID are populated only for transfer legs; the
// correlation identifier is shared by the matching out/in pair.
type Transaction struct {
	ID             int64
	AccountID      int64
	Kind           TransactionKind
	Amount         decimal.Decimal
	CounterpartyID int64
	CorrelationID  string
	CreatedAt      time.Time
}

// Entry describes a transaction to append. The store assigns the identity and
// timestamp.
type Entry struct {
	AccountID      int64
	Kind           TransactionKind
	Amount         decimal.Decimal
	CounterpartyID int64
	CorrelationID  string
}

// TransferResult captures the outcome of a completed two-leg transfer.
type TransferResult struct {
	Source      Account
	Destination Account
	OutTx       Transaction
	InTx        Transaction
}
