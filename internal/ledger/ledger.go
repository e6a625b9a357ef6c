package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the authoritative registry of accounts and transactions. It owns
// identity assignment and is the only code allowed to mutate balances.
type Store interface {
	// CreateAccount registers a new account with a zero balance, assigning the
	// next identity and a freshly generated unique account number.
	CreateAccount(ctx context.Context, ownerID int64, typ AccountType, name string) (Account, error)

	// GetAccount fetches an account by identity.
	GetAccount(ctx context.Context, id int64) (Account, error)

	// GetAccountByNumber fetches an account by its displayable account number.
	GetAccountByNumber(ctx context.Context, number string) (Account, error)

	// ListAccountsForOwner returns the owner's accounts in creation order.
	ListAccountsForOwner(ctx context.Context, ownerID int64) ([]Account, error)

	// ApplyBalanceDelta atomically sets balance += delta, rejecting any delta
	// that would leave the balance negative. Every deposit and withdrawal leg
	// passes through here.
	ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) (Account, error)

	// Transfer atomically debits the source and credits the destination,
	// appending the linked TransferOut/TransferIn records before any
	// concurrent reader can observe a single-leg state. Either both legs and
	// both records exist, or neither does.
	Transfer(ctx context.Context, sourceID, destID int64, amount decimal.Decimal) (TransferResult, error)

	// AppendTransaction records a single-leg transaction, assigning identity
	// and timestamp.
	AppendTransaction(ctx context.Context, entry Entry) (Transaction, error)

	// TransactionsForAccount returns the account's history, oldest first.
	TransactionsForAccount(ctx context.Context, accountID int64) ([]Transaction, error)
}
