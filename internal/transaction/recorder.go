package transaction

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/swyft-bank/swyft/internal/ledger"
)

// Recorder appends immutable transaction records and reads per-account
// history. Records live in the ledger store; the recorder never retains
// copies of its own.
type Recorder struct {
	store ledger.Store
}

// NewRecorder builds a recorder over the ledger store.
func NewRecorder(store ledger.Store) *Recorder {
	return &Recorder{store: store}
}

// RecordInput captures a single-leg transaction to append.
type RecordInput struct {
	AccountID      int64
	Kind           ledger.TransactionKind
	Amount         decimal.Decimal
	CounterpartyID int64
	CorrelationID  string
}

// Record appends the transaction, letting the store assign identity and
// timestamp.
func (r *Recorder) Record(ctx context.Context, in RecordInput) (ledger.Transaction, error) {
	return r.store.AppendTransaction(ctx, ledger.Entry{
		AccountID:      in.AccountID,
		Kind:           in.Kind,
		Amount:         in.Amount,
		CounterpartyID: in.CounterpartyID,
		CorrelationID:  in.CorrelationID,
	})
}

// GetAllAccountTransactions returns the account's history, oldest first.
func (r *Recorder) GetAllAccountTransactions(ctx context.Context, accountID int64) ([]ledger.Transaction, error) {
	return r.store.TransactionsForAccount(ctx, accountID)
}
