package transaction

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/swyft-bank/swyft/internal/ledger"
)

func TestRecordAndList(t *testing.T) {
	store := ledger.NewInMemory()
	rec := NewRecorder(store)
	ctx := context.Background()

	acct, err := store.CreateAccount(ctx, 1, ledger.AccountTypeSavings, "Ada Obi")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	first, err := rec.Record(ctx, RecordInput{AccountID: acct.ID, Kind: ledger.KindDeposit, Amount: decimal.NewFromInt(500)})
	if err != nil {
		t.Fatalf("record deposit: %v", err)
	}
	second, err := rec.Record(ctx, RecordInput{AccountID: acct.ID, Kind: ledger.KindWithdrawal, Amount: decimal.NewFromInt(200)})
	if err != nil {
		t.Fatalf("record withdrawal: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected monotonic transaction ids, got %d then %d", first.ID, second.ID)
	}

	history, err := rec.GetAllAccountTransactions(ctx, acct.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	if history[0].Kind != ledger.KindDeposit || history[1].Kind != ledger.KindWithdrawal {
		t.Fatalf("expected oldest first ordering, got %s then %s", history[0].Kind, history[1].Kind)
	}
}

func TestRecordValidation(t *testing.T) {
	store := ledger.NewInMemory()
	rec := NewRecorder(store)
	ctx := context.Background()

	if _, err := rec.Record(ctx, RecordInput{AccountID: 42, Kind: ledger.KindDeposit, Amount: decimal.NewFromInt(10)}); err != ledger.ErrAccountNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}

	acct, _ := store.CreateAccount(ctx, 1, ledger.AccountTypeCurrent, "Ada Obi")
	if _, err := rec.Record(ctx, RecordInput{AccountID: acct.ID, Kind: ledger.KindDeposit, Amount: decimal.Zero}); err != ledger.ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
