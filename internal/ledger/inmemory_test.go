package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestAccount(t *testing.T, s Store, ownerID int64) Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), ownerID, AccountTypeSavings, "Ada Obi")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acct
}

func TestMemoryStore_CreateAccount(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	first := newTestAccount(t, s, 1)
	second := newTestAccount(t, s, 1)

	if !first.Balance.IsZero() {
		t.Fatalf("expected zero opening balance, got %s", first.Balance)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("expected monotonic ids, got %d then %d", first.ID, second.ID)
	}
	if first.Number == second.Number {
		t.Fatalf("account numbers must be unique, both %s", first.Number)
	}
	if len(first.Number) != accountNumberLength {
		t.Fatalf("expected %d digit number, got %q", accountNumberLength, first.Number)
	}

	if _, err := s.CreateAccount(ctx, 1, AccountType("fixed"), "Ada Obi"); err != ErrInvalidAccountType {
		t.Fatalf("expected invalid account type, got %v", err)
	}

	accounts, err := s.ListAccountsForOwner(ctx, 1)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID != first.ID || accounts[1].ID != second.ID {
		t.Fatalf("expected creation order [%d %d], got %+v", first.ID, second.ID, accounts)
	}

	byNumber, err := s.GetAccountByNumber(ctx, second.Number)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if byNumber.ID != second.ID {
		t.Fatalf("expected account %d, got %d", second.ID, byNumber.ID)
	}
}

func TestMemoryStore_ApplyBalanceDelta(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	acct := newTestAccount(t, s, 1)

	updated, err := s.ApplyBalanceDelta(ctx, acct.ID, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance 500, got %s", updated.Balance)
	}

	if _, err := s.ApplyBalanceDelta(ctx, acct.ID, decimal.NewFromInt(-600)); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	current, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !current.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("rejected debit must not change balance, got %s", current.Balance)
	}

	// Deposit then withdraw of the same amount round-trips.
	if _, err := s.ApplyBalanceDelta(ctx, acct.ID, decimal.NewFromInt(-500)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	current, _ = s.GetAccount(ctx, acct.ID)
	if !current.Balance.IsZero() {
		t.Fatalf("expected balance back to zero, got %s", current.Balance)
	}

	if _, err := s.ApplyBalanceDelta(ctx, 99, decimal.NewFromInt(1)); err != ErrAccountNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestMemoryStore_TransferConservesValue(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	src := newTestAccount(t, s, 1)
	dst := newTestAccount(t, s, 2)
	SeedBalance(s, src.ID, decimal.NewFromInt(10_000))

	res, err := s.Transfer(ctx, src.ID, dst.ID, decimal.NewFromInt(1_500))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !res.Source.Balance.Equal(decimal.NewFromInt(8_500)) {
		t.Fatalf("expected source balance 8500, got %s", res.Source.Balance)
	}
	if !res.Destination.Balance.Equal(decimal.NewFromInt(1_500)) {
		t.Fatalf("expected destination balance 1500, got %s", res.Destination.Balance)
	}
	total := res.Source.Balance.Add(res.Destination.Balance)
	if !total.Equal(decimal.NewFromInt(10_000)) {
		t.Fatalf("value not conserved, total=%s", total)
	}

	if res.OutTx.Kind != KindTransferOut || res.InTx.Kind != KindTransferIn {
		t.Fatalf("unexpected record kinds: %s / %s", res.OutTx.Kind, res.InTx.Kind)
	}
	if res.OutTx.CorrelationID == "" || res.OutTx.CorrelationID != res.InTx.CorrelationID {
		t.Fatalf("transfer legs must share a correlation id: %q vs %q", res.OutTx.CorrelationID, res.InTx.CorrelationID)
	}
	if res.OutTx.CounterpartyID != dst.ID || res.InTx.CounterpartyID != src.ID {
		t.Fatalf("unexpected counterparties: %d / %d", res.OutTx.CounterpartyID, res.InTx.CounterpartyID)
	}
}

func TestMemoryStore_TransferFailuresLeaveNoTrace(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	src := newTestAccount(t, s, 1)
	dst := newTestAccount(t, s, 2)
	SeedBalance(s, src.ID, decimal.NewFromInt(100))

	if _, err := s.Transfer(ctx, src.ID, dst.ID, decimal.NewFromInt(500)); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := s.Transfer(ctx, src.ID, 42, decimal.NewFromInt(50)); err != ErrAccountNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := s.Transfer(ctx, src.ID, src.ID, decimal.NewFromInt(50)); err != ErrSameAccount {
		t.Fatalf("expected same account error, got %v", err)
	}
	if _, err := s.Transfer(ctx, src.ID, dst.ID, decimal.Zero); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	current, _ := s.GetAccount(ctx, src.ID)
	if !current.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("failed transfers must not debit source, got %s", current.Balance)
	}
	history, err := s.TransactionsForAccount(ctx, src.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed transfers must not be recorded, got %d records", len(history))
	}
}

func TestMemoryStore_ConcurrentOppositeTransfers(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	a := newTestAccount(t, s, 1)
	b := newTestAccount(t, s, 2)
	SeedBalance(s, a.ID, decimal.NewFromInt(50_000))
	SeedBalance(s, b.ID, decimal.NewFromInt(50_000))

	const rounds = 50
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.Transfer(ctx, a.ID, b.ID, amount); err != nil {
				t.Errorf("a->b transfer: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Transfer(ctx, b.ID, a.ID, amount); err != nil {
				t.Errorf("b->a transfer: %v", err)
			}
		}()
	}
	wg.Wait()

	accA, _ := s.GetAccount(ctx, a.ID)
	accB, _ := s.GetAccount(ctx, b.ID)
	total := accA.Balance.Add(accB.Balance)
	if !total.Equal(decimal.NewFromInt(100_000)) {
		t.Fatalf("ledger not balanced after concurrency, total=%s", total)
	}
	if accA.Balance.IsNegative() || accB.Balance.IsNegative() {
		t.Fatalf("negative balance after concurrency: %s / %s", accA.Balance, accB.Balance)
	}
}

func TestMemoryStore_HistoryOrder(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	acct := newTestAccount(t, s, 1)

	for i := 1; i <= 3; i++ {
		amount := decimal.NewFromInt(int64(i * 100))
		if _, err := s.ApplyBalanceDelta(ctx, acct.ID, amount); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
		if _, err := s.AppendTransaction(ctx, Entry{AccountID: acct.ID, Kind: KindDeposit, Amount: amount}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	history, err := s.TransactionsForAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].ID <= history[i-1].ID {
			t.Fatalf("history must be oldest first, got ids %d then %d", history[i-1].ID, history[i].ID)
		}
	}

	if _, err := s.AppendTransaction(ctx, Entry{AccountID: 99, Kind: KindDeposit, Amount: decimal.NewFromInt(1)}); err != ErrAccountNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := s.TransactionsForAccount(ctx, 99); err != ErrAccountNotFound {
		t.Fatalf("expected account not found, got %v", err)
	}
}
