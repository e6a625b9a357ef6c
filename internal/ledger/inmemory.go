package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountRecord pairs an account with the mutex that serializes its balance
// mutations. The mutex also guards reads of the struct fields that mutate.
type accountRecord struct {
	mu   sync.Mutex
	acct Account
}

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[int64]*accountRecord
	numbers  map[string]int64
	owners   map[int64][]int64
	history  map[int64][]Transaction

	lastAccountID int64
	lastTxID      int64
}

// NewInMemory creates a concurrency-safe in-memory store. Balance mutations
// are serialized per account, not behind a single global lock.
func NewInMemory() Store {
	return &memoryStore{
		accounts: make(map[int64]*accountRecord),
		numbers:  make(map[string]int64),
		owners:   make(map[int64][]int64),
		history:  make(map[int64][]Transaction),
	}
}

func (s *memoryStore) CreateAccount(_ context.Context, ownerID int64, typ AccountType, name string) (Account, error) {
	if !typ.Valid() {
		return Account{}, ErrInvalidAccountType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var number string
	for attempt := 0; ; attempt++ {
		if attempt == numberAttempts {
			return Account{}, ErrDuplicateAccountNumber
		}
		n, err := newAccountNumber()
		if err != nil {
			return Account{}, err
		}
		if _, taken := s.numbers[n]; !taken {
			number = n
			break
		}
	}

	s.lastAccountID++
	acct := Account{
		ID:        s.lastAccountID,
		OwnerID:   ownerID,
		Name:      name,
		Type:      typ,
		Number:    number,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}

	s.accounts[acct.ID] = &accountRecord{acct: acct}
	s.numbers[number] = acct.ID
	s.owners[ownerID] = append(s.owners[ownerID], acct.ID)

	return acct, nil
}

func (s *memoryStore) record(id int64) *accountRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[id]
}

func (s *memoryStore) GetAccount(_ context.Context, id int64) (Account, error) {
	rec := s.record(id)
	if rec == nil {
		return Account{}, ErrAccountNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.acct, nil
}

func (s *memoryStore) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	s.mu.RLock()
	id, ok := s.numbers[number]
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.GetAccount(ctx, id)
}

func (s *memoryStore) ListAccountsForOwner(_ context.Context, ownerID int64) ([]Account, error) {
	s.mu.RLock()
	ids := s.owners[ownerID]
	recs := make([]*accountRecord, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, s.accounts[id])
	}
	s.mu.RUnlock()

	accounts := make([]Account, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		accounts = append(accounts, rec.acct)
		rec.mu.Unlock()
	}
	return accounts, nil
}

func (s *memoryStore) ApplyBalanceDelta(_ context.Context, id int64, delta decimal.Decimal) (Account, error) {
	rec := s.record(id)
	if rec == nil {
		return Account{}, ErrAccountNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return applyDeltaLocked(rec, delta)
}

// applyDeltaLocked is the single choke point for balance mutation. The caller
// must hold rec.mu.
func applyDeltaLocked(rec *accountRecord, delta decimal.Decimal) (Account, error) {
	next := rec.acct.Balance.Add(delta)
	if next.IsNegative() {
		return Account{}, ErrInsufficientFunds
	}
	rec.acct.Balance = next
	return rec.acct, nil
}

func (s *memoryStore) Transfer(_ context.Context, sourceID, destID int64, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}
	if sourceID == destID {
		return TransferResult{}, ErrSameAccount
	}

	src := s.record(sourceID)
	dst := s.record(destID)
	if src == nil || dst == nil {
		return TransferResult{}, ErrAccountNotFound
	}

	// Lock in identity order so concurrent opposite-direction transfers
	// cannot deadlock.
	first, second := src, dst
	if destID < sourceID {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	srcAcct, err := applyDeltaLocked(src, amount.Neg())
	if err != nil {
		return TransferResult{}, err
	}
	dstAcct, err := applyDeltaLocked(dst, amount)
	if err != nil {
		// Compensate the debit before surfacing the error. The reversal adds
		// funds back, so it cannot fail the non-negative check; anything else
		// is a consistency violation.
		if _, revErr := applyDeltaLocked(src, amount); revErr != nil {
			return TransferResult{}, ErrLedgerConsistency
		}
		return TransferResult{}, err
	}

	// Append both history records while the account locks are held so a
	// concurrent reader sees either no trace of the transfer or all of it.
	// The store mutex is never held while waiting on an account mutex, so
	// taking it here cannot deadlock.
	correlation := uuid.NewString()
	s.mu.Lock()
	outTx := s.appendLocked(Entry{
		AccountID:      sourceID,
		Kind:           KindTransferOut,
		Amount:         amount,
		CounterpartyID: destID,
		CorrelationID:  correlation,
	})
	inTx := s.appendLocked(Entry{
		AccountID:      destID,
		Kind:           KindTransferIn,
		Amount:         amount,
		CounterpartyID: sourceID,
		CorrelationID:  correlation,
	})
	s.mu.Unlock()

	return TransferResult{Source: srcAcct, Destination: dstAcct, OutTx: outTx, InTx: inTx}, nil
}

func (s *memoryStore) AppendTransaction(_ context.Context, entry Entry) (Transaction, error) {
	if !entry.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if s.record(entry.AccountID) == nil {
		return Transaction{}, ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(entry), nil
}

// appendLocked assigns identity and timestamp and appends to the account's
// history. The caller must hold s.mu.
func (s *memoryStore) appendLocked(entry Entry) Transaction {
	s.lastTxID++
	tx := Transaction{
		ID:             s.lastTxID,
		AccountID:      entry.AccountID,
		Kind:           entry.Kind,
		Amount:         entry.Amount,
		CounterpartyID: entry.CounterpartyID,
		CorrelationID:  entry.CorrelationID,
		CreatedAt:      time.Now().UTC(),
	}
	s.history[entry.AccountID] = append(s.history[entry.AccountID], tx)
	return tx
}

func (s *memoryStore) TransactionsForAccount(_ context.Context, accountID int64) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountID]; !ok {
		return nil, ErrAccountNotFound
	}
	history := s.history[accountID]
	out := make([]Transaction, len(history))
	copy(out, history)
	return out, nil
}
