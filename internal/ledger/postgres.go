package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists accounts and transactions in PostgreSQL. Balances
// are NUMERIC columns mutated under row locks, never floats.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, owner_id, name, type, number, balance::text, created_at`

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acct    Account
		typ     string
		balance string
	)
	if err := row.Scan(&acct.ID, &acct.OwnerID, &acct.Name, &typ, &acct.Number, &balance, &acct.CreatedAt); err != nil {
		return Account{}, err
	}
	acct.Type = AccountType(typ)
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	acct.Balance = bal
	acct.CreatedAt = acct.CreatedAt.UTC()
	return acct, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, ownerID int64, typ AccountType, name string) (Account, error) {
	if !typ.Valid() {
		return Account{}, ErrInvalidAccountType
	}

	// Retry number generation on the unique constraint rather than surfacing
	// collisions to the caller.
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := newAccountNumber()
		if err != nil {
			return Account{}, err
		}
		row := s.db.QueryRow(ctx, `INSERT INTO accounts (owner_id, name, type, number, balance)
            VALUES ($1, $2, $3, $4, 0)
            ON CONFLICT (number) DO NOTHING
            RETURNING `+accountColumns, ownerID, name, string(typ), number)
		acct, err := scanAccount(row)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return Account{}, err
		}
		return acct, nil
	}
	return Account{}, ErrDuplicateAccountNumber
}

func (s *PostgresStore) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return acct, err
}

func (s *PostgresStore) GetAccountByNumber(ctx context.Context, number string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return acct, err
}

func (s *PostgresStore) ListAccountsForOwner(ctx context.Context, ownerID int64) ([]Account, error) {
	rows, err := s.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) (Account, error) {
	row := s.db.QueryRow(ctx, `UPDATE accounts
        SET balance = balance + $2::numeric
        WHERE id = $1 AND balance + $2::numeric >= 0
        RETURNING `+accountColumns, id, delta.String())
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing account from a rejected debit.
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Account{}, err
		}
		if !exists {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, ErrInsufficientFunds
	}
	return acct, err
}

func (s *PostgresStore) Transfer(ctx context.Context, sourceID, destID int64, amount decimal.Decimal) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}
	if sourceID == destID {
		return TransferResult{}, ErrSameAccount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock both rows in identity order. The transaction rollback is the
	// compensating action: either both legs and both records commit, or
	// nothing does.
	firstID, secondID := sourceID, destID
	if destID < sourceID {
		firstID, secondID = destID, sourceID
	}
	for _, id := range []int64{firstID, secondID} {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return TransferResult{}, ErrAccountNotFound
			}
			return TransferResult{}, err
		}
	}

	debit := func(id int64, delta string) (Account, error) {
		row := tx.QueryRow(ctx, `UPDATE accounts
            SET balance = balance + $2::numeric
            WHERE id = $1 AND balance + $2::numeric >= 0
            RETURNING `+accountColumns, id, delta)
		acct, err := scanAccount(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrInsufficientFunds
		}
		return acct, err
	}

	srcAcct, err := debit(sourceID, amount.Neg().String())
	if err != nil {
		return TransferResult{}, err
	}
	dstAcct, err := debit(destID, amount.String())
	if err != nil {
		return TransferResult{}, err
	}

	correlation := uuid.NewString()
	insert := func(entry Entry) (Transaction, error) {
		out := Transaction{
			AccountID:      entry.AccountID,
			Kind:           entry.Kind,
			Amount:         entry.Amount,
			CounterpartyID: entry.CounterpartyID,
			CorrelationID:  entry.CorrelationID,
		}
		row := tx.QueryRow(ctx, `INSERT INTO transactions (account_id, kind, amount, counterparty_id, correlation_id)
            VALUES ($1, $2, $3::numeric, $4, $5)
            RETURNING id, created_at`, entry.AccountID, string(entry.Kind), entry.Amount.String(), entry.CounterpartyID, entry.CorrelationID)
		if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
			return Transaction{}, err
		}
		out.CreatedAt = out.CreatedAt.UTC()
		return out, nil
	}

	outTx, err := insert(Entry{AccountID: sourceID, Kind: KindTransferOut, Amount: amount, CounterpartyID: destID, CorrelationID: correlation})
	if err != nil {
		return TransferResult{}, err
	}
	inTx, err := insert(Entry{AccountID: destID, Kind: KindTransferIn, Amount: amount, CounterpartyID: sourceID, CorrelationID: correlation})
	if err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}

	return TransferResult{Source: srcAcct, Destination: dstAcct, OutTx: outTx, InTx: inTx}, nil
}

func (s *PostgresStore) AppendTransaction(ctx context.Context, entry Entry) (Transaction, error) {
	if !entry.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, entry.AccountID).Scan(&exists); err != nil {
		return Transaction{}, err
	}
	if !exists {
		return Transaction{}, ErrAccountNotFound
	}

	out := Transaction{
		AccountID:      entry.AccountID,
		Kind:           entry.Kind,
		Amount:         entry.Amount,
		CounterpartyID: entry.CounterpartyID,
		CorrelationID:  entry.CorrelationID,
	}
	row := s.db.QueryRow(ctx, `INSERT INTO transactions (account_id, kind, amount, counterparty_id, correlation_id)
        VALUES ($1, $2, $3::numeric, $4, $5)
        RETURNING id, created_at`, entry.AccountID, string(entry.Kind), entry.Amount.String(), entry.CounterpartyID, entry.CorrelationID)
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return Transaction{}, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}

func (s *PostgresStore) TransactionsForAccount(ctx context.Context, accountID int64) ([]Transaction, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	rows, err := s.db.Query(ctx, `SELECT id, account_id, kind, amount::text, counterparty_id, correlation_id, created_at
        FROM transactions WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		var (
			tx     Transaction
			kind   string
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &kind, &amount, &tx.CounterpartyID, &tx.CorrelationID, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = TransactionKind(kind)
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tx.Amount = amt
		tx.CreatedAt = tx.CreatedAt.UTC()
		history = append(history, tx)
	}
	return history, rows.Err()
}
