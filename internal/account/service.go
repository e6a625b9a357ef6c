package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/swyft-bank/swyft/internal/identity"
	"github.com/swyft-bank/swyft/internal/ledger"
	"github.com/swyft-bank/swyft/internal/notification"
	"github.com/swyft-bank/swyft/internal/transaction"
)

// ErrNotOwner indicates the acting user does not own the account being
// debited.
var ErrNotOwner = errors.New("account does not belong to the user")

// PinVerifier checks a presented PIN against a user's stored credential.
type PinVerifier interface {
	VerifyPin(ctx context.Context, userID int64, presented string) error
}

// Service exposes account operations backed by the ledger store. Withdraw and
// Transfer verify the presented PIN themselves so that no debit happens
// without authorization, regardless of the caller.
type Service struct {
	store    ledger.Store
	recorder *transaction.Recorder
	pins     PinVerifier
	notifier notification.Notifier
}

// NewService builds an account service instance.
func NewService(store ledger.Store, recorder *transaction.Recorder, pins PinVerifier, notifier notification.Notifier) *Service {
	return &Service{store: store, recorder: recorder, pins: pins, notifier: notifier}
}

// Create opens a savings or current account named after the session user.
func (s *Service) Create(ctx context.Context, sess identity.Session, typ ledger.AccountType) (ledger.Account, error) {
	if !typ.Valid() {
		return ledger.Account{}, ledger.ErrInvalidAccountType
	}
	return s.store.CreateAccount(ctx, sess.UserID, typ, sess.FullName)
}

// Get fetches an account by identity.
func (s *Service) Get(ctx context.Context, id int64) (ledger.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// GetByNumber fetches an account by its displayable account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (ledger.Account, error) {
	return s.store.GetAccountByNumber(ctx, number)
}

// GetAllUserAccounts returns the owner's accounts in creation order.
func (s *Service) GetAllUserAccounts(ctx context.Context, ownerID int64) ([]ledger.Account, error) {
	return s.store.ListAccountsForOwner(ctx, ownerID)
}

// Deposit credits the account and records a deposit transaction.
func (s *Service) Deposit(ctx context.Context, amount decimal.Decimal, accountID int64) error {
	if !amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if _, err := s.store.ApplyBalanceDelta(ctx, accountID, amount); err != nil {
		return err
	}
	_, err := s.recorder.Record(ctx, transaction.RecordInput{
		AccountID: accountID,
		Kind:      ledger.KindDeposit,
		Amount:    amount,
	})
	return err
}

// WithdrawInput captures a PIN-gated withdrawal request.
type WithdrawInput struct {
	AccountID int64
	Amount    decimal.Decimal
	PIN       string
}

// Withdraw debits the account after verifying ownership and the presented
// PIN. The insufficient-funds check happens atomically inside the delta
// application, not as a separate read.
func (s *Service) Withdraw(ctx context.Context, sess identity.Session, in WithdrawInput) error {
	if !in.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	acct, err := s.store.GetAccount(ctx, in.AccountID)
	if err != nil {
		return err
	}
	if acct.OwnerID != sess.UserID {
		return ErrNotOwner
	}
	if err := s.pins.VerifyPin(ctx, sess.UserID, in.PIN); err != nil {
		return err
	}
	if _, err := s.store.ApplyBalanceDelta(ctx, in.AccountID, in.Amount.Neg()); err != nil {
		return err
	}
	_, err = s.recorder.Record(ctx, transaction.RecordInput{
		AccountID: in.AccountID,
		Kind:      ledger.KindWithdrawal,
		Amount:    in.Amount,
	})
	return err
}

// TransferInput captures a PIN-gated transfer request.
type TransferInput struct {
	SourceID      int64
	DestinationID int64
	Amount        decimal.Decimal
	PIN           string
}

// Transfer moves funds between two accounts. Both legs and both history
// records are applied atomically by the store; a failed transfer leaves no
// trace.
func (s *Service) Transfer(ctx context.Context, sess identity.Session, in TransferInput) (ledger.TransferResult, error) {
	if !in.Amount.IsPositive() {
		return ledger.TransferResult{}, ledger.ErrInvalidAmount
	}
	if in.SourceID == in.DestinationID {
		return ledger.TransferResult{}, ledger.ErrSameAccount
	}
	src, err := s.store.GetAccount(ctx, in.SourceID)
	if err != nil {
		return ledger.TransferResult{}, err
	}
	if src.OwnerID != sess.UserID {
		return ledger.TransferResult{}, ErrNotOwner
	}
	if _, err := s.store.GetAccount(ctx, in.DestinationID); err != nil {
		return ledger.TransferResult{}, err
	}
	if err := s.pins.VerifyPin(ctx, sess.UserID, in.PIN); err != nil {
		return ledger.TransferResult{}, err
	}

	res, err := s.store.Transfer(ctx, in.SourceID, in.DestinationID, in.Amount)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:    notification.KindTransferReceived,
			OwnerID: res.Destination.OwnerID,
			Body:    fmt.Sprintf("You received %s from account %s", in.Amount.StringFixed(2), res.Source.Number),
		})
	}

	return res, nil
}
