package account

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/swyft-bank/swyft/internal/auth"
	"github.com/swyft-bank/swyft/internal/identity"
	"github.com/swyft-bank/swyft/internal/ledger"
	"github.com/swyft-bank/swyft/internal/middleware"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type accountResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Number    string    `json:"number"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(acct ledger.Account) accountResponse {
	return accountResponse{
		ID:        acct.ID,
		OwnerID:   acct.OwnerID,
		Name:      acct.Name,
		Type:      string(acct.Type),
		Number:    acct.Number,
		Balance:   acct.Balance.StringFixed(2),
		CreatedAt: acct.CreatedAt,
	}
}

// statusFromError translates core error kinds into HTTP statuses. Every kind
// is recoverable by retrying with corrected input.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrWrongPin):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func fail(err error) error {
	return fiber.NewError(statusFromError(err), err.Error())
}

type createRequest struct {
	Type string `json:"type"`
}

// Create opens an account for the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.Create(c.UserContext(), sess, ledger.AccountType(req.Type))
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acct))
}

// List returns the authenticated user's accounts in creation order.
func (h *Handler) List(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	accounts, err := h.service.GetAllUserAccounts(c.UserContext(), sess.UserID)
	if err != nil {
		return fail(err)
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, toAccountResponse(acct))
	}
	return c.Status(http.StatusOK).JSON(out)
}

func (h *Handler) ownedAccount(c *fiber.Ctx) (ledger.Account, identity.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return ledger.Account{}, identity.Session{}, fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	id, err := strconv.ParseInt(c.Params("accountID"), 10, 64)
	if err != nil {
		return ledger.Account{}, identity.Session{}, fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	acct, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return ledger.Account{}, identity.Session{}, fail(err)
	}
	if acct.OwnerID != sess.UserID {
		return ledger.Account{}, identity.Session{}, fail(ErrNotOwner)
	}
	return acct, sess, nil
}

// Get returns a single account owned by the authenticated user.
func (h *Handler) Get(c *fiber.Ctx) error {
	acct, _, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(acct))
}

// Balance returns the available balance for the account.
func (h *Handler) Balance(c *fiber.Ctx) error {
	acct, _, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": acct.ID,
		"number":     acct.Number,
		"balance":    acct.Balance.StringFixed(2),
		"timestamp":  time.Now().UTC(),
	})
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit credits the account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	acct, _, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Deposit(c.UserContext(), req.Amount, acct.ID); err != nil {
		return fail(err)
	}
	updated, err := h.service.Get(c.UserContext(), acct.ID)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(updated))
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PIN    string          `json:"pin"`
}

// Withdraw debits the account after PIN verification.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	acct, sess, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Withdraw(c.UserContext(), sess, WithdrawInput{AccountID: acct.ID, Amount: req.Amount, PIN: req.PIN}); err != nil {
		return fail(err)
	}
	updated, err := h.service.Get(c.UserContext(), acct.ID)
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(updated))
}

type transferRequest struct {
	SourceAccountID   int64           `json:"source_account_id"`
	DestinationID     int64           `json:"destination_account_id"`
	DestinationNumber string          `json:"destination_number"`
	Amount            decimal.Decimal `json:"amount"`
	PIN               string          `json:"pin"`
}

type transferResponse struct {
	CorrelationID      string `json:"correlation_id"`
	SourceBalance      string `json:"source_balance"`
	DestinationNumber  string `json:"destination_number"`
	DestinationAccount int64  `json:"destination_account_id"`
}

// Transfer moves funds between two accounts. The destination may be named by
// identity or by account number.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	destID := req.DestinationID
	if destID == 0 && req.DestinationNumber != "" {
		dest, err := h.service.GetByNumber(c.UserContext(), req.DestinationNumber)
		if err != nil {
			return fail(err)
		}
		destID = dest.ID
	}

	res, err := h.service.Transfer(c.UserContext(), sess, TransferInput{
		SourceID:      req.SourceAccountID,
		DestinationID: destID,
		Amount:        req.Amount,
		PIN:           req.PIN,
	})
	if err != nil {
		return fail(err)
	}
	return c.Status(http.StatusOK).JSON(transferResponse{
		CorrelationID:      res.OutTx.CorrelationID,
		SourceBalance:      res.Source.Balance.StringFixed(2),
		DestinationNumber:  res.Destination.Number,
		DestinationAccount: res.Destination.ID,
	})
}
