package transaction

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swyft-bank/swyft/internal/ledger"
	"github.com/swyft-bank/swyft/internal/middleware"
)

// Handler exposes the account statement endpoint.
type Handler struct {
	recorder *Recorder
	store    ledger.Store
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(recorder *Recorder, store ledger.Store) *Handler {
	return &Handler{recorder: recorder, store: store}
}

type transactionResponse struct {
	ID             int64     `json:"id"`
	AccountID      int64     `json:"account_id"`
	Kind           string    `json:"kind"`
	Amount         string    `json:"amount"`
	CounterpartyID int64     `json:"counterparty_id,omitempty"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Statement returns the account's transaction history, oldest first.
func (h *Handler) Statement(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	id, err := strconv.ParseInt(c.Params("accountID"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	acct, err := h.store.GetAccount(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if acct.OwnerID != sess.UserID {
		return fiber.NewError(http.StatusForbidden, "account does not belong to the user")
	}

	history, err := h.recorder.GetAllAccountTransactions(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]transactionResponse, 0, len(history))
	for _, tx := range history {
		out = append(out, transactionResponse{
			ID:             tx.ID,
			AccountID:      tx.AccountID,
			Kind:           string(tx.Kind),
			Amount:         tx.Amount.StringFixed(2),
			CounterpartyID: tx.CounterpartyID,
			CorrelationID:  tx.CorrelationID,
			CreatedAt:      tx.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
