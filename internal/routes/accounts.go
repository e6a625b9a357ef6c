package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swyft-bank/swyft/internal/account"
	"github.com/swyft-bank/swyft/internal/transaction"
)

// RegisterAccountRoutes wires account, transfer and statement endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, tx *transaction.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/:accountID", h.Get)
	r.Get("/accounts/:accountID/balance", h.Balance)
	r.Get("/accounts/:accountID/transactions", tx.Statement)
	r.Post("/accounts/:accountID/deposit", h.Deposit)
	r.Post("/accounts/:accountID/withdraw", h.Withdraw)
	r.Post("/transfers", h.Transfer)
}
