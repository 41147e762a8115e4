package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/query"
	"github.com/taka-pay/taka_pay/internal/transfer"
)

// RegisterLedgerRoutes wires the transfer and read-only ledger endpoints.
func RegisterLedgerRoutes(r fiber.Router, t *transfer.Handler, q *query.Handler) {
	r.Post("/transfers", t.Execute)
	r.Get("/accounts/:accountId/balance", q.Balance)
	r.Get("/accounts/:accountId/transactions", q.History)
}
