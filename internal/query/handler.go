package query

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/middleware"
)

// Handler exposes read-only balance and history endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a query handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type historyEntry struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
	Fee       int64  `json:"fee"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

// Balance returns the current balance of an account. Callers may only read
// their own balance unless the gateway vouches for the admin role.
func (h *Handler) Balance(c *fiber.Ctx) error {
	id := c.Params("accountId")
	if err := authorizeRead(c, id); err != nil {
		return err
	}

	balance, err := h.service.Balance(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusServiceUnavailable, "account store unavailable")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": balance.AccountID,
		"balance":    balance.Amount,
		"as_of":      balance.AsOf.Format(time.RFC3339Nano),
	})
}

// History returns the newest transfers involving an account.
func (h *Handler) History(c *fiber.Ctx) error {
	id := c.Params("accountId")
	if err := authorizeRead(c, id); err != nil {
		return err
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	records, err := h.service.History(c.UserContext(), id, limit)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusServiceUnavailable, "transaction log unavailable")
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			ID:        rec.ID,
			From:      rec.From,
			To:        rec.To,
			Amount:    rec.Amount,
			Fee:       rec.Fee,
			Kind:      string(rec.Kind),
			CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account_id": id, "transactions": entries})
}

func authorizeRead(c *fiber.Ctx, id string) error {
	caller := middleware.AccountID(c)
	if caller == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing account identity")
	}
	if caller != id && middleware.AccountRole(c) != string(account.RoleAdmin) {
		return fiber.NewError(http.StatusForbidden, "cannot read another account")
	}
	return nil
}
