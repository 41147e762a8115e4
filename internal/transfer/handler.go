package transfer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
	"github.com/taka-pay/taka_pay/internal/middleware"
	"github.com/taka-pay/taka_pay/internal/pin"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Handler exposes the transfer endpoint. The verified caller is always the
// paying party, so a customer cannot claim an agent id to pull funds.
type Handler struct {
	engine   *Engine
	accounts account.Store
}

// NewHandler constructs a transfer handler.
func NewHandler(engine *Engine, accounts account.Store) *Handler {
	return &Handler{engine: engine, accounts: accounts}
}

type executeRequest struct {
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	Kind           string `json:"kind"`
	Pin            string `json:"pin"`
	IdempotencyKey string `json:"idempotency_key"`
}

type recordResponse struct {
	ID             string `json:"id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	Fee            int64  `json:"fee"`
	Kind           string `json:"kind"`
	IdempotencyKey string `json:"idempotency_key"`
	CreatedAt      string `json:"created_at"`
	Replayed       bool   `json:"replayed,omitempty"`
}

// Execute processes a transfer request for the authenticated payer.
func (h *Handler) Execute(c *fiber.Ctx) error {
	caller := middleware.AccountID(c)
	if caller == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing account identity")
	}

	var req executeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	kind, err := ledger.ParseKind(req.Kind)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	key := c.Get(idempotencyKeyHeader)
	if key == "" {
		key = req.IdempotencyKey
	}

	payer, err := h.accounts.Get(c.UserContext(), caller)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusServiceUnavailable, "account store unavailable")
	}
	if payer.PinHash != "" {
		if err := pin.Verify(payer.PinHash, req.Pin); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid pin")
		}
	}

	rec, err := h.engine.Execute(c.UserContext(), Transfer{
		From:           caller,
		To:             req.To,
		Amount:         req.Amount,
		Kind:           kind,
		IdempotencyKey: key,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRequest):
			return c.Status(http.StatusOK).JSON(toResponse(rec, true))
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAccountNotApproved), errors.Is(err, ErrRoleNotPermitted):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrConcurrencyConflict):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrStoreUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(toResponse(rec, false))
}

func toResponse(rec ledger.Record, replayed bool) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		From:           rec.From,
		To:             rec.To,
		Amount:         rec.Amount,
		Fee:            rec.Fee,
		Kind:           string(rec.Kind),
		IdempotencyKey: rec.IdempotencyKey,
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339Nano),
		Replayed:       replayed,
	}
}
