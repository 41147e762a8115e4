package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	accountIDHeader   = "X-Account-ID"
	accountRoleHeader = "X-Account-Role"

	accountIDLocal   = "account_id"
	accountRoleLocal = "account_role"
)

// Identity extracts the verified caller identity injected by the upstream
// auth gateway. The core trusts these headers; requests without an identity
// are rejected before any ledger code runs.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(accountIDHeader))
		if id == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing account identity")
		}
		c.Locals(accountIDLocal, id)
		c.Locals(accountRoleLocal, strings.TrimSpace(c.Get(accountRoleHeader)))
		return c.Next()
	}
}

// AccountID returns the verified caller account id, or "".
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(accountIDLocal).(string)
	return id
}

// AccountRole returns the verified caller role, or "".
func AccountRole(c *fiber.Ctx) string {
	role, _ := c.Locals(accountRoleLocal).(string)
	return role
}
