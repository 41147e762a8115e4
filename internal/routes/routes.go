package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/config"
	"github.com/taka-pay/taka_pay/internal/idempotency"
	"github.com/taka-pay/taka_pay/internal/ledger"
	"github.com/taka-pay/taka_pay/internal/middleware"
	"github.com/taka-pay/taka_pay/internal/notification"
	"github.com/taka-pay/taka_pay/internal/pin"
	"github.com/taka-pay/taka_pay/internal/query"
	"github.com/taka-pay/taka_pay/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var accounts account.Store
	var txLog ledger.Log
	if d.DB != nil {
		accounts = account.NewPostgresStore(d.DB)
		txLog = ledger.NewPostgresLog(d.DB)
	} else {
		accounts = account.NewMemoryStore()
		txLog = ledger.NewInMemoryLog()
		seedDevAccounts(d.Cfg, accounts, d.Logger)
	}

	var cache transfer.Cache
	if d.Cache != nil {
		cache = idempotency.NewCache(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := transfer.NewEngine(transfer.Config{
		Fees:        transfer.NewFeeSchedule(d.Cfg.SendFee, d.Cfg.SendFeeThreshold, d.Cfg.CashOutFeePercent),
		Matrix:      transfer.DefaultMatrix(),
		MaxAttempts: d.Cfg.TransferMaxAttempts,
	}, accounts, txLog, cache, notifier, d.Logger)

	querySvc := query.NewService(accounts, txLog)
	transferHandler := transfer.NewHandler(engine, accounts)
	queryHandler := query.NewHandler(querySvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Everything below requires a verified identity from the auth gateway.
	protected := api.Group("", middleware.Identity())
	RegisterLedgerRoutes(protected, transferHandler, queryHandler)

	return nil
}

// seedDevAccounts provisions demo accounts in memory mode so the API is
// usable without the external registration service.
func seedDevAccounts(cfg config.Config, accounts account.Store, logger *slog.Logger) {
	policy := account.ProvisionPolicy{
		AgentInitialBalance:    cfg.AgentInitialBalance,
		CustomerInitialBalance: cfg.CustomerInitialBalance,
		ApprovalBonus:          cfg.ApprovalBonus,
	}

	pinHash, err := pin.Hash("1234")
	if err != nil {
		logger.Warn("seed pin hash", "error", err)
		return
	}

	demo := []account.Account{
		{ID: "demo-customer", Role: account.RoleCustomer, Status: account.StatusApproved,
			Balance: policy.InitialBalance(account.RoleCustomer) + policy.ApprovalBonus, PinHash: pinHash},
		{ID: "demo-customer-2", Role: account.RoleCustomer, Status: account.StatusApproved,
			Balance: policy.InitialBalance(account.RoleCustomer) + policy.ApprovalBonus, PinHash: pinHash},
		{ID: "demo-agent", Role: account.RoleAgent, Status: account.StatusApproved,
			Balance: policy.InitialBalance(account.RoleAgent), PinHash: pinHash},
	}
	for _, acct := range demo {
		acct.CreatedAt = time.Now().UTC()
		if err := accounts.Create(context.Background(), acct); err != nil {
			logger.Warn("seed account", "id", acct.ID, "error", err)
			continue
		}
		logger.Info("seeded dev account", "id", acct.ID, "role", acct.Role, "balance", acct.Balance, "pin", "1234")
	}
}
