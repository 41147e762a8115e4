package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
	"github.com/taka-pay/taka_pay/internal/notification"
)

const (
	defaultMaxAttempts = 8
	compensateAttempts = 32
	backoffStep        = time.Millisecond
	maxBackoff         = 50 * time.Millisecond
)

// Transfer is a request to move funds. From is always the paying party: for
// cash-in that is the agent, even though the customer benefits.
type Transfer struct {
	From           string
	To             string
	Amount         int64
	Kind           ledger.Kind
	IdempotencyKey string
}

// Cache is an optional fast path for idempotency lookups in front of the
// transaction log. Implementations must fail soft: a miss is always safe.
type Cache interface {
	Lookup(ctx context.Context, key string) (ledger.Record, bool)
	Store(ctx context.Context, key string, rec ledger.Record)
}

// Config carries the pure rule tables and retry bounds for an Engine.
type Config struct {
	Fees   FeeSchedule
	Matrix Matrix
	// MaxAttempts bounds compare-and-swap retries per balance mutation.
	MaxAttempts int
}

// Engine validates and executes transfers as a single indivisible operation:
// authorization, funds check, atomic dual balance mutation, fee application
// and log append. Stores are injected so tests can substitute fakes.
type Engine struct {
	cfg      Config
	accounts account.Store
	log      ledger.Log
	cache    Cache
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewEngine constructs a transfer engine. cache and notifier may be nil.
func NewEngine(cfg Config, accounts account.Store, log ledger.Log, cache Cache, notifier notification.Notifier, logger *slog.Logger) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, accounts: accounts, log: log, cache: cache, notifier: notifier, logger: logger}
}

// Execute runs one transfer end to end. On an idempotent replay it returns the
// original record together with ErrDuplicateRequest and changes no balances.
func (e *Engine) Execute(ctx context.Context, t Transfer) (ledger.Record, error) {
	if t.Amount <= 0 {
		return ledger.Record{}, ErrInvalidAmount
	}

	payer, err := e.loadAccount(ctx, t.From)
	if err != nil {
		return ledger.Record{}, err
	}
	payee, err := e.loadAccount(ctx, t.To)
	if err != nil {
		return ledger.Record{}, err
	}
	if payer.Status != account.StatusApproved {
		return ledger.Record{}, fmt.Errorf("%w: %s is %s", ErrAccountNotApproved, payer.ID, payer.Status)
	}
	if !e.cfg.Matrix.Allowed(payer.Role, payee.Role, t.Kind) {
		return ledger.Record{}, fmt.Errorf("%w: %s %s -> %s", ErrRoleNotPermitted, t.Kind, payer.Role, payee.Role)
	}

	key := t.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	if rec, ok, err := e.replay(ctx, key); err != nil {
		return ledger.Record{}, err
	} else if ok {
		return rec, ErrDuplicateRequest
	}

	fee := e.cfg.Fees.Fee(t.Kind, t.Amount)
	rec := ledger.Record{
		ID:             uuid.NewString(),
		From:           t.From,
		To:             t.To,
		Amount:         t.Amount,
		Fee:            fee,
		Kind:           t.Kind,
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC(),
	}

	rec, err = e.commit(ctx, rec)
	if errors.Is(err, ErrConcurrencyConflict) {
		// Optimistic attempts keep losing; serialize the pair and try once
		// more. Lock acquisition is ordered inside the store, so two
		// transfers on the same pair in opposite directions cannot deadlock.
		e.logger.Warn("balance conflict, serializing account pair", "from", t.From, "to", t.To)
		release, lockErr := e.accounts.Lock(ctx, t.From, t.To)
		if lockErr != nil {
			return ledger.Record{}, fmt.Errorf("%w: lock accounts: %v", ErrStoreUnavailable, lockErr)
		}
		rec, err = e.commit(ctx, rec)
		release()
	}
	if err != nil {
		return rec, err
	}

	if e.cache != nil {
		e.cache.Store(context.WithoutCancel(ctx), key, rec)
	}
	if e.notifier != nil {
		_ = e.notifier.Send(context.WithoutCancel(ctx), notification.Message{
			Kind:        notification.KindFundsReceived,
			Destination: rec.To,
			Body:        fmt.Sprintf("You received %d (%s)", rec.Amount, rec.Kind),
		})
	}
	return rec, nil
}

// replay checks the idempotency cache and then the log for a committed record.
func (e *Engine) replay(ctx context.Context, key string) (ledger.Record, bool, error) {
	if e.cache != nil {
		if rec, ok := e.cache.Lookup(ctx, key); ok {
			return rec, true, nil
		}
	}
	rec, err := e.log.FindByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		return rec, true, nil
	case errors.Is(err, ledger.ErrNotFound):
		return ledger.Record{}, false, nil
	default:
		return ledger.Record{}, false, fmt.Errorf("%w: idempotency lookup: %v", ErrStoreUnavailable, err)
	}
}

// commit performs debit, credit and log append. Whatever fails, it returns
// with both balances back at their pre-transfer values; no observer sees a
// half-applied transfer as final state.
func (e *Engine) commit(ctx context.Context, rec ledger.Record) (ledger.Record, error) {
	total := rec.Amount + rec.Fee

	if err := e.adjust(ctx, rec.From, -total, e.cfg.MaxAttempts); err != nil {
		return ledger.Record{}, err
	}

	// The debit is durable. From here the transfer runs to completion (or is
	// fully compensated) even if the caller's deadline expires.
	ctx = context.WithoutCancel(ctx)

	if err := e.adjust(ctx, rec.To, rec.Amount, e.cfg.MaxAttempts); err != nil {
		e.compensate(ctx, rec.From, total, "credit failed")
		if errors.Is(err, ErrConcurrencyConflict) {
			return ledger.Record{}, err
		}
		return ledger.Record{}, fmt.Errorf("%w: credit %s: %v", ErrStoreUnavailable, rec.To, err)
	}

	if err := e.log.Append(ctx, rec); err != nil {
		e.compensate(ctx, rec.To, -rec.Amount, "append failed")
		e.compensate(ctx, rec.From, total, "append failed")
		if errors.Is(err, ledger.ErrDuplicateKey) {
			// Lost a same-key race after the lookup: hand back the winner.
			if existing, ferr := e.log.FindByIdempotencyKey(ctx, rec.IdempotencyKey); ferr == nil {
				return existing, ErrDuplicateRequest
			}
		}
		return ledger.Record{}, fmt.Errorf("%w: append transaction: %v", ErrStoreUnavailable, err)
	}

	return rec, nil
}

// adjust applies a signed delta to one account with compare-and-swap and
// jittered backoff. Negative deltas re-check funds on every attempt, so the
// non-negative balance invariant holds under any interleaving.
func (e *Engine) adjust(ctx context.Context, id string, delta int64, attempts int) error {
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		acct, err := e.accounts.Get(ctx, id)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
			}
			return fmt.Errorf("%w: load account %s: %v", ErrStoreUnavailable, id, err)
		}

		next := acct.Balance + delta
		if next < 0 {
			return ErrInsufficientFunds
		}

		ok, err := e.accounts.CompareAndSwapBalance(ctx, id, acct.Balance, next)
		if err != nil {
			return fmt.Errorf("%w: swap balance %s: %v", ErrStoreUnavailable, id, err)
		}
		if ok {
			return nil
		}

		e.backoff(ctx, attempt)
	}
	return ErrConcurrencyConflict
}

// compensate reverses a previously applied mutation. It retries harder than a
// regular mutation because giving up here loses money.
func (e *Engine) compensate(ctx context.Context, id string, delta int64, reason string) {
	if err := e.adjust(ctx, id, delta, compensateAttempts); err != nil {
		e.logger.Error("compensation failed, manual reconciliation required",
			"account", id, "delta", delta, "reason", reason, "error", err)
	}
}

func (e *Engine) backoff(ctx context.Context, attempt int) {
	d := time.Duration(attempt+1) * backoffStep
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int63n(int64(backoffStep)))
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (e *Engine) loadAccount(ctx context.Context, id string) (account.Account, error) {
	acct, err := e.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return account.Account{}, fmt.Errorf("%w: load account %s: %v", ErrStoreUnavailable, id, err)
	}
	return acct, nil
}
