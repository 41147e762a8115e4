package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
)

func setupService(t *testing.T) (*Service, account.Store, ledger.Log) {
	t.Helper()
	store := account.NewMemoryStore()
	log := ledger.NewInMemoryLog()

	err := store.Create(context.Background(), account.Account{
		ID: "cust-a", Role: account.RoleCustomer, Status: account.StatusApproved, Balance: 750, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return NewService(store, log), store, log
}

func TestBalanceReflectsStore(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	balance, err := svc.Balance(ctx, "cust-a")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Amount != 750 {
		t.Fatalf("expected 750, got %d", balance.Amount)
	}

	account.SeedBalance(store, "cust-a", 1_200)
	balance, err = svc.Balance(ctx, "cust-a")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Amount != 1_200 {
		t.Fatalf("expected latest committed state 1200, got %d", balance.Amount)
	}
}

func TestBalanceUnknownAccount(t *testing.T) {
	svc, _, _ := setupService(t)

	if _, err := svc.Balance(context.Background(), "missing"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryDefaultLimitNewestFirst(t *testing.T) {
	svc, _, log := setupService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		err := log.Append(ctx, ledger.Record{
			ID:             fmt.Sprintf("tx-%d", i),
			From:           "cust-a",
			To:             "cust-b",
			Amount:         int64(10 + i),
			Kind:           ledger.KindSend,
			IdempotencyKey: fmt.Sprintf("key-%d", i),
			CreatedAt:      time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recs, err := svc.History(ctx, "cust-a", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != DefaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultHistoryLimit, len(recs))
	}
	if recs[0].ID != "tx-11" {
		t.Fatalf("expected newest record first, got %s", recs[0].ID)
	}

	recs, err = svc.History(ctx, "cust-a", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}

func TestHistoryUnknownAccount(t *testing.T) {
	svc, _, _ := setupService(t)

	if _, err := svc.History(context.Background(), "missing", 5); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
