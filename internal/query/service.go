package query

import (
	"context"
	"time"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
)

// DefaultHistoryLimit bounds history responses when the caller does not ask
// for a specific page size.
const DefaultHistoryLimit = 10

// Service exposes read-only ledger lookups. It never mutates state and never
// blocks writers beyond what the stores themselves require.
type Service struct {
	accounts account.Store
	log      ledger.Log
}

// NewService builds a query service over the two stores.
func NewService(accounts account.Store, log ledger.Log) *Service {
	return &Service{accounts: accounts, log: log}
}

// Balance reflects the latest committed funds for an account.
type Balance struct {
	AccountID string
	Amount    int64
	AsOf      time.Time
}

// Balance returns the current balance for the account.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	acct, err := s.accounts.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountID: acct.ID, Amount: acct.Balance, AsOf: time.Now().UTC()}, nil
}

// History returns the newest transfers in which the account is either party.
func (s *Service) History(ctx context.Context, id string, limit int) ([]ledger.Record, error) {
	if _, err := s.accounts.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.log.ListForAccount(ctx, id, limit)
}
