package account

import (
	"context"
	"errors"
)

// ErrNotFound occurs when no account exists for the requested identifier.
var ErrNotFound = errors.New("account not found")

// ErrExists occurs when creating an account whose identifier is already taken.
var ErrExists = errors.New("account already exists")

// Store persists accounts and guarantees linearizable balance mutation per
// account: two concurrent swaps against the same stale expected value never
// both succeed.
type Store interface {
	// Get fetches an account by identifier.
	Get(ctx context.Context, id string) (Account, error)

	// Create inserts a new account. Used by the external registration
	// collaborator and by tests; the transfer engine never creates accounts.
	Create(ctx context.Context, acct Account) error

	// CompareAndSwapBalance sets the balance to next only if it currently
	// equals expected. Returns false (and no error) on a stale expected value.
	CompareAndSwapBalance(ctx context.Context, id string, expected, next int64) (bool, error)

	// Lock acquires per-account locks for every id, always in lexicographic
	// order so concurrent callers touching the same pair cannot deadlock.
	// The returned function releases the locks.
	Lock(ctx context.Context, ids ...string) (func(), error)
}
