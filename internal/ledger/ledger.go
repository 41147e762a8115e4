package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound occurs when no transaction matches the lookup.
	ErrNotFound = errors.New("transaction not found")

	// ErrDuplicateKey indicates the idempotency key is already recorded and
	// therefore the operation must be treated as a replay, not re-executed.
	ErrDuplicateKey = errors.New("idempotency key already recorded")
)

// Kind classifies the direction and fee treatment of a fund movement.
type Kind string

const (
	// KindSend is a peer-to-peer transfer between customers.
	KindSend Kind = "send"
	// KindCashOut moves funds from a customer to an agent for physical payout.
	KindCashOut Kind = "cash-out"
	// KindCashIn moves funds from an agent into a customer account.
	KindCashIn Kind = "cash-in"
)

// ParseKind validates a wire-level kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSend, KindCashOut, KindCashIn:
		return Kind(s), nil
	}
	return "", errors.New("unknown transfer kind: " + s)
}

// Record is an immutable entry in the transaction log. Once appended it is
// never mutated or deleted; the log is the audit trail of the system.
type Record struct {
	ID             string
	From           string
	To             string
	Amount         int64
	Fee            int64
	Kind           Kind
	IdempotencyKey string
	CreatedAt      time.Time
}

// Log is the append-only durable store of completed transfers. Append is
// durable before it returns, and a record appended by one call is visible to
// every later FindByIdempotencyKey.
type Log interface {
	// Append writes a completed transfer. It fails with ErrDuplicateKey when
	// the idempotency key is already present.
	Append(ctx context.Context, rec Record) error

	// FindByIdempotencyKey returns the record for the given key, or ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, key string) (Record, error)

	// ListForAccount returns up to limit records in which the account is
	// either party, newest first.
	ListForAccount(ctx context.Context, id string, limit int) ([]Record, error)
}
