package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists accounts in PostgreSQL. Balance swaps are guarded by
// a conditional UPDATE so a stale expected value never wins.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed account store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get fetches an account row by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT id, role, status, balance, pin_hash, created_at
        FROM accounts WHERE id = $1`, id)

	var acct Account
	var createdAt time.Time
	if err := row.Scan(&acct.ID, &acct.Role, &acct.Status, &acct.Balance, &acct.PinHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}

// Create inserts a new account row.
func (s *PostgresStore) Create(ctx context.Context, acct Account) error {
	_, err := s.db.Exec(ctx, `INSERT INTO accounts (id, role, status, balance, pin_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		acct.ID, acct.Role, acct.Status, acct.Balance, acct.PinHash, acct.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrExists
	}
	return err
}

// CompareAndSwapBalance updates the balance only when the stored value still
// matches expected.
func (s *PostgresStore) CompareAndSwapBalance(ctx context.Context, id string, expected, next int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET balance = $3
        WHERE id = $1 AND balance = $2`, id, expected, next)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale expected value.
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

// Lock takes session advisory locks for the given ids in lexicographic order.
// The locks are held on a dedicated connection until the release function runs.
func (s *PostgresStore) Lock(ctx context.Context, ids ...string) (func(), error) {
	ordered := dedupeSorted(ids)

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	locked := make([]string, 0, len(ordered))
	for _, id := range ordered {
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, id); err != nil {
			unlockAll(conn, locked)
			conn.Release()
			return nil, fmt.Errorf("lock account %s: %w", id, err)
		}
		locked = append(locked, id)
	}

	release := func() {
		unlockAll(conn, locked)
		conn.Release()
	}
	return release, nil
}

func unlockAll(conn *pgxpool.Conn, ids []string) {
	for i := len(ids) - 1; i >= 0; i-- {
		// Best effort; releasing the session would also drop the locks.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, ids[i])
	}
}
