package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLog persists transaction records in PostgreSQL. A unique index on
// idempotency_key makes duplicate appends lose deterministically.
type PostgresLog struct {
	db *pgxpool.Pool
}

// NewPostgresLog constructs a Postgres-backed transaction log.
func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append inserts the record. The insert commit is the durability point.
func (l *PostgresLog) Append(ctx context.Context, rec Record) error {
	_, err := l.db.Exec(ctx, `INSERT INTO transactions
        (id, from_id, to_id, amount, fee, kind, idempotency_key, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.From, rec.To, rec.Amount, rec.Fee, string(rec.Kind), rec.IdempotencyKey, rec.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}

// FindByIdempotencyKey fetches the record previously committed for the key.
func (l *PostgresLog) FindByIdempotencyKey(ctx context.Context, key string) (Record, error) {
	row := l.db.QueryRow(ctx, `SELECT id, from_id, to_id, amount, fee, kind, idempotency_key, created_at
        FROM transactions WHERE idempotency_key = $1`, key)
	return scanRecord(row)
}

// ListForAccount returns the newest records involving the account.
func (l *PostgresLog) ListForAccount(ctx context.Context, id string, limit int) ([]Record, error) {
	rows, err := l.db.Query(ctx, `SELECT id, from_id, to_id, amount, fee, kind, idempotency_key, created_at
        FROM transactions WHERE from_id = $1 OR to_id = $1
        ORDER BY created_at DESC, id DESC LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var kind string
	var createdAt time.Time
	if err := row.Scan(&rec.ID, &rec.From, &rec.To, &rec.Amount, &rec.Fee, &kind, &rec.IdempotencyKey, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Kind = Kind(kind)
	rec.CreatedAt = createdAt.UTC()
	return rec, nil
}
