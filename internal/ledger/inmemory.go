package ledger

import (
	"context"
	"sync"
)

type inMemoryLog struct {
	mu      sync.RWMutex
	records []Record
	byKey   map[string]int
}

// NewInMemoryLog creates a concurrency-safe in-memory transaction log useful
// for unit tests and local development.
func NewInMemoryLog() Log {
	return &inMemoryLog{byKey: make(map[string]int)}
}

func (l *inMemoryLog) Append(_ context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byKey[rec.IdempotencyKey]; exists {
		return ErrDuplicateKey
	}
	l.records = append(l.records, rec)
	l.byKey[rec.IdempotencyKey] = len(l.records) - 1
	return nil
}

func (l *inMemoryLog) FindByIdempotencyKey(_ context.Context, key string) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byKey[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return l.records[idx], nil
}

func (l *inMemoryLog) ListForAccount(_ context.Context, id string, limit int) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, limit)
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := l.records[i]
		if rec.From == id || rec.To == id {
			out = append(out, rec)
		}
	}
	return out, nil
}
