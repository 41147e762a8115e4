package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func record(i int, from, to string) Record {
	return Record{
		ID:             fmt.Sprintf("tx-%d", i),
		From:           from,
		To:             to,
		Amount:         int64(100 + i),
		Kind:           KindSend,
		IdempotencyKey: fmt.Sprintf("key-%d", i),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestInMemoryLogAppendAndFind(t *testing.T) {
	log := NewInMemoryLog()
	ctx := context.Background()

	rec := record(1, "a", "b")
	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := log.FindByIdempotencyKey(ctx, "key-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != "tx-1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := log.FindByIdempotencyKey(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryLogRejectsDuplicateKey(t *testing.T) {
	log := NewInMemoryLog()
	ctx := context.Background()

	if err := log.Append(ctx, record(1, "a", "b")); err != nil {
		t.Fatalf("append: %v", err)
	}

	dup := record(2, "a", "b")
	dup.IdempotencyKey = "key-1"
	if err := log.Append(ctx, dup); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestInMemoryLogListNewestFirst(t *testing.T) {
	log := NewInMemoryLog()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := log.Append(ctx, record(i, "a", "b")); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	// A record not involving "a" must not show up in its history.
	if err := log.Append(ctx, record(5, "c", "d")); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := log.ListForAccount(ctx, "a", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"tx-4", "tx-3", "tx-2"} {
		if recs[i].ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, recs[i].ID)
		}
	}

	recs, err = log.ListForAccount(ctx, "b", 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 records for receiver, got %d", len(recs))
	}
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"send", "cash-out", "cash-in"} {
		if _, err := ParseKind(valid); err != nil {
			t.Fatalf("ParseKind(%q): %v", valid, err)
		}
	}
	if _, err := ParseKind("wire"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
