package account

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewMemoryStore constructs a concurrency-safe in-memory store for tests and
// local development.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts: make(map[string]Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *memoryStore) Get(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *memoryStore) Create(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.ID]; exists {
		return ErrExists
	}
	s.accounts[acct.ID] = acct
	return nil
}

func (s *memoryStore) CompareAndSwapBalance(_ context.Context, id string, expected, next int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return false, ErrNotFound
	}
	if acct.Balance != expected {
		return false, nil
	}
	acct.Balance = next
	s.accounts[id] = acct
	return true, nil
}

func (s *memoryStore) Lock(_ context.Context, ids ...string) (func(), error) {
	ordered := dedupeSorted(ids)

	locks := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		locks = append(locks, s.lockFor(id))
	}
	for _, l := range locks {
		l.Lock()
	}

	release := func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
	return release, nil
}

func (s *memoryStore) lockFor(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func dedupeSorted(ids []string) []string {
	ordered := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)
	return ordered
}
