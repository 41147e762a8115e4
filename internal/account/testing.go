package account

// SeedBalance is a test helper that overwrites the balance for an account when
// using the in-memory store.
func SeedBalance(s Store, id string, amount int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acct := mem.accounts[id]
		acct.Balance = amount
		mem.accounts[id] = acct
	}
}
