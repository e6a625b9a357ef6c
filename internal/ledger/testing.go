package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets an account balance directly when
// using the in-memory store.
func SeedBalance(s Store, id int64, balance decimal.Decimal) {
	if mem, ok := s.(*memoryStore); ok {
		if rec := mem.record(id); rec != nil {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.acct.Balance = balance
		}
	}
}
