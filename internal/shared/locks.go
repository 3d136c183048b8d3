package shared

// Advisory lock classes. Each critical section gets its own class so key
// spaces cannot collide.
const lockClassStock int64 = 1

// StockLockKey builds the pg_advisory_xact_lock key serialising stock checks
// for one item. Snapshot isolation alone does not order a SUM over the ledger
// against a concurrent append, so check-then-insert flows take this lock
// before reading stock. Items beyond 2^32 fold into the same key space, which
// only over-serialises.
func StockLockKey(itemID int64) int64 {
	return lockClassStock<<32 | (itemID & 0xFFFFFFFF)
}
