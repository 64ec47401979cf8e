/*
replay.go - Ledger replay and consistency checking

PURPOSE:
  The ledger is the single source of truth: the balance projection must
  always be derivable by replaying the entries from an empty state.
  Replay computes that derivation; CheckConsistency verifies both the
  per-entry chain invariant and that the stored projection matches the
  replayed result. A violation indicates a concurrency bug, not bad
  input.
*/
package timebank

import "context"

// Replay folds the signed deltas of the given entries over an empty
// balance. Entries must be in append order.
func Replay(entries []LedgerEntry) int {
	balance := 0
	for _, e := range entries {
		balance += e.MinutesDelta
	}
	return balance
}

// CheckConsistency verifies, for one employee:
//
//  1. entry[i].ResultingBalance == entry[i-1].ResultingBalance +
//     entry[i].MinutesDelta for the append-ordered sequence (the first
//     entry chains from zero), and
//  2. the stored balance projection equals the replayed final balance.
//
// Returns an InconsistentLedgerError pointing at the first violation.
func (b *Bank) CheckConsistency(ctx context.Context, employeeID string) error {
	entries, err := b.store.ListEntries(ctx, employeeID)
	if err != nil {
		return err
	}

	running := 0
	for i, e := range entries {
		expected := running + e.MinutesDelta
		if e.ResultingBalance != expected {
			return &InconsistentLedgerError{
				EmployeeID: employeeID,
				EntryID:    e.ID,
				Index:      i,
				Expected:   expected,
				Got:        e.ResultingBalance,
			}
		}
		running = expected
	}

	bal, err := b.store.GetBalance(ctx, employeeID)
	if err != nil {
		return err
	}
	if bal.BankedMinutes != running {
		return &InconsistentLedgerError{
			EmployeeID: employeeID,
			EntryID:    "balance-projection",
			Index:      len(entries),
			Expected:   running,
			Got:        bal.BankedMinutes,
		}
	}
	return nil
}
