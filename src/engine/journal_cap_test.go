package engine_test

import (
	"errors"
	"testing"

	"relstore/src/engine"
	"relstore/src/settings"
)

// TestInsertJournalFull verifies settings.MaxJournalEntries actually bounds
// AtomicLogScope: an insert touching more indexes than the cap allows fails
// with ErrJournalFull, and the partial index writes it does manage to log
// are rolled back — the failed insert leaves no trace, just like any other
// mid-command failure.
func TestInsertJournalFull(t *testing.T) {
	saved := settings.GetSettings()
	restored := *saved
	t.Cleanup(func() { settings.SetSettings(&restored) })

	capped := *saved
	capped.MaxJournalEntries = 1
	settings.SetSettings(&capped)

	ctx, tables := schema(t)

	if err := engine.ExecuteInsert(ctx, &Customer{ID: 1, Name: "A"}); err != nil {
		t.Fatalf("insert customer: %v", err)
	}

	// Order has two indexes (primary + CustomerID), so its insert needs two
	// journal entries and must hit the cap of 1.
	err := engine.ExecuteInsert(ctx, &Order{ID: 1, CustomerID: 1})
	if !errors.Is(err, engine.ErrJournalFull) {
		t.Fatalf("expected ErrJournalFull, got %v", err)
	}

	orderTable := mustTable(t, tables, "Order")
	if got := len(orderTable.PrimaryIndex().All()); got != 0 {
		t.Fatalf("expected the capped insert to leave no trace, found %d orders", got)
	}
}
