package testutil

import (
	"testing"

	"camorg/internal/database"
)

// NewTestJournal creates a new in-memory SQLite journal with migrations applied.
// The journal is automatically closed when the test completes.
func NewTestJournal(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
