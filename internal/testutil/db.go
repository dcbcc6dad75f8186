package testutil

import (
	"path/filepath"
	"testing"

	"github.com/hmesfin/agentgate/internal/journal"
)

// NewTestJournal returns a temporary, migrated journal database.
//
// The caller does not need to close it; cleanup is registered on t.Cleanup.
func NewTestJournal(t *testing.T) *journal.DB {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	db, err := journal.OpenAndMigrate(path)
	if err != nil {
		t.Fatalf("opening test journal: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
