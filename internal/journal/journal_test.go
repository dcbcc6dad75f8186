package journal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hmesfin/agentgate/internal/journal"
	"github.com/hmesfin/agentgate/internal/testutil"
)

func TestRecordAndGet(t *testing.T) {
	db := testutil.NewTestJournal(t)

	entry := &journal.Entry{
		Tool:     "Bash",
		Input:    "npm run dev",
		Decision: "block",
		Category: "frontend-dev-server",
	}
	testutil.RequireNoError(t, db.Record(entry), "recording entry")

	if entry.ID == "" {
		t.Fatal("Record must generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("Record must set CreatedAt")
	}

	got, err := db.Get(entry.ID)
	testutil.RequireNoError(t, err, "getting entry")
	testutil.RequireEqual(t, "Bash", got.Tool, "tool")
	testutil.RequireEqual(t, "npm run dev", got.Input, "input")
	testutil.RequireEqual(t, "block", got.Decision, "decision")
	testutil.RequireEqual(t, "frontend-dev-server", got.Category, "category")
}

func TestRecordValidation(t *testing.T) {
	db := testutil.NewTestJournal(t)

	if err := db.Record(&journal.Entry{Decision: "allow"}); err == nil {
		t.Fatal("missing tool must be rejected")
	}
	if err := db.Record(&journal.Entry{Tool: "Bash"}); err == nil {
		t.Fatal("missing decision must be rejected")
	}
}

func TestListNewestFirst(t *testing.T) {
	db := testutil.NewTestJournal(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, input := range []string{"first", "second", "third"} {
		err := db.Record(&journal.Entry{
			Tool:      "Bash",
			Input:     input,
			Decision:  "allow",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		testutil.RequireNoError(t, err, "recording "+input)
	}

	entries, err := db.List(0)
	testutil.RequireNoError(t, err, "listing all")
	testutil.RequireLen(t, entries, 3, "all entries")
	testutil.RequireEqual(t, "third", entries[0].Input, "newest first")
	testutil.RequireEqual(t, "first", entries[2].Input, "oldest last")

	limited, err := db.List(2)
	testutil.RequireNoError(t, err, "listing limited")
	testutil.RequireLen(t, limited, 2, "limited entries")
	testutil.RequireEqual(t, "third", limited[0].Input, "limit keeps newest")
}

func TestGetNotFound(t *testing.T) {
	db := testutil.NewTestJournal(t)

	_, err := db.Get("no-such-id")
	if !errors.Is(err, journal.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestClear(t *testing.T) {
	db := testutil.NewTestJournal(t)

	for _, input := range []string{"a", "b"} {
		err := db.Record(&journal.Entry{Tool: "Bash", Input: input, Decision: "allow"})
		testutil.RequireNoError(t, err, "recording")
	}

	n, err := db.Clear()
	testutil.RequireNoError(t, err, "clearing")
	testutil.RequireEqual(t, int64(2), n, "cleared count")

	entries, err := db.List(0)
	testutil.RequireNoError(t, err, "listing after clear")
	testutil.RequireLen(t, entries, 0, "journal empty")
}

func TestOpenAndMigrateRequiresPath(t *testing.T) {
	_, err := journal.OpenAndMigrate("")
	if err == nil {
		t.Fatal("empty path must be rejected")
	}
}
