package ops

import (
	"database/sql"
	"testing"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
)

func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, tmpDir
}

// seedValidDraft stores a complete draft in the slot: the worked
// example (378g, $2/lb yarn, 5% wastage, $3 accessories, $6 cut and
// make) which totals $30/dozen, $2.50 FOB, $2.56 final.
func seedValidDraft(t *testing.T, database *sql.DB) *costing.WizardDraft {
	t.Helper()
	draft := costing.NewDraft("$")
	draft.Name = "crew neck pullover"
	draft.Description = "basic 12gg crew neck"
	draft.Composition = "100% cotton"
	draft.Gauge = costing.Gauge12
	draft.WeightGrams = "378"
	draft.Photo = &costing.PhotoRef{Width: 4, Height: 4, MimeType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	draft.YarnPricePerPound = "2"
	draft.WastagePct = "5"
	draft.AccessoriesPerDozen = "3"
	draft.CutMakePerDozen = "6"

	if err := db.NewDraftStore(database).PutDraft(draft, 0); err != nil {
		t.Fatalf("PutDraft failed: %v", err)
	}
	return draft
}

// commitTestRecord seeds a valid draft and commits it.
func commitTestRecord(t *testing.T, database *sql.DB) *costing.CostingRecord {
	t.Helper()
	seedValidDraft(t, database)
	out, err := Commit(database, CommitInput{AppVersion: "test"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return out.Record
}
