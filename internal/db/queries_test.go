package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func mustNumber(t *testing.T, s string) costing.Number {
	t.Helper()
	n, err := costing.ParseNumber(s)
	if err != nil {
		t.Fatalf("ParseNumber(%q) failed: %v", s, err)
	}
	return n
}

func mustPercent(t *testing.T, s string) costing.Percent {
	t.Helper()
	p, err := costing.ParsePercent(s)
	if err != nil {
		t.Fatalf("ParsePercent(%q) failed: %v", s, err)
	}
	return p
}

// testRecord builds a committed-style record with the given id and
// timestamp. Inputs follow the worked example: 378g at 5% wastage,
// $2/lb yarn, $3 accessories, $6 cut and make.
func testRecord(t *testing.T, id string, createdAt int64) *costing.CostingRecord {
	t.Helper()
	inputs := costing.CostInputs{
		WeightGrams:         mustNumber(t, "378"),
		YarnPricePerPound:   mustNumber(t, "2"),
		WastagePct:          mustPercent(t, "5"),
		AccessoriesPerDozen: mustNumber(t, "3"),
		CutMakePerDozen:     mustNumber(t, "6"),
		MarkupPct:           mustPercent(t, "2.5"),
	}
	return &costing.CostingRecord{
		ID:          id,
		CreatedAt:   createdAt,
		AppVersion:  "test",
		CalcVersion: costing.CalcVersion,
		Style: costing.StyleAttrs{
			Name:        "crew neck pullover",
			Description: "basic 12gg crew neck",
			Composition: "100% cotton",
			Gauge:       costing.Gauge12,
			Currency:    "$",
		},
		Photo: &costing.PhotoRef{
			Width:    640,
			Height:   480,
			MimeType: "image/jpeg",
			Data:     []byte{0xff, 0xd8, 0xff, 0xe0},
		},
		Inputs:   inputs,
		Snapshot: costing.Compute(inputs),
	}
}

func TestInsertAndGetRecord(t *testing.T) {
	database := setupTestDB(t)
	want := testRecord(t, "01JTEST0000000000000000001", 1000)

	if err := InsertRecord(database, want); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	got, err := GetRecord(database, want.ID)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.ID != want.ID || got.CreatedAt != want.CreatedAt {
		t.Errorf("identity fields: got (%s, %d), want (%s, %d)",
			got.ID, got.CreatedAt, want.ID, want.CreatedAt)
	}
	if got.Style != want.Style {
		t.Errorf("style = %+v, want %+v", got.Style, want.Style)
	}
	if got.Photo == nil || got.Photo.MimeType != "image/jpeg" || got.Photo.Width != 640 {
		t.Errorf("photo = %+v", got.Photo)
	}
	if got.Inputs.WeightGrams.Raw() != "378" {
		t.Errorf("weight raw = %q, want 378", got.Inputs.WeightGrams.Raw())
	}
	if got.Inputs.FabricPerDozen.Present() {
		t.Error("blank fabric input must stay absent after a round-trip")
	}
	if !got.Snapshot.Equal(want.Snapshot) {
		t.Errorf("snapshot = %+v, want %+v", got.Snapshot, want.Snapshot)
	}
}

func TestInsertRecord_NoPhotoColumnsStayNull(t *testing.T) {
	database := setupTestDB(t)
	r := testRecord(t, "01JTEST0000000000000000002", 1000)
	r.Photo = nil

	if err := InsertRecord(database, r); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	got, err := GetRecord(database, r.ID)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.Photo != nil {
		t.Errorf("photo = %+v, want nil", got.Photo)
	}
}

func TestInsertRecord_DuplicateID(t *testing.T) {
	database := setupTestDB(t)
	r := testRecord(t, "01JTEST0000000000000000003", 1000)

	if err := InsertRecord(database, r); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := InsertRecord(database, r); err != ErrUniqueConstraint {
		t.Errorf("second insert err = %v, want ErrUniqueConstraint", err)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	database := setupTestDB(t)
	_, err := GetRecord(database, "01JMISSING0000000000000000")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestListRecords_NewestFirst(t *testing.T) {
	database := setupTestDB(t)

	// Same timestamp for b and c: id is the tiebreak.
	for i, spec := range []struct {
		id string
		ts int64
	}{
		{"01JTESTA000000000000000000", 100},
		{"01JTESTB000000000000000000", 200},
		{"01JTESTC000000000000000000", 200},
	} {
		if err := InsertRecord(database, testRecord(t, spec.id, spec.ts)); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	records, err := ListRecords(database, 0, 0)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	wantOrder := []string{
		"01JTESTC000000000000000000",
		"01JTESTB000000000000000000",
		"01JTESTA000000000000000000",
	}
	for i, want := range wantOrder {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %s, want %s", i, records[i].ID, want)
		}
	}
}

func TestListRecords_LimitOffset(t *testing.T) {
	database := setupTestDB(t)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("01JTESTP%017d", i)
		if err := InsertRecord(database, testRecord(t, id, int64(i))); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	page, err := ListRecords(database, 2, 1)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("len = %d, want 2", len(page))
	}
	if page[0].CreatedAt != 3 || page[1].CreatedAt != 2 {
		t.Errorf("page timestamps = %d, %d, want 3, 2", page[0].CreatedAt, page[1].CreatedAt)
	}

	n, err := CountRecords(database)
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if n != 5 {
		t.Errorf("count = %d, want 5", n)
	}
}

func TestDeleteRecord(t *testing.T) {
	database := setupTestDB(t)
	r := testRecord(t, "01JTEST0000000000000000004", 1000)
	if err := InsertRecord(database, r); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := DeleteRecord(database, r.ID); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := GetRecord(database, r.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("record still retrievable after delete: %v", err)
	}
	if err := DeleteRecord(database, r.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete err = %v, want NOT_FOUND", err)
	}
}

func TestBulkPutRecords_ReplacesExisting(t *testing.T) {
	database := setupTestDB(t)
	existing := testRecord(t, "01JTEST0000000000000000005", 1000)
	if err := InsertRecord(database, existing); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	replacement := testRecord(t, existing.ID, 2000)
	replacement.Style.Name = "replaced"
	fresh := testRecord(t, "01JTEST0000000000000000006", 3000)

	if err := BulkPutRecords(database, []*costing.CostingRecord{replacement, fresh}); err != nil {
		t.Fatalf("BulkPutRecords failed: %v", err)
	}

	got, err := GetRecord(database, existing.ID)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.Style.Name != "replaced" || got.CreatedAt != 2000 {
		t.Errorf("record not replaced: name %q, created_at %d", got.Style.Name, got.CreatedAt)
	}
	n, _ := CountRecords(database)
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestCommitRecord_InsertsAndClearsDraft(t *testing.T) {
	database := setupTestDB(t)
	store := NewDraftStore(database)

	draft := costing.NewDraft("$")
	draft.Name = "pending"
	if err := store.PutDraft(draft, 4); err != nil {
		t.Fatalf("PutDraft failed: %v", err)
	}

	r := testRecord(t, "01JTEST0000000000000000007", 1000)
	if err := CommitRecord(database, r); err != nil {
		t.Fatalf("CommitRecord failed: %v", err)
	}

	if _, err := GetRecord(database, r.ID); err != nil {
		t.Errorf("committed record not retrievable: %v", err)
	}
	got, _, err := store.GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if got != nil {
		t.Error("draft slot must be empty after commit")
	}
}

func TestCommitRecord_DuplicateIDLeavesDraftIntact(t *testing.T) {
	database := setupTestDB(t)
	store := NewDraftStore(database)

	r := testRecord(t, "01JTEST0000000000000000008", 1000)
	if err := InsertRecord(database, r); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	draft := costing.NewDraft("$")
	if err := store.PutDraft(draft, 2); err != nil {
		t.Fatalf("PutDraft failed: %v", err)
	}

	if err := CommitRecord(database, r); err != ErrUniqueConstraint {
		t.Fatalf("CommitRecord err = %v, want ErrUniqueConstraint", err)
	}

	// The failed commit must not have cleared the draft.
	got, stepIndex, err := store.GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if got == nil || stepIndex != 2 {
		t.Errorf("draft = %v at step %d, want intact draft at step 2", got, stepIndex)
	}
}
