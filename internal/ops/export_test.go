package ops

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

func TestExport_WritesBackupFile(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r1 := commitTestRecord(t, database)
	r2 := commitTestRecord(t, database)

	exportPath := filepath.Join(tmpDir, "backup.json")
	out, err := Export(database, tmpDir, ExportInput{Path: exportPath, AppVersion: "test"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Path != exportPath || out.Count != 2 || out.ExportedAt == 0 {
		t.Errorf("output = %+v", out)
	}

	payload, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("reading export failed: %v", err)
	}
	var backup BackupFile
	if err := json.Unmarshal(payload, &backup); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if !backup.KnitcostBackup || backup.SchemaVersion != BackupSchemaVersion {
		t.Errorf("header = %+v", backup)
	}
	if len(backup.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(backup.Records))
	}

	ids := map[string]bool{backup.Records[0].ID: true, backup.Records[1].ID: true}
	if !ids[r1.ID] || !ids[r2.ID] {
		t.Errorf("exported ids = %v", ids)
	}
	for _, b := range backup.Records {
		if b.Photo == nil || b.Photo.DataBase64 == "" {
			t.Errorf("record %s: photo not inlined", b.ID)
		}
	}
}

func TestExport_DefaultPath(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	commitTestRecord(t, database)

	out, err := Export(database, tmpDir, ExportInput{AppVersion: "test"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasPrefix(out.Path, filepath.Join(tmpDir, "exports")) {
		t.Errorf("default path = %q", out.Path)
	}
	if !strings.HasSuffix(out.Path, ".json") {
		t.Errorf("default path = %q, want .json suffix", out.Path)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	source, sourceDir := setupTestDB(t)
	want := commitTestRecord(t, source)

	exportPath := filepath.Join(sourceDir, "backup.json")
	if _, err := Export(source, sourceDir, ExportInput{Path: exportPath, AppVersion: "test"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Restore into a brand-new database.
	dest, _ := setupTestDB(t)
	out, err := Import(dest, ImportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Imported = %d, want 1", out.Imported)
	}

	got, err := db.GetRecord(dest, want.ID)
	if err != nil {
		t.Fatalf("GetRecord after import failed: %v", err)
	}
	if got.CreatedAt != want.CreatedAt || got.AppVersion != want.AppVersion || got.CalcVersion != want.CalcVersion {
		t.Errorf("identity = %+v", got)
	}
	if got.Style != want.Style {
		t.Errorf("style = %+v, want %+v", got.Style, want.Style)
	}
	if got.Inputs.WeightGrams.Raw() != "378" || got.Inputs.FabricPerDozen.Present() {
		t.Error("raw input forms or blank-vs-zero lost in round-trip")
	}
	if !got.Snapshot.Equal(want.Snapshot) {
		t.Errorf("snapshot = %+v, want %+v", got.Snapshot, want.Snapshot)
	}
	if got.Photo == nil || !bytes.Equal(got.Photo.Data, want.Photo.Data) {
		t.Error("photo bytes lost in round-trip")
	}
}

func TestImport_ReplacesExistingIDs(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := commitTestRecord(t, database)

	exportPath := filepath.Join(tmpDir, "backup.json")
	if _, err := Export(database, tmpDir, ExportInput{Path: exportPath, AppVersion: "test"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Importing into the same database puts over the existing row.
	out, err := Import(database, ImportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Imported = %d, want 1", out.Imported)
	}
	n, _ := db.CountRecords(database)
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	if _, err := db.GetRecord(database, r.ID); err != nil {
		t.Errorf("record missing after re-import: %v", err)
	}
}

func TestImport_MalformedFiles(t *testing.T) {
	database, tmpDir := setupTestDB(t)

	writeFile := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		return path
	}

	tests := []struct {
		name    string
		content string
	}{
		{"not_json", "{{{"},
		{"missing_marker", `{"schema_version": "1.0", "records": []}`},
		{"wrong_schema", `{"knitcost_backup": true, "schema_version": "9.9", "records": []}`},
		{"missing_id", `{"knitcost_backup": true, "schema_version": "1.0", "records": [{"created_at": 1}]}`},
		{"bad_gauge", `{"knitcost_backup": true, "schema_version": "1.0",
			"records": [{"id": "01JX", "style": {"gauge": 4}}]}`},
		{"bad_photo_base64", `{"knitcost_backup": true, "schema_version": "1.0",
			"records": [{"id": "01JX", "style": {"gauge": 12}, "photo": {"data_base64": "!!!"}}]}`},
		{"out_of_range_percent", `{"knitcost_backup": true, "schema_version": "1.0",
			"records": [{"id": "01JX", "style": {"gauge": 12}, "inputs": {"wastage_pct": "150"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(tt.name+".json", tt.content)
			_, err := Import(database, ImportInput{Path: path})
			if !errors.Is(err, errors.ErrMalformedImport) {
				t.Errorf("err = %v, want MALFORMED_IMPORT", err)
			}
		})
	}

	// Nothing imported by any rejected file.
	n, _ := db.CountRecords(database)
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestImport_Errors(t *testing.T) {
	database, tmpDir := setupTestDB(t)

	if _, err := Import(database, ImportInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank path err = %v, want INVALID_REQUEST", err)
	}
	missing := filepath.Join(tmpDir, "nope.json")
	if _, err := Import(database, ImportInput{Path: missing}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing file err = %v, want NOT_FOUND", err)
	}
}
