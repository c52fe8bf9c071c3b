package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myintmo/knitcost/internal/config"
	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, tmpDir
}

// seedRecord commits one record through the draft slot.
func seedRecord(t *testing.T, database *sql.DB) *costing.CostingRecord {
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
	out, err := ops.Commit(database, ops.CommitInput{AppVersion: "test"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return out.Record
}

// captureStdout runs fn with stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe failed: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout
	return buf.String()
}

func TestCLIList(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "list"})
	})
	if runErr != nil {
		t.Fatalf("list failed: %v", runErr)
	}

	var output ops.ListOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("output is not a list output: %v", err)
	}
	if len(output.Items) != 1 || output.Items[0].ID != r.ID {
		t.Errorf("items = %+v", output.Items)
	}
}

func TestCLIShow(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	t.Run("existing record", func(t *testing.T) {
		var runErr error
		out := captureStdout(t, func() {
			runErr = app.Run([]string{"knitcost", "show", r.ID})
		})
		if runErr != nil {
			t.Fatalf("show failed: %v", runErr)
		}
		if !strings.Contains(out, "crew neck pullover") {
			t.Error("output missing style name")
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		err := app.Run([]string{"knitcost", "show", "01JNOPE000000000000000000"})
		if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestCLIDelete(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "delete", r.ID})
	})
	if runErr != nil {
		t.Fatalf("delete failed: %v", runErr)
	}

	var output ops.DeleteOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("output is not a delete output: %v", err)
	}
	if !output.Deleted {
		t.Error("Deleted = false")
	}

	if err := app.Run([]string{"knitcost", "show", r.ID}); err == nil {
		t.Error("show after delete should fail")
	}
}

func TestCLIDuplicate(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	var runErr error
	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "duplicate", r.ID})
	})
	if runErr != nil {
		t.Fatalf("duplicate failed: %v", runErr)
	}

	draft, index, err := db.NewDraftStore(database).GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft == nil || draft.WeightGrams != "378" || index != 0 {
		t.Errorf("draft = %+v at step %d", draft, index)
	}
}

func TestCLICompute(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "compute", r.ID})
	})
	if runErr != nil {
		t.Fatalf("compute failed: %v", runErr)
	}

	var output ops.ComputeOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("output is not a compute output: %v", err)
	}
	if !output.Match {
		t.Error("Match = false for a freshly committed record")
	}
}

func TestCLIExportImport(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	path := filepath.Join(tmpDir, "backup.json")
	var runErr error
	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "export", "--path", path})
	})
	if runErr != nil {
		t.Fatalf("export failed: %v", runErr)
	}

	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "delete", r.ID})
	})
	if runErr != nil {
		t.Fatalf("delete failed: %v", runErr)
	}

	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "import", "--path", path})
	})
	if runErr != nil {
		t.Fatalf("import failed: %v", runErr)
	}

	restored, err := ops.Get(database, ops.GetInput{ID: r.ID})
	if err != nil {
		t.Fatalf("Get after import failed: %v", err)
	}
	if restored.Style.Name != "crew neck pullover" {
		t.Errorf("Name = %q", restored.Style.Name)
	}
}

func TestCLIDiscard(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	store := db.NewDraftStore(database)
	if err := store.PutDraft(costing.NewDraft("$"), 3); err != nil {
		t.Fatalf("PutDraft failed: %v", err)
	}

	var runErr error
	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "discard"})
	})
	if runErr != nil {
		t.Fatalf("discard failed: %v", runErr)
	}

	draft, _, err := store.GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft != nil {
		t.Error("draft survived discard")
	}
}

func TestCLIPrint(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	path := filepath.Join(tmpDir, "costing.html")
	var runErr error
	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "print", "--out", path, r.ID})
	})
	if runErr != nil {
		t.Fatalf("print failed: %v", runErr)
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(doc), "$2.50") {
		t.Error("document missing FOB price")
	}
}

func TestCLICard(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	r := seedRecord(t, database)
	app := newCLIApp(database, config.DefaultConfig(), tmpDir)

	path := filepath.Join(tmpDir, "card.png")
	var runErr error
	captureStdout(t, func() {
		runErr = app.Run([]string{"knitcost", "card", "--out", path, r.ID})
	})
	if runErr != nil {
		t.Fatalf("card failed: %v", runErr)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil || format != "png" {
		t.Fatalf("card is not a PNG: format=%q err=%v", format, err)
	}
	if cfg.Width != 600 || cfg.Height != 800 {
		t.Errorf("card size = %dx%d", cfg.Width, cfg.Height)
	}
}

// writeTestPhoto writes a small PNG the wizard can load from disk.
func writeTestPhoto(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 6))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	path := filepath.Join(dir, "style.png")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestWizardNew_FullWalk(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := config.DefaultConfig()
	photoPath := writeTestPhoto(t, tmpDir)

	// Style sub-fields, then each entry step in schema order. Blank
	// lines keep the current value (the optional fields stay blank).
	input := strings.Join([]string{
		"crew neck pullover",
		"basic 12gg crew neck",
		"100% cotton",
		"12",
		"378",
		photoPath,
		"", // keep default currency
		"2",
		"5",
		"3",
		"", // fabric
		"", // fabric cost
		"", // fabric attach
		"", // knit minutes
		"6",
		"save",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runWizardNew(database, cfg, strings.NewReader(input), &out); err != nil {
		t.Fatalf("wizard failed: %v", err)
	}
	if !strings.Contains(out.String(), "Saved ") {
		t.Fatalf("wizard did not save:\n%s", out.String())
	}

	listed, err := ops.List(database, ops.ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Fatalf("records = %d, want 1", len(listed.Items))
	}

	got, err := ops.Get(database, ops.GetInput{ID: listed.Items[0].ID, IncludePhoto: true})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s := costing.RoundMoney(got.Snapshot.FOBPerPiece).StringFixed(2); s != "2.50" {
		t.Errorf("FOB = %s, want 2.50", s)
	}
	if s := costing.RoundMoney(got.Snapshot.FinalPerPiece).StringFixed(2); s != "2.56" {
		t.Errorf("final = %s, want 2.56", s)
	}
	if got.Photo == nil {
		t.Error("photo was not stored")
	}

	// Commit clears the draft slot.
	draft, _, err := db.NewDraftStore(database).GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft != nil {
		t.Error("draft survived commit")
	}
}

func TestWizardNew_RejectionStaysOnStep(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := config.DefaultConfig()
	photoPath := writeTestPhoto(t, tmpDir)

	// "abc" is rejected at the yarn price step; "2" then passes. The
	// session ends with /quit, keeping the draft.
	input := strings.Join([]string{
		"crew neck pullover",
		"basic crew neck",
		"100% cotton",
		"12",
		"378",
		photoPath,
		"",
		"abc",
		"2",
		"/quit",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runWizardNew(database, cfg, strings.NewReader(input), &out); err != nil {
		t.Fatalf("wizard failed: %v", err)
	}
	if !strings.Contains(out.String(), "Yarn price per pound must be a number") {
		t.Errorf("missing rejection message:\n%s", out.String())
	}

	draft, index, err := db.NewDraftStore(database).GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft == nil || draft.YarnPricePerPound != "2" {
		t.Fatalf("draft = %+v", draft)
	}
	if index != 2 {
		t.Errorf("saved step = %d, want 2 (wastage)", index)
	}
}

func TestWizardResume_ContinuesAtSavedStep(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := config.DefaultConfig()
	photoPath := writeTestPhoto(t, tmpDir)

	// First session: fill the style step and yarn price, then run out
	// of input (treated as quit; the draft is autosaved).
	first := strings.Join([]string{
		"crew neck pullover",
		"basic crew neck",
		"100% cotton",
		"12",
		"378",
		photoPath,
		"",
		"2",
	}, "\n") + "\n"
	var out bytes.Buffer
	if err := runWizardNew(database, cfg, strings.NewReader(first), &out); err != nil {
		t.Fatalf("first session failed: %v", err)
	}

	// Second session resumes at the wastage step and finishes.
	second := strings.Join([]string{
		"5",
		"3",
		"",
		"",
		"",
		"",
		"6",
		"save",
	}, "\n") + "\n"
	out.Reset()
	if err := runWizardResume(database, cfg, strings.NewReader(second), &out); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if !strings.Contains(out.String(), "Resuming at step 3 of 16") {
		t.Errorf("missing resume banner:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Saved ") {
		t.Fatalf("resume did not save:\n%s", out.String())
	}

	listed, err := ops.List(database, ops.ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed.Items) != 1 {
		t.Errorf("records = %d, want 1", len(listed.Items))
	}
}

func TestWizardPreview_EditJumpsBack(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := config.DefaultConfig()
	photoPath := writeTestPhoto(t, tmpDir)

	// Walk to the preview, jump back to the cut-and-make step, change
	// it, walk forward again, and save.
	input := strings.Join([]string{
		"crew neck pullover",
		"basic crew neck",
		"100% cotton",
		"12",
		"378",
		photoPath,
		"",
		"2",
		"5",
		"3",
		"",
		"",
		"",
		"",
		"6",
		"edit 11",
		"9", // cut and make now 9/dozen
		"save",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runWizardNew(database, cfg, strings.NewReader(input), &out); err != nil {
		t.Fatalf("wizard failed: %v", err)
	}

	listed, err := ops.List(database, ops.ListInput{})
	if err != nil || len(listed.Items) != 1 {
		t.Fatalf("List = %+v, err %v", listed, err)
	}
	got, err := ops.Get(database, ops.GetInput{ID: listed.Items[0].ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if raw := got.Inputs.CutMakePerDozen.Raw(); raw != "9" {
		t.Errorf("cut and make = %q, want 9", raw)
	}
}

func TestWizardDiscard(t *testing.T) {
	database, _ := setupTestDB(t)
	cfg := config.DefaultConfig()

	input := "sweater\n/discard\n"
	var out bytes.Buffer
	if err := runWizardNew(database, cfg, strings.NewReader(input), &out); err != nil {
		t.Fatalf("wizard failed: %v", err)
	}

	draft, _, err := db.NewDraftStore(database).GetDraft()
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if draft != nil {
		t.Error("draft survived discard")
	}
}

func TestIsCLIModeHelpers(t *testing.T) {
	for _, cmd := range []string{"new", "list", "export", "web", "help"} {
		if !cliCommands[cmd] {
			t.Errorf("%q is not a registered CLI command", cmd)
		}
	}
	if cliCommands["bogus"] {
		t.Error("unknown command registered")
	}
}
