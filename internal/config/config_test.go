package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CurrencySymbol != "$" {
		t.Errorf("CurrencySymbol = %q, want %q", cfg.CurrencySymbol, "$")
	}
	if cfg.PhotoMaxDimensionPx != 1280 {
		t.Errorf("PhotoMaxDimensionPx = %d, want 1280", cfg.PhotoMaxDimensionPx)
	}
	if cfg.PhotoQuality != 80 {
		t.Errorf("PhotoQuality = %d, want 80", cfg.PhotoQuality)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"currency_symbol": "Ks", "photo_quality": 60, "db_max_open_conns": 1}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CurrencySymbol != "Ks" {
		t.Errorf("CurrencySymbol = %q, want %q", cfg.CurrencySymbol, "Ks")
	}
	if cfg.PhotoQuality != 60 {
		t.Errorf("PhotoQuality = %d, want 60", cfg.PhotoQuality)
	}
	// Unset scalar falls back to default
	if cfg.PhotoMaxDimensionPx != 1280 {
		t.Errorf("PhotoMaxDimensionPx = %d, want 1280", cfg.PhotoMaxDimensionPx)
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", cfg.DBMaxOpenConns)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"costing_delete", " costing_import "}}
	overlay := &Config{DisabledTools: []string{"costing_delete", "costing_export"}}

	merged := Merge(base, overlay)
	want := []string{"costing_delete", "costing_import", "costing_export"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, name := range want {
		if merged.DisabledTools[i] != name {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], name)
		}
	}
}
