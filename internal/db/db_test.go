package db

import (
	"path/filepath"
	"testing"

	"github.com/myintmo/knitcost/internal/config"
)

func TestInit_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	db1, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	db1.Close()

	db2, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer db2.Close()

	version, err := GetUserVersion(db2)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_CreatesExportsDir(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	exportsDir := filepath.Join(tmpDir, "exports")
	if _, err := Init(tmpDir); err != nil {
		t.Fatalf("re-Init failed: %v", err)
	}
	if _, err := filepath.Glob(exportsDir); err != nil {
		t.Errorf("exports dir check failed: %v", err)
	}
}

func TestConfigurePool(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	// Nil config and zero values are no-ops; non-zero values apply.
	ConfigurePool(database, nil)
	ConfigurePool(database, &config.Config{})
	ConfigurePool(database, &config.Config{DBMaxOpenConns: 1, DBMaxIdleConns: 1})

	if got := database.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}
