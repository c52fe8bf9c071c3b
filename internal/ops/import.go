package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int    `json:"imported"`
	Path     string `json:"path"`
}

// Import restores records from a backup file. Validation is wholesale:
// any shape failure rejects the entire file, and all records are put in
// a single transaction, so a partial import is impossible. Existing
// records with matching ids are replaced.
func Import(database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	payload, err := os.ReadFile(input.Path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFound(input.Path)
	}
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	backup, err := parseBackup(payload)
	if err != nil {
		return nil, err
	}

	records := make([]*costing.CostingRecord, 0, len(backup.Records))
	for _, b := range backup.Records {
		r, err := b.ToRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := db.BulkPutRecords(database, records); err != nil {
		return nil, err
	}

	return &ImportOutput{
		Imported: len(records),
		Path:     input.Path,
	}, nil
}

// parseBackup decodes and shape-checks a backup document.
func parseBackup(payload []byte) (*BackupFile, error) {
	var backup BackupFile
	if err := json.Unmarshal(payload, &backup); err != nil {
		return nil, errors.NewMalformedImport(fmt.Sprintf("not valid JSON: %v", err))
	}
	if !backup.KnitcostBackup {
		return nil, errors.NewMalformedImport("missing knitcost_backup marker")
	}
	if backup.SchemaVersion != BackupSchemaVersion {
		return nil, errors.NewMalformedImport(fmt.Sprintf("unsupported schema_version %q", backup.SchemaVersion))
	}
	for i, b := range backup.Records {
		if b.ID == "" {
			return nil, errors.NewMalformedImport(fmt.Sprintf("record %d: missing id", i))
		}
		if !b.Style.Gauge.IsValid() {
			return nil, errors.NewMalformedImport(fmt.Sprintf("record %s: invalid gauge %d", b.ID, b.Style.Gauge))
		}
	}
	return &backup, nil
}
