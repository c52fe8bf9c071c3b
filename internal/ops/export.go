package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

// BackupSchemaVersion is the backup document schema revision.
const BackupSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path       string // optional, default: <baseDir>/exports/knitcost-<timestamp>.json
	AppVersion string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// BackupFile is the on-disk backup document: a single JSON object
// carrying every record with photos inline.
type BackupFile struct {
	KnitcostBackup bool           `json:"knitcost_backup"`
	SchemaVersion  string         `json:"schema_version"`
	ExportedAt     int64          `json:"exported_at"`
	AppVersion     string         `json:"app_version"`
	CalcVersion    string         `json:"calc_version"`
	Records        []BackupRecord `json:"records"`
}

// BackupPhoto is a photo encoded for the backup document.
type BackupPhoto struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MimeType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64"`
}

// BackupRecord is one record in the backup document. Inputs keep their
// original string form so an export/import round-trip reproduces every
// record exactly, blank-vs-zero distinctions included.
type BackupRecord struct {
	ID          string                   `json:"id"`
	CreatedAt   int64                    `json:"created_at"`
	AppVersion  string                   `json:"app_version"`
	CalcVersion string                   `json:"calc_version"`
	Style       costing.StyleAttrs       `json:"style"`
	Photo       *BackupPhoto             `json:"photo,omitempty"`
	Inputs      costing.CostInputs       `json:"inputs"`
	Snapshot    costing.ComputedSnapshot `json:"snapshot"`
}

// ToBackupRecord converts a stored record into its backup form.
func ToBackupRecord(r *costing.CostingRecord) BackupRecord {
	b := BackupRecord{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		AppVersion:  r.AppVersion,
		CalcVersion: r.CalcVersion,
		Style:       r.Style,
		Inputs:      r.Inputs,
		Snapshot:    r.Snapshot,
	}
	if r.Photo != nil {
		b.Photo = &BackupPhoto{
			Width:      r.Photo.Width,
			Height:     r.Photo.Height,
			MimeType:   r.Photo.MimeType,
			DataBase64: base64.StdEncoding.EncodeToString(r.Photo.Data),
		}
	}
	return b
}

// ToRecord converts a backup record back into a stored record,
// decoding the inline photo.
func (b BackupRecord) ToRecord() (*costing.CostingRecord, error) {
	r := &costing.CostingRecord{
		ID:          b.ID,
		CreatedAt:   b.CreatedAt,
		AppVersion:  b.AppVersion,
		CalcVersion: b.CalcVersion,
		Style:       b.Style,
		Inputs:      b.Inputs,
		Snapshot:    b.Snapshot,
	}
	if b.Photo != nil {
		data, err := base64.StdEncoding.DecodeString(b.Photo.DataBase64)
		if err != nil {
			return nil, errors.NewMalformedImport(fmt.Sprintf("record %s: photo is not valid base64", b.ID))
		}
		r.Photo = &costing.PhotoRef{
			Width:    b.Photo.Width,
			Height:   b.Photo.Height,
			MimeType: b.Photo.MimeType,
			Data:     data,
		}
	}
	return r, nil
}

// Export writes every record to a backup JSON file. The file is
// written to a temp path and renamed into place, so a failed export
// never clobbers an existing backup. baseDir supplies the default
// exports directory.
func Export(database *sql.DB, baseDir string, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		filename := fmt.Sprintf("knitcost-%s.json", now.Format("2006-01-02T150405"))
		exportPath = filepath.Join(baseDir, "exports", filename)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	records, err := db.ListRecords(database, 0, 0)
	if err != nil {
		return nil, err
	}

	backup := BackupFile{
		KnitcostBackup: true,
		SchemaVersion:  BackupSchemaVersion,
		ExportedAt:     exportedAt,
		AppVersion:     input.AppVersion,
		CalcVersion:    costing.CalcVersion,
		Records:        make([]BackupRecord, 0, len(records)),
	}
	for _, r := range records {
		backup.Records = append(backup.Records, ToBackupRecord(r))
	}

	payload, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	// Write to temp file first, then atomic rename to preserve any
	// existing file on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(payload); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if err := os.Rename(tempPath, exportPath); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(backup.Records),
		ExportedAt: exportedAt,
	}, nil
}
