package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.KnitError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const recordColumns = `id, created_at, app_version, calc_version,
	name, description, composition, gauge, currency,
	photo_mime, photo_width, photo_height, photo_data,
	inputs_json, snapshot_json`

// InsertRecord stores a new costing record.
func InsertRecord(db *sql.DB, r *costing.CostingRecord) error {
	return execInsertRecord(db, r, false)
}

// execer abstracts *sql.DB and *sql.Tx for record writes.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func execInsertRecord(e execer, r *costing.CostingRecord, replace bool) error {
	inputsJSON, snapshotJSON, err := marshalRecordBlobs(r)
	if err != nil {
		return err
	}

	var mime sql.NullString
	var width, height sql.NullInt64
	var data []byte
	if r.Photo != nil {
		mime = sql.NullString{String: r.Photo.MimeType, Valid: true}
		width = sql.NullInt64{Int64: int64(r.Photo.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(r.Photo.Height), Valid: true}
		data = r.Photo.Data
	}

	verb := "INSERT"
	if replace {
		// Backup restore uses put semantics: an existing id is replaced.
		verb = "INSERT OR REPLACE"
	}
	query := verb + ` INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = e.Exec(query,
		r.ID, r.CreatedAt, r.AppVersion, r.CalcVersion,
		r.Style.Name, r.Style.Description, r.Style.Composition, int(r.Style.Gauge), r.Style.Currency,
		mime, width, height, data,
		inputsJSON, snapshotJSON,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

func marshalRecordBlobs(r *costing.CostingRecord) (inputsJSON, snapshotJSON string, err error) {
	inputs, err := json.Marshal(r.Inputs)
	if err != nil {
		return "", "", errors.NewInternal(err)
	}
	snapshot, err := json.Marshal(r.Snapshot)
	if err != nil {
		return "", "", errors.NewInternal(err)
	}
	return string(inputs), string(snapshot), nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetRecord retrieves a record by its ULID.
func GetRecord(db *sql.DB, id string) (*costing.CostingRecord, error) {
	row := db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return r, nil
}

// ListRecords retrieves records ordered newest-first by creation
// timestamp (id as tiebreak). limit <= 0 means no limit.
func ListRecords(db *sql.DB, limit, offset int) ([]*costing.CostingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records
		ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	defer rows.Close()

	var records []*costing.CostingRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewPersistenceFailure(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailure(err)
	}
	return records, nil
}

// CountRecords returns the total number of records.
func CountRecords(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, errors.NewPersistenceFailure(err)
	}
	return n, nil
}

// DeleteRecord permanently deletes a record.
func DeleteRecord(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// BulkPutRecords stores records in a single transaction with put
// semantics (existing ids are replaced). Used by backup restore; no
// partial import is possible.
func BulkPutRecords(db *sql.DB, records []*costing.CostingRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range records {
		if err := execInsertRecord(tx, r, true); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// CommitRecord inserts a record and clears the draft slot in one
// transaction. Commit is all-or-nothing: a persistence failure leaves
// both the stored draft and the record set untouched.
func CommitRecord(db *sql.DB, r *costing.CostingRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := execInsertRecord(tx, r, false); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM drafts WHERE slot = ?`, costing.DraftSlot); err != nil {
		return errors.NewPersistenceFailure(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*costing.CostingRecord, error) {
	var r costing.CostingRecord
	var gauge int
	var mime sql.NullString
	var width, height sql.NullInt64
	var data []byte
	var inputsJSON, snapshotJSON string

	err := s.Scan(
		&r.ID, &r.CreatedAt, &r.AppVersion, &r.CalcVersion,
		&r.Style.Name, &r.Style.Description, &r.Style.Composition, &gauge, &r.Style.Currency,
		&mime, &width, &height, &data,
		&inputsJSON, &snapshotJSON,
	)
	if err != nil {
		return nil, err
	}

	r.Style.Gauge = costing.Gauge(gauge)
	if mime.Valid {
		r.Photo = &costing.PhotoRef{
			Width:    int(width.Int64),
			Height:   int(height.Int64),
			MimeType: mime.String,
			Data:     data,
		}
	}

	if err := json.Unmarshal([]byte(inputsJSON), &r.Inputs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshotJSON), &r.Snapshot); err != nil {
		return nil, err
	}
	return &r, nil
}
