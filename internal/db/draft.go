package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

// DraftStore is the SQLite-backed draft collaborator for the wizard.
// It owns the single fixed slot: the "at most one draft" rule is
// enforced by the primary key, not by globals.
type DraftStore struct {
	db *sql.DB
}

// NewDraftStore creates a DraftStore over an initialized database.
func NewDraftStore(db *sql.DB) *DraftStore {
	return &DraftStore{db: db}
}

// GetDraft returns the stored draft and step index, or (nil, 0, nil)
// when the slot is empty.
func (s *DraftStore) GetDraft() (*costing.WizardDraft, int, error) {
	var payload string
	var stepIndex int
	err := s.db.QueryRow(
		`SELECT payload, step_index FROM drafts WHERE slot = ?`,
		costing.DraftSlot,
	).Scan(&payload, &stepIndex)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, errors.NewPersistenceFailure(err)
	}

	var draft costing.WizardDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, 0, errors.NewPersistenceFailure(err)
	}
	return &draft, stepIndex, nil
}

// PutDraft stores the draft and step index, overwriting the slot.
func (s *DraftStore) PutDraft(d *costing.WizardDraft, stepIndex int) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = s.db.Exec(`
		INSERT INTO drafts (slot, payload, step_index, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			step_index = excluded.step_index,
			updated_at = excluded.updated_at`,
		costing.DraftSlot, string(payload), stepIndex, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}

// ClearDraft empties the slot. Clearing an already-empty slot is not
// an error.
func (s *DraftStore) ClearDraft() error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE slot = ?`, costing.DraftSlot); err != nil {
		return errors.NewPersistenceFailure(err)
	}
	return nil
}
