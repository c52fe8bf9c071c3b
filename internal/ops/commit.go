package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/schema"
	"github.com/myintmo/knitcost/internal/wizard"
)

// CommitInput contains parameters for the Commit operation.
type CommitInput struct {
	AppVersion string

	// Draft is the wizard session's in-memory draft, which stays
	// authoritative even when autosaves have been failing. When nil,
	// the stored draft slot is read instead (headless commits).
	Draft *costing.WizardDraft
}

// CommitOutput contains the result of the Commit operation.
type CommitOutput struct {
	Record *costing.CostingRecord `json:"record"`
}

// Commit builds an immutable record from the in-progress draft and
// stores it. Every step is revalidated here regardless of how the
// wizard was navigated, so a record can never be built from a draft
// that skipped validation. Insert and draft-clear happen in one
// transaction: on failure the draft stays intact for retry.
func Commit(database *sql.DB, input CommitInput) (*CommitOutput, error) {
	draft := input.Draft
	if draft == nil {
		stored, _, err := db.NewDraftStore(database).GetDraft()
		if err != nil {
			return nil, err
		}
		draft = stored
	}
	if draft == nil {
		return nil, errors.NewInvalidRequest("no costing in progress")
	}

	for _, step := range schema.Steps() {
		if err := wizard.ValidateStep(step, draft); err != nil {
			return nil, err
		}
	}

	inputs := draft.Inputs()
	// The markup applied to FOB is the fixed process constant; whatever
	// the draft carries is display seed only.
	inputs.MarkupPct, _ = costing.ParsePercent(costing.FixedMarkupPct.String())

	record := &costing.CostingRecord{
		ID:          newULID(),
		CreatedAt:   time.Now().Unix(),
		AppVersion:  input.AppVersion,
		CalcVersion: costing.CalcVersion,
		Style: costing.StyleAttrs{
			Name:        strings.TrimSpace(draft.Name),
			Description: strings.TrimSpace(draft.Description),
			Composition: strings.TrimSpace(draft.Composition),
			Gauge:       draft.Gauge,
			Currency:    draft.Currency,
		},
		Photo:    draft.Photo.Clone(),
		Inputs:   inputs,
		Snapshot: costing.Compute(inputs),
	}

	if err := db.CommitRecord(database, record); err != nil {
		return nil, err
	}

	return &CommitOutput{Record: record}, nil
}
