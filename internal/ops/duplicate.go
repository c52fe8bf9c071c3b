package ops

import (
	"database/sql"
	"strings"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

// DuplicateInput contains parameters for the Duplicate operation.
type DuplicateInput struct {
	ID string
}

// DuplicateOutput contains the result of the Duplicate operation.
type DuplicateOutput struct {
	SourceID  string `json:"source_id"`
	StepIndex int    `json:"step_index"`
}

// Duplicate seeds a fresh draft from a stored record, overwriting the
// draft slot. Records are immutable; correcting one means duplicating
// it, editing the draft, and committing a brand-new record. The wizard
// restarts at the style step with every field pre-filled from the
// record's stored raw entries.
func Duplicate(database *sql.DB, input DuplicateInput) (*DuplicateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetRecord(database, id)
	if err != nil {
		return nil, err
	}

	draft := costing.NewDraft(r.Style.Currency)
	draft.Name = r.Style.Name
	draft.Description = r.Style.Description
	draft.Composition = r.Style.Composition
	draft.Gauge = r.Style.Gauge
	draft.Photo = r.Photo.Clone()

	draft.WeightGrams = r.Inputs.WeightGrams.Raw()
	draft.YarnPricePerPound = r.Inputs.YarnPricePerPound.Raw()
	draft.WastagePct = r.Inputs.WastagePct.Raw()
	draft.AccessoriesPerDozen = r.Inputs.AccessoriesPerDozen.Raw()
	draft.FabricPerDozen = r.Inputs.FabricPerDozen.Raw()
	draft.FabricCostPerDozen = r.Inputs.FabricCostPerDozen.Raw()
	draft.FabricAttachPerDozen = r.Inputs.FabricAttachPerDozen.Raw()
	draft.KnitMinutes = r.Inputs.KnitMinutes.Raw()
	draft.CutMakePerDozen = r.Inputs.CutMakePerDozen.Raw()
	if raw := r.Inputs.MarkupPct.Raw(); raw != "" {
		draft.MarkupPct = raw
	}

	if err := db.NewDraftStore(database).PutDraft(draft, 0); err != nil {
		return nil, err
	}

	return &DuplicateOutput{
		SourceID:  id,
		StepIndex: 0,
	}, nil
}
