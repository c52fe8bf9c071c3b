package ops

import (
	"database/sql"
	"strings"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

// ComputeInput contains parameters for the Compute operation.
type ComputeInput struct {
	ID string
}

// ComputeOutput contains the result of the Compute operation.
type ComputeOutput struct {
	ID          string                   `json:"id"`
	CalcVersion string                   `json:"calc_version"`
	Stored      costing.ComputedSnapshot `json:"stored"`
	Current     costing.ComputedSnapshot `json:"current"`
	Match       bool                     `json:"match"`
}

// Compute reruns the cost pipeline on a record's stored inputs and
// compares the result against the frozen snapshot. The two match for
// any record committed under the current CalcVersion; a mismatch flags
// a record from an older pipeline revision.
func Compute(database *sql.DB, input ComputeInput) (*ComputeOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetRecord(database, id)
	if err != nil {
		return nil, err
	}

	current := costing.Compute(r.Inputs)
	return &ComputeOutput{
		ID:          r.ID,
		CalcVersion: r.CalcVersion,
		Stored:      r.Snapshot,
		Current:     current,
		Match:       r.Snapshot.Equal(current),
	}, nil
}
