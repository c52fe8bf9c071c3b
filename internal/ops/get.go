package ops

import (
	"database/sql"
	"strings"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID           string
	IncludePhoto bool
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	costing.CostingRecord // embedded (copy, not pointer)
}

// Get retrieves a record by ID. The returned record is a deep copy:
// stored records are immutable and must never be reachable through an
// alias a caller could mutate.
func Get(database *sql.DB, input GetInput) (*GetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetRecord(database, id)
	if err != nil {
		return nil, err
	}

	out := &GetOutput{CostingRecord: *r.Clone()}
	if !input.IncludePhoto {
		out.Photo = nil
	}
	return out, nil
}
