// Package ops implements the costing operations exposed by the CLI,
// the web UI, and the MCP server: commit, list, get, delete, duplicate,
// compute, export, and import. Each operation is a pure function over
// the database with an Input/Output struct pair; surfaces only decode
// arguments and encode results.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/myintmo/knitcost/internal/costing"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// RecordSummary is the listing view of a costing record: identity,
// style headline, and the two per-piece money figures. The photo blob
// is flagged, not carried.
type RecordSummary struct {
	ID            string        `json:"id"`
	CreatedAt     int64         `json:"created_at"`
	Name          string        `json:"name"`
	Gauge         costing.Gauge `json:"gauge"`
	Currency      string        `json:"currency"`
	FOBPerPiece   string        `json:"fob_per_piece"`
	FinalPerPiece string        `json:"final_per_piece"`
	HasPhoto      bool          `json:"has_photo"`
}

// Summarize projects a record onto its listing summary.
func Summarize(r *costing.CostingRecord) RecordSummary {
	return RecordSummary{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Name:          r.Style.Name,
		Gauge:         r.Style.Gauge,
		Currency:      r.Style.Currency,
		FOBPerPiece:   r.Snapshot.FOBPerPiece.StringFixed(2),
		FinalPerPiece: r.Snapshot.FinalPerPiece.StringFixed(2),
		HasPhoto:      r.Photo != nil,
	}
}

// newULID generates a new ULID.
func newULID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// clampLimit applies the list limit default and bound.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
