package ops

import (
	"database/sql"

	"github.com/myintmo/knitcost/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []RecordSummary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List retrieves record summaries, newest first, with pagination.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	records, err := db.ListRecords(database, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := db.CountRecords(database)
	if err != nil {
		return nil, err
	}

	// Empty array rather than nil in JSON output.
	items := make([]RecordSummary, 0, len(records))
	for _, r := range records {
		items = append(items, Summarize(r))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
