package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Tag      *string
	Language *string
	Sort     string // name (default), usage, recent
	Limit    int    // default: 20, max: 100
	Offset   int    // default: 0
	All      bool   // ignore Limit/Offset and return every match
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []snippet.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List retrieves snippet summaries with optional filters and pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	sortBy := input.Sort
	if sortBy == "" {
		sortBy = db.SortName
	}
	if sortBy != db.SortName && sortBy != db.SortUsage && sortBy != db.SortRecent {
		return nil, errors.NewInvalidRequest("sort must be one of: name, usage, recent")
	}

	var filters db.ListFilters
	filters.Tag = cleanOptionalString(input.Tag)
	if lang := cleanOptionalString(input.Language); lang != nil {
		normalized := snippet.NormalizeLanguage(*lang)
		filters.Language = &normalized
	}

	limit, offset := 0, 0
	if !input.All {
		limit = input.Limit
		if limit <= 0 {
			limit = DefaultListLimit
		}
		if limit > MaxListLimit {
			limit = MaxListLimit
		}
		offset = max(input.Offset, 0)
	}

	rows, total, err := db.List(ctx, database, filters, sortBy, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]snippet.Summary, 0, len(rows))
	for _, s := range rows {
		items = append(items, s.ToSummary())
	}

	if input.All {
		limit = len(items)
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: sortBy,
	}, nil
}
