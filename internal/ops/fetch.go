package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/snip/internal/snippet"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Ref            string // id or name
	IncludeContent *bool  // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	snippet.Snippet     // embedded (copy, not pointer)
	Lines           int `json:"lines"`
}

// Fetch retrieves a snippet by ID or name.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	s, err := Resolve(ctx, database, input.Ref)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Snippet: *s,
		Lines:   snippet.CountLines(s.Content),
	}
	if input.IncludeContent != nil && !*input.IncludeContent {
		output.Content = ""
	}
	return output, nil
}
