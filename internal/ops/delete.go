package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/snip/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Ref string // id or name
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

// Delete permanently removes a snippet.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	s, err := Resolve(ctx, database, input.Ref)
	if err != nil {
		return nil, err
	}

	if err := db.DeleteByID(ctx, database, s.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      s.ID,
		Name:    s.Name,
	}, nil
}
