package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// UpdateInput contains parameters for the Update operation.
// Nil fields are left unchanged.
type UpdateInput struct {
	Ref      string // id or name
	Name     *string
	Content  *string
	Language *string
	Tags     *[]string
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updated_at"`
}

// Update modifies an existing snippet.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	if input.Name == nil && input.Content == nil && input.Language == nil && input.Tags == nil {
		return nil, errors.NewInvalidRequest("at least one of name, content, language, tags is required")
	}

	s, err := Resolve(ctx, database, input.Ref)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		nameNorm := snippet.Normalize(*input.Name)
		if nameNorm == "" {
			return nil, errors.NewInvalidRequest("name must not be empty")
		}
		s.Name = *input.Name
		s.NameNorm = nameNorm
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, errors.NewInvalidRequest("content must not be empty")
		}
		s.Content = *input.Content
	}
	if input.Language != nil {
		s.Language = snippet.NormalizeLanguage(*input.Language)
	}
	if input.Tags != nil {
		s.Tags = snippet.CleanTags(*input.Tags)
	}

	if err := db.UpdateByID(ctx, database, s); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(s.Name)
		}
		return nil, err
	}

	return &UpdateOutput{ID: s.ID, Name: s.Name, UpdatedAt: s.UpdatedAt}, nil
}
