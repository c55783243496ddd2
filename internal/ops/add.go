package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// AddMode controls collision behavior.
type AddMode string

const (
	AddModeError   AddMode = "error"   // default: fail on name collision
	AddModeReplace AddMode = "replace" // overwrite content of the existing snippet
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Name     string // required
	Content  string // required
	Language string
	Tags     []string
	Mode     AddMode // default: AddModeError
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Replaced bool   `json:"replaced,omitempty"`
}

// Add creates a snippet, or replaces an existing one with the same name in replace mode.
func Add(ctx context.Context, database *sql.DB, input AddInput) (*AddOutput, error) {
	if input.Content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	nameNorm := snippet.Normalize(input.Name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if input.Mode == "" {
		input.Mode = AddModeError
	}
	if input.Mode != AddModeError && input.Mode != AddModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	if input.Mode == AddModeReplace {
		existing, err := db.GetByName(ctx, database, nameNorm)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			existing.Content = input.Content
			existing.Language = snippet.NormalizeLanguage(input.Language)
			existing.Tags = snippet.CleanTags(input.Tags)
			if err := db.UpdateByID(ctx, database, existing); err != nil {
				return nil, err
			}
			return &AddOutput{ID: existing.ID, Name: existing.Name, Replaced: true}, nil
		}
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	s := &snippet.Snippet{
		ID:        id,
		Name:      input.Name,
		NameNorm:  nameNorm,
		Content:   input.Content,
		Language:  snippet.NormalizeLanguage(input.Language),
		Tags:      snippet.CleanTags(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Insert(ctx, database, s); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(input.Name)
		}
		return nil, err
	}

	return &AddOutput{ID: id, Name: s.Name}, nil
}
