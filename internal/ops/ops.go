// Package ops implements the snippet store operations shared by the CLI,
// the MCP server and the web UI.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
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

// Resolve looks a snippet up by ULID first, then by normalized name.
func Resolve(ctx context.Context, database *sql.DB, ref string) (*snippet.Snippet, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewInvalidRequest("snippet id or name is required")
	}

	if _, err := ulid.ParseStrict(ref); err == nil {
		s, err := db.GetByID(ctx, database, ref)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	s, err := db.GetByName(ctx, database, snippet.Normalize(ref))
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.NewNotFound(ref)
	}
	return s, err
}

// Suggest returns the stored name closest to ref, or "" when nothing is close.
func Suggest(ctx context.Context, database *sql.DB, ref string) (string, error) {
	all, _, err := db.List(ctx, database, db.ListFilters{}, db.SortName, 0, 0)
	if err != nil {
		return "", err
	}
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return closestMatch(ref, names), nil
}

// closestMatch returns the candidate with the lowest fuzzy distance to target.
func closestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// cleanOptionalString trims s and returns nil if it is empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
