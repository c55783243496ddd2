package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.SnipError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// Sort orders accepted by List.
const (
	SortName   = "name"
	SortUsage  = "usage"
	SortRecent = "recent"
)

const selectColumns = `
	SELECT id, name, name_norm, content, language, tags_json,
		usage_count, created_at, updated_at, last_used_at
	FROM snippets
`

// ListFilters narrows a List query. Nil fields are not applied.
type ListFilters struct {
	Tag      *string
	Language *string
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Insert stores a new snippet in the database.
func Insert(ctx context.Context, q Querier, s *snippet.Snippet) error {
	tagsJSON, err := toTagsJSON(s.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO snippets (
			id, name, name_norm, content, language, tags_json,
			usage_count, created_at, updated_at, last_used_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = q.ExecContext(ctx, query,
		s.ID, s.Name, s.NameNorm, s.Content, s.Language, tagsJSON,
		s.UsageCount, s.CreatedAt, s.UpdatedAt, toNullInt64(s.LastUsedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// Replace inserts s or overwrites the row with the same ID.
// Used by import in replace mode.
func Replace(ctx context.Context, q Querier, s *snippet.Snippet) error {
	tagsJSON, err := toTagsJSON(s.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO snippets (
			id, name, name_norm, content, language, tags_json,
			usage_count, created_at, updated_at, last_used_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_norm = excluded.name_norm,
			content = excluded.content,
			language = excluded.language,
			tags_json = excluded.tags_json,
			usage_count = excluded.usage_count,
			updated_at = excluded.updated_at,
			last_used_at = excluded.last_used_at
	`

	_, err = q.ExecContext(ctx, query,
		s.ID, s.Name, s.NameNorm, s.Content, s.Language, tagsJSON,
		s.UsageCount, s.CreatedAt, s.UpdatedAt, toNullInt64(s.LastUsedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a snippet by its ULID.
func GetByID(ctx context.Context, q Querier, id string) (*snippet.Snippet, error) {
	row := q.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	s, err := scanSnippet(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// GetByName retrieves a snippet by normalized name.
func GetByName(ctx context.Context, q Querier, nameNorm string) (*snippet.Snippet, error) {
	row := q.QueryRowContext(ctx, selectColumns+" WHERE name_norm = ?", nameNorm)
	s, err := scanSnippet(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// CheckNameExists checks if a snippet with the given normalized name exists.
func CheckNameExists(ctx context.Context, q Querier, nameNorm string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM snippets WHERE name_norm = ? LIMIT 1", nameNorm).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// List returns snippets matching filters, ordered by sort, plus the unpaginated total.
// A limit <= 0 returns every matching row.
func List(ctx context.Context, q Querier, filters ListFilters, sort string, limit, offset int) ([]*snippet.Snippet, int, error) {
	where, args := buildWhere(filters)

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM snippets"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := selectColumns + where + " ORDER BY " + orderBy(sort)
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var result []*snippet.Snippet
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return result, total, nil
}

// buildWhere renders filters as a WHERE clause with positional args.
func buildWhere(filters ListFilters) (string, []any) {
	var clauses []string
	var args []any

	if filters.Tag != nil {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(snippets.tags_json) WHERE lower(json_each.value) = ?)")
		args = append(args, strings.ToLower(*filters.Tag))
	}
	if filters.Language != nil {
		clauses = append(clauses, "language = ?")
		args = append(args, *filters.Language)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(sort string) string {
	switch sort {
	case SortUsage:
		return "usage_count DESC, last_used_at DESC, name_norm ASC"
	case SortRecent:
		return "COALESCE(last_used_at, updated_at) DESC, name_norm ASC"
	default:
		return "name_norm ASC"
	}
}

// UpdateByID updates mutable fields of an existing snippet.
// Sets updated_at to current timestamp.
func UpdateByID(ctx context.Context, q Querier, s *snippet.Snippet) error {
	tagsJSON, err := toTagsJSON(s.Tags)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	query := `
		UPDATE snippets
		SET name = ?, name_norm = ?, content = ?, language = ?, tags_json = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := q.ExecContext(ctx, query,
		s.Name, s.NameNorm, s.Content, s.Language, tagsJSON, now,
		s.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	if err := requireOneRow(result, s.ID); err != nil {
		return err
	}

	s.UpdatedAt = now
	return nil
}

// TouchUsage increments usage_count and stamps last_used_at for a snippet.
func TouchUsage(ctx context.Context, q Querier, id string, at time.Time) error {
	result, err := q.ExecContext(ctx,
		"UPDATE snippets SET usage_count = usage_count + 1, last_used_at = ? WHERE id = ?",
		at.Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireOneRow(result, id)
}

// DeleteByID permanently removes a snippet.
func DeleteByID(ctx context.Context, q Querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM snippets WHERE id = ?", id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireOneRow(result, id)
}

func requireOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanSnippet scans a single row into a Snippet struct.
func scanSnippet(row scanner) (*snippet.Snippet, error) {
	var (
		s          snippet.Snippet
		tagsJSON   sql.NullString
		lastUsedAt sql.NullInt64
	)

	err := row.Scan(
		&s.ID, &s.Name, &s.NameNorm, &s.Content, &s.Language, &tagsJSON,
		&s.UsageCount, &s.CreatedAt, &s.UpdatedAt, &lastUsedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastUsedAt.Valid {
		s.LastUsedAt = &lastUsedAt.Int64
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &s.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", s.ID, err)
		}
	}

	return &s, nil
}

// toTagsJSON converts tags to a nullable JSON column value.
func toTagsJSON(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullInt64 converts a *int64 to sql.NullInt64.
func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
