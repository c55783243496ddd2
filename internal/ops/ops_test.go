package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func stringPtr(s string) *string {
	return &s
}

func mustAdd(t *testing.T, database *sql.DB, name, content, language string, tags ...string) string {
	t.Helper()
	out, err := Add(context.Background(), database, AddInput{
		Name:     name,
		Content:  content,
		Language: language,
		Tags:     tags,
	})
	require.NoError(t, err)
	return out.ID
}

func TestAdd(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	out, err := Add(ctx, database, AddInput{
		Name:     "Deploy API",
		Content:  "make deploy",
		Language: " Bash ",
		Tags:     []string{"ops", " OPS ", "deploy"},
	})
	require.NoError(t, err)
	require.Len(t, out.ID, 26)
	require.False(t, out.Replaced)

	s, err := db.GetByID(ctx, database, out.ID)
	require.NoError(t, err)
	require.Equal(t, "deploy api", s.NameNorm)
	require.Equal(t, "bash", s.Language)
	require.Equal(t, []string{"ops", "deploy"}, s.Tags)
	require.Zero(t, s.UsageCount)
	require.Nil(t, s.LastUsedAt)
}

func TestAdd_Validation(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	_, err := Add(ctx, database, AddInput{Name: "x"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Add(ctx, database, AddInput{Name: "  ", Content: "echo"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Add(ctx, database, AddInput{Name: "x", Content: "echo", Mode: "merge"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestAdd_NameCollision(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "hello", "echo hi", "sh")

	_, err := Add(ctx, database, AddInput{Name: " HELLO ", Content: "echo again"})
	require.True(t, errors.Is(err, errors.ErrNameAlreadyExists))

	out, err := Add(ctx, database, AddInput{Name: "Hello", Content: "echo replaced", Language: "zsh", Mode: AddModeReplace})
	require.NoError(t, err)
	require.True(t, out.Replaced)
	require.Equal(t, id, out.ID)

	s, err := db.GetByID(ctx, database, id)
	require.NoError(t, err)
	require.Equal(t, "echo replaced", s.Content)
	require.Equal(t, "zsh", s.Language)
}

func TestResolve(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "Backup DB", "pg_dump app", "sh")

	s, err := Resolve(ctx, database, id)
	require.NoError(t, err)
	require.Equal(t, "Backup DB", s.Name)

	s, err = Resolve(ctx, database, "  backup   db ")
	require.NoError(t, err)
	require.Equal(t, id, s.ID)

	_, err = Resolve(ctx, database, "restore db")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Resolve(ctx, database, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Resolve(ctx, database, " ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSuggest(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "docker-prune", "docker system prune", "sh")
	mustAdd(t, database, "git-cleanup", "git gc", "sh")

	got, err := Suggest(ctx, database, "dprune")
	require.NoError(t, err)
	require.Equal(t, "docker-prune", got)

	got, err = Suggest(ctx, database, "zzz")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFetch(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "multi", "a\nb\nc\n", "python")

	out, err := Fetch(ctx, database, FetchInput{Ref: "multi"})
	require.NoError(t, err)
	require.Equal(t, id, out.ID)
	require.Equal(t, 3, out.Lines)
	require.Equal(t, "a\nb\nc\n", out.Content)

	no := false
	out, err = Fetch(ctx, database, FetchInput{Ref: id, IncludeContent: &no})
	require.NoError(t, err)
	require.Empty(t, out.Content)
	require.Equal(t, 3, out.Lines)
}

func TestList(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "charlie", "echo c", "bash", "ops")
	mustAdd(t, database, "alpha", "print(1)", "python", "data")
	mustAdd(t, database, "bravo", "echo b", "bash", "OPS")

	out, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Equal(t, "name", out.Sort)
	require.Equal(t, 3, out.Pagination.Total)
	require.Equal(t, []string{"alpha", "bravo", "charlie"}, summaryNames(out.Items))

	out, err = List(ctx, database, ListInput{Tag: stringPtr("ops")})
	require.NoError(t, err)
	require.Equal(t, []string{"bravo", "charlie"}, summaryNames(out.Items))

	out, err = List(ctx, database, ListInput{Language: stringPtr("PYTHON")})
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, summaryNames(out.Items))

	out, err = List(ctx, database, ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.True(t, out.Pagination.HasMore)

	out, err = List(ctx, database, ListInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.False(t, out.Pagination.HasMore)

	out, err = List(ctx, database, ListInput{All: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)

	_, err = List(ctx, database, ListInput{Sort: "size"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestList_EmptyIsNotNil(t *testing.T) {
	database := setupDB(t)
	out, err := List(context.Background(), database, ListInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Empty(t, out.Items)
}

func TestList_SortUsage(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "rare", "echo r", "sh")
	often := mustAdd(t, database, "often", "echo o", "sh")

	require.NoError(t, Touch(ctx, database, often))
	require.NoError(t, Touch(ctx, database, often))

	out, err := List(ctx, database, ListInput{Sort: "usage"})
	require.NoError(t, err)
	require.Equal(t, []string{"often", "rare"}, summaryNames(out.Items))
	require.Equal(t, 2, out.Items[0].UsageCount)
}

func TestUpdate(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "greet", "echo hi", "sh", "demo")
	mustAdd(t, database, "other", "echo other", "sh")

	tags := []string{"new"}
	out, err := Update(ctx, database, UpdateInput{
		Ref:      "greet",
		Name:     stringPtr("Greet World"),
		Content:  stringPtr("echo hello world"),
		Language: stringPtr("Bash"),
		Tags:     &tags,
	})
	require.NoError(t, err)
	require.Equal(t, id, out.ID)

	s, err := db.GetByID(ctx, database, id)
	require.NoError(t, err)
	require.Equal(t, "greet world", s.NameNorm)
	require.Equal(t, "echo hello world", s.Content)
	require.Equal(t, "bash", s.Language)
	require.Equal(t, []string{"new"}, s.Tags)

	_, err = Update(ctx, database, UpdateInput{Ref: id, Name: stringPtr("OTHER")})
	require.True(t, errors.Is(err, errors.ErrNameAlreadyExists))

	_, err = Update(ctx, database, UpdateInput{Ref: id})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Update(ctx, database, UpdateInput{Ref: id, Content: stringPtr("")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestDelete(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "temp", "echo temp", "sh")

	out, err := Delete(ctx, database, DeleteInput{Ref: "temp"})
	require.NoError(t, err)
	require.True(t, out.Deleted)
	require.Equal(t, id, out.ID)

	_, err = Fetch(ctx, database, FetchInput{Ref: id})
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Delete(ctx, database, DeleteInput{Ref: "temp"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestTouch(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	id := mustAdd(t, database, "t", "echo", "sh")

	require.NoError(t, Touch(ctx, database, id))

	s, err := db.GetByID(ctx, database, id)
	require.NoError(t, err)
	require.Equal(t, 1, s.UsageCount)
	require.NotNil(t, s.LastUsedAt)

	err = Touch(ctx, database, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
