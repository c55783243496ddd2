package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

func summaryNames(items []snippet.Summary) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Name
	}
	return out
}

func resultNames(items []SearchResultItem) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Name
	}
	return out
}

func TestSearch_Ranking(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "cleanup", "docker system prune -f", "sh")
	mustAdd(t, database, "docker-logs", "docker logs -f web", "sh")
	mustAdd(t, database, "restart", "systemctl restart app", "sh", "docker")

	out, err := Search(ctx, database, SearchInput{Query: "docker"})
	require.NoError(t, err)
	require.Equal(t, "relevance", out.Sort)
	require.Equal(t, 3, out.Total)
	require.Equal(t, []string{"docker-logs", "restart", "cleanup"}, resultNames(out.Items))

	require.Equal(t, MatchName, out.Items[0].Field)
	require.Equal(t, MatchTag, out.Items[1].Field)
	require.Equal(t, "docker", out.Items[1].Match)
	require.Equal(t, MatchContent, out.Items[2].Field)
	require.Equal(t, "docker system prune -f", out.Items[2].Match)
}

func TestSearch_FuzzyName(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "kubectl-get-pods", "kubectl get pods", "sh")
	mustAdd(t, database, "git-log", "git log --oneline", "sh")

	out, err := Search(ctx, database, SearchInput{Query: "kgp"})
	require.NoError(t, err)
	require.Equal(t, []string{"kubectl-get-pods"}, resultNames(out.Items))
}

func TestSearch_FiltersAndLimit(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	mustAdd(t, database, "py-one", "print(1)", "python", "demo")
	mustAdd(t, database, "py-two", "print(2)", "python")
	mustAdd(t, database, "sh-one", "echo print", "sh", "demo")

	out, err := Search(ctx, database, SearchInput{Query: "print", Language: stringPtr("python")})
	require.NoError(t, err)
	require.Equal(t, []string{"py-one", "py-two"}, resultNames(out.Items))

	out, err = Search(ctx, database, SearchInput{Query: "print", Tag: stringPtr("demo")})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"py-one", "sh-one"}, resultNames(out.Items))

	out, err = Search(ctx, database, SearchInput{Query: "print", Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Equal(t, 3, out.Total)
}

func TestSearch_Validation(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	_, err := Search(ctx, database, SearchInput{Query: "  "})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Search(ctx, database, SearchInput{Query: strings.Repeat("a", MaxQueryLength+1)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestTruncateLine(t *testing.T) {
	require.Equal(t, "short", truncateLine("short", 10))
	require.Equal(t, "héllo...", truncateLine("héllo world", 5))
}
