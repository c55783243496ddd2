package ops

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// Search limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	MaxQueryLength     = 200
	MaxMatchChars      = 120
)

// Match fields, in ranking order.
const (
	MatchName    = "name"
	MatchTag     = "tag"
	MatchContent = "content"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query    string  // required
	Tag      *string // optional filter
	Language *string // optional filter
	Limit    int     // default: 20, max: 100
}

// SearchResultItem wraps a Summary with where the query matched.
type SearchResultItem struct {
	snippet.Summary
	Field    string `json:"field"`
	Distance int    `json:"distance"`
	// Match is the matching tag or content line, empty for name matches.
	Match string `json:"match,omitempty"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Sort  string             `json:"sort"` // "relevance"
}

// Search fuzzy-matches the query against names and tags, and substring-matches
// content lines. Name hits rank before tag hits before content hits; within a
// field, lower edit distance ranks first.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	var filters db.ListFilters
	filters.Tag = cleanOptionalString(input.Tag)
	if lang := cleanOptionalString(input.Language); lang != nil {
		normalized := snippet.NormalizeLanguage(*lang)
		filters.Language = &normalized
	}

	all, _, err := db.List(ctx, database, filters, db.SortName, 0, 0)
	if err != nil {
		return nil, err
	}

	items := rankSnippets(query, all)
	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}

	return &SearchOutput{
		Items: items,
		Total: total,
		Sort:  "relevance",
	}, nil
}

func rankSnippets(query string, all []*snippet.Snippet) []SearchResultItem {
	items := make([]SearchResultItem, 0)
	lowerQuery := strings.ToLower(query)

	for _, s := range all {
		item := SearchResultItem{Summary: s.ToSummary()}

		if d := fuzzy.RankMatchFold(query, s.Name); d >= 0 {
			item.Field, item.Distance = MatchName, d
			items = append(items, item)
			continue
		}

		if ranks := fuzzy.RankFindFold(query, s.Tags); len(ranks) > 0 {
			sort.Sort(ranks)
			item.Field, item.Distance, item.Match = MatchTag, ranks[0].Distance, ranks[0].Target
			items = append(items, item)
			continue
		}

		for _, line := range strings.Split(s.Content, "\n") {
			if idx := strings.Index(strings.ToLower(line), lowerQuery); idx >= 0 {
				item.Field, item.Distance = MatchContent, idx
				item.Match = truncateLine(strings.TrimSpace(line), MaxMatchChars)
				items = append(items, item)
				break
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		fi, fj := fieldRank(items[i].Field), fieldRank(items[j].Field)
		if fi != fj {
			return fi < fj
		}
		if items[i].Distance != items[j].Distance {
			return items[i].Distance < items[j].Distance
		}
		return items[i].UsageCount > items[j].UsageCount
	})
	return items
}

func fieldRank(field string) int {
	switch field {
	case MatchName:
		return 0
	case MatchTag:
		return 1
	default:
		return 2
	}
}

// truncateLine shortens s to at most maxChars runes, appending "..." when cut.
func truncateLine(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + "..."
}
