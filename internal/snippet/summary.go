package snippet

// Summary represents a snippet's metadata without its content.
// Used for browse operations (list, search) to reduce data transfer.
type Summary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Language   string   `json:"language"`
	Tags       []string `json:"tags,omitempty"`
	UsageCount int      `json:"usage_count"`
	Lines      int      `json:"lines"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
	LastUsedAt *int64   `json:"last_used_at,omitempty"`
}

// ToSummary converts a Snippet to a Summary by stripping the content.
func (s *Snippet) ToSummary() Summary {
	return Summary{
		ID:         s.ID,
		Name:       s.Name,
		Language:   s.Language,
		Tags:       s.Tags,
		UsageCount: s.UsageCount,
		Lines:      CountLines(s.Content),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		LastUsedAt: s.LastUsedAt,
	}
}
