package snippet

// Snippet is a named, tagged unit of stored text content with a language label.
type Snippet struct {
	// ID is a ULID that uniquely identifies this snippet
	ID string `json:"id"`

	// Name is the name as provided by the user
	Name string `json:"name"`

	// NameNorm is the normalized name used for lookups (unique)
	NameNorm string `json:"name_norm"`

	// Content is the snippet body that gets executed
	Content string `json:"content"`

	// Language selects the interpreter ("" falls back to the default shell)
	Language string `json:"language"`

	// Tags is a list of labels (stored as JSON in DB)
	Tags []string `json:"tags"`

	// UsageCount is incremented after every successful run
	UsageCount int `json:"usage_count"`

	// CreatedAt is the Unix timestamp when the snippet was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the snippet was last updated
	UpdatedAt int64 `json:"updated_at"`

	// LastUsedAt is the Unix timestamp of the last successful run (nullable)
	LastUsedAt *int64 `json:"last_used_at,omitempty"`
}

// HasTag reports whether the snippet carries tag (case-insensitive).
func (s *Snippet) HasTag(tag string) bool {
	tag = Normalize(tag)
	for _, t := range s.Tags {
		if Normalize(t) == tag {
			return true
		}
	}
	return false
}
