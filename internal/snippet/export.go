package snippet

// ExportRecord represents a snippet record in JSONL export format.
// It is used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for header line
	SnipExport bool `json:"_snip_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Content    string   `json:"content"`
	Language   string   `json:"language"`
	Tags       []string `json:"tags"`
	UsageCount int      `json:"usage_count"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
	LastUsedAt *int64   `json:"last_used_at"`
}

// ToSnippet converts an ExportRecord to a Snippet, recomputing derived fields.
func (r *ExportRecord) ToSnippet() *Snippet {
	return &Snippet{
		ID:         r.ID,
		Name:       r.Name,
		NameNorm:   Normalize(r.Name),
		Content:    r.Content,
		Language:   NormalizeLanguage(r.Language),
		Tags:       CleanTags(r.Tags),
		UsageCount: max(r.UsageCount, 0),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		LastUsedAt: r.LastUsedAt,
	}
}

// ToExportRecord converts a Snippet to an ExportRecord for export.
func ToExportRecord(s *Snippet) *ExportRecord {
	return &ExportRecord{
		ID:         s.ID,
		Name:       s.Name,
		Content:    s.Content,
		Language:   s.Language,
		Tags:       s.Tags,
		UsageCount: s.UsageCount,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		LastUsedAt: s.LastUsedAt,
	}
}
