package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/runner"
	"github.com/hpungsan/snip/internal/safety"
	"github.com/hpungsan/snip/internal/template"
)

// InspectInput contains parameters for the Inspect operation.
type InspectInput struct {
	Ref string // id or name
}

// InspectVariable is a template variable as reported by Inspect.
type InspectVariable struct {
	Name    string  `json:"name"`
	Default *string `json:"default,omitempty"`
	Raw     string  `json:"raw"`
}

// InspectOutput describes how a snippet would run, without running it.
type InspectOutput struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Language    string            `json:"language"`
	Runner      string            `json:"runner"`
	Command     string            `json:"command"`
	Extension   string            `json:"extension"`
	Dangerous   bool              `json:"dangerous"`
	MatchedRule string            `json:"matched_rule,omitempty"`
	Variables   []InspectVariable `json:"variables"`
}

// Inspect resolves the runner, danger verdict and template variables of a snippet.
func Inspect(ctx context.Context, database *sql.DB, cfg *config.Config, input InspectInput) (*InspectOutput, error) {
	s, err := Resolve(ctx, database, input.Ref)
	if err != nil {
		return nil, err
	}

	r := runner.Resolve(s.Language, cfg.Shell())
	out := &InspectOutput{
		ID:        s.ID,
		Name:      s.Name,
		Language:  s.Language,
		Runner:    r.Label(),
		Command:   r.Command,
		Extension: r.Extension,
		Variables: make([]InspectVariable, 0),
	}

	if rule, ok := safety.Match(s.Content); ok {
		out.Dangerous = true
		out.MatchedRule = rule.Name
	}

	for _, v := range template.ExtractVariables(s.Content) {
		out.Variables = append(out.Variables, InspectVariable{Name: v.Name, Default: v.Default, Raw: v.Raw})
	}
	return out, nil
}
