// Package template finds and fills {{name}} and {{name:default}} placeholders
// in snippet content.
package template

import (
	"os"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^}]*))?\}\}`)

// Variable is a placeholder found in content.
type Variable struct {
	Name string
	// Default is the resolved default value, nil when the token has none.
	Default *string
	// Raw is the token text as written, e.g. "{{image:ubuntu:24.04}}".
	Raw string
}

// defaultValue is the parsed form of the text after the colon.
// "$NAME" refers to an environment variable; anything else is literal.
type defaultValue struct {
	envRef bool
	text   string
}

func parseDefault(text string) defaultValue {
	if strings.HasPrefix(text, "$") && len(text) > 1 {
		return defaultValue{envRef: true, text: text}
	}
	return defaultValue{text: text}
}

// resolve returns the environment value for an env reference, falling back to
// the literal text (including the "$") when the variable is unset or empty.
func (d defaultValue) resolve() string {
	if d.envRef {
		if v := os.Getenv(d.text[1:]); v != "" {
			return v
		}
	}
	return d.text
}

type token struct {
	start, end int
	name       string
	def        *defaultValue
}

func scan(content string) []token {
	matches := tokenPattern.FindAllStringSubmatchIndex(content, -1)
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		t := token{start: m[0], end: m[1], name: content[m[2]:m[3]]}
		if m[4] >= 0 {
			d := parseDefault(content[m[4]:m[5]])
			t.def = &d
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ExtractVariables returns the placeholders in content in order of first
// appearance, one per name. The first occurrence's default wins.
func ExtractVariables(content string) []Variable {
	var vars []Variable
	seen := make(map[string]bool)
	for _, t := range scan(content) {
		if seen[t.name] {
			continue
		}
		seen[t.name] = true

		v := Variable{Name: t.name, Raw: content[t.start:t.end]}
		if t.def != nil {
			resolved := t.def.resolve()
			v.Default = &resolved
		}
		vars = append(vars, v)
	}
	return vars
}

// HasVariables reports whether content contains at least one placeholder.
func HasVariables(content string) bool {
	return tokenPattern.MatchString(content)
}

// Interpolate replaces each placeholder with its non-empty value from values,
// else its default. Placeholders with neither are left as written.
func Interpolate(content string, values map[string]string) string {
	tokens := scan(content)
	if len(tokens) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, t := range tokens {
		b.WriteString(content[last:t.start])
		last = t.end

		if v := values[t.name]; v != "" {
			b.WriteString(v)
			continue
		}
		if t.def != nil {
			b.WriteString(t.def.resolve())
			continue
		}
		b.WriteString(content[t.start:t.end])
	}
	b.WriteString(content[last:])
	return b.String()
}
