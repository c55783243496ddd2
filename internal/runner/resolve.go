// Package runner turns snippet content into a running interpreter process.
package runner

import (
	"fmt"
	"os"
	"strings"
)

// Kind identifies which interpreter family a Runner belongs to.
type Kind string

const (
	KindShell      Kind = "shell"
	KindJavaScript Kind = "javascript"
	KindTypeScript Kind = "typescript"
	KindPython     Kind = "python"
	KindRuby       Kind = "ruby"
	KindPHP        Kind = "php"
	KindPerl       Kind = "perl"
	KindPowerShell Kind = "powershell"
	KindFallback   Kind = "fallback"
)

// Runner is the interpreter command and file extension used for one execution.
type Runner struct {
	Command   string
	Extension string
	Kind      Kind
	// Requested is the unrecognized language a fallback runner stands in for.
	Requested string
}

// Label describes the runner for diagnostics, e.g. "python" or "fallback(lua)".
func (r Runner) Label() string {
	if r.Kind == KindFallback {
		return fmt.Sprintf("fallback(%s)", r.Requested)
	}
	return string(r.Kind)
}

var shells = []string{"sh", "bash", "zsh", "ksh", "fish"}

var interpreters = map[string]Runner{
	"js":         {Command: "node", Extension: "js", Kind: KindJavaScript},
	"javascript": {Command: "node", Extension: "js", Kind: KindJavaScript},
	"node":       {Command: "node", Extension: "js", Kind: KindJavaScript},
	"mjs":        {Command: "node", Extension: "js", Kind: KindJavaScript},
	"cjs":        {Command: "node", Extension: "js", Kind: KindJavaScript},
	"ts":         {Command: "tsx", Extension: "ts", Kind: KindTypeScript},
	"typescript": {Command: "tsx", Extension: "ts", Kind: KindTypeScript},
	"tsx":        {Command: "tsx", Extension: "ts", Kind: KindTypeScript},
	"python":     {Command: "python3", Extension: "py", Kind: KindPython},
	"py":         {Command: "python3", Extension: "py", Kind: KindPython},
	"ruby":       {Command: "ruby", Extension: "rb", Kind: KindRuby},
	"rb":         {Command: "ruby", Extension: "rb", Kind: KindRuby},
	"php":        {Command: "php", Extension: "php", Kind: KindPHP},
	"perl":       {Command: "perl", Extension: "pl", Kind: KindPerl},
	"pl":         {Command: "perl", Extension: "pl", Kind: KindPerl},
	"powershell": {Command: "pwsh", Extension: "ps1", Kind: KindPowerShell},
	"ps1":        {Command: "pwsh", Extension: "ps1", Kind: KindPowerShell},
}

func init() {
	for _, sh := range shells {
		interpreters[sh] = Runner{Command: sh, Extension: sh, Kind: KindShell}
	}
}

// Languages returns the recognized language tags.
func Languages() []string {
	out := make([]string, 0, len(interpreters))
	for lang := range interpreters {
		out = append(out, lang)
	}
	return out
}

// Resolve maps a language tag to its Runner. Matching is exact after trimming
// and lowercasing. Unknown languages run under shellFallback, then $SHELL, then sh.
// An empty language is treated as plain shell content.
func Resolve(language, shellFallback string) Runner {
	lang := strings.ToLower(strings.TrimSpace(language))
	if r, ok := interpreters[lang]; ok {
		return r
	}

	shell := strings.TrimSpace(shellFallback)
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "sh"
	}

	r := Runner{Command: shell, Extension: "sh", Kind: KindFallback, Requested: lang}
	if lang == "" {
		r.Kind = KindShell
	}
	return r
}
