package safety

import (
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/snip/internal/prompt"
)

// PreviewLines is how many lines of flagged content the warning shows.
const PreviewLines = 5

// ConfirmMessage is asked after the warning. Only "yes" proceeds.
const ConfirmMessage = `Type "yes" to confirm execution (anything else aborts)`

// ConfirmDangerous prints a warning with a short preview of content to w and
// returns true only if the user answers "yes" (any case).
func ConfirmDangerous(content string, p prompt.Prompter, w io.Writer) (bool, error) {
	WriteWarning(w, content)

	answer, err := p.Ask(ConfirmMessage)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
}

// WriteWarning prints the boxed warning and preview.
func WriteWarning(w io.Writer, content string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║  ⚠  DANGEROUS COMMAND DETECTED               ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════╝")
	if r, ok := Match(content); ok {
		fmt.Fprintf(w, "Matched rule: %s\n", r.Name)
	}
	fmt.Fprintln(w)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if i == PreviewLines {
			fmt.Fprintf(w, "  ... (%d more lines)\n", len(lines)-PreviewLines)
			break
		}
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)
}
