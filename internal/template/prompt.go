package template

import (
	"fmt"
	"io"

	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/prompt"
)

// PromptAndInterpolate asks for every variable in content and substitutes the answers.
func PromptAndInterpolate(content string, p prompt.Prompter, w io.Writer) (string, error) {
	return Fill(content, nil, p, w)
}

// Fill substitutes preset values and prompts for the remaining variables.
// An empty answer takes the default. A variable without a default is asked
// once more; a second empty answer returns ErrRequiredVariableMissing.
// An interrupted prompt returns the prompter's ErrAborted unchanged.
func Fill(content string, preset map[string]string, p prompt.Prompter, w io.Writer) (string, error) {
	if !HasVariables(content) {
		return content, nil
	}
	vars := ExtractVariables(content)

	values := make(map[string]string, len(vars))
	var pending []Variable
	for _, v := range vars {
		if val, ok := preset[v.Name]; ok && val != "" {
			values[v.Name] = val
			continue
		}
		pending = append(pending, v)
	}

	if len(pending) > 0 {
		fmt.Fprintln(w, "Fill in template variables:")
	}
	for _, v := range pending {
		val, err := ask(v, p, w)
		if err != nil {
			return "", err
		}
		values[v.Name] = val
	}

	return Interpolate(content, values), nil
}

func ask(v Variable, p prompt.Prompter, w io.Writer) (string, error) {
	msg := "  " + v.Name
	if v.Default != nil {
		msg = fmt.Sprintf("  %s [%s]", v.Name, *v.Default)
	}

	answer, err := p.Ask(msg)
	if err != nil {
		return "", err
	}
	if answer != "" {
		return answer, nil
	}
	if v.Default != nil {
		return *v.Default, nil
	}

	fmt.Fprintf(w, "  (%s is required; enter a value or press Ctrl+C to abort)\n", v.Name)
	answer, err = p.Ask(msg)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", errors.NewRequiredVariableMissing(v.Name)
	}
	return answer, nil
}
