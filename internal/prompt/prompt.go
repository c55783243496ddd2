// Package prompt reads single-line answers from the user.
//
// Interactive terminals get survey-rendered prompts; piped stdin falls back to
// plain line reads so snippets can be driven from scripts.
package prompt

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"

	"github.com/hpungsan/snip/internal/errors"
)

// Prompter asks a question and returns the raw answer.
// An interrupted prompt returns an ErrAborted error.
type Prompter interface {
	Ask(message string) (string, error)
}

// New returns a survey prompter when in is a terminal, otherwise a line prompter.
// Prompt text goes to out so stdout stays clean for snippet output.
func New(in *os.File, out *os.File) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &SurveyPrompter{In: in, Out: out}
	}
	return NewLinePrompter(in, out)
}

// SurveyPrompter renders prompts with survey on a terminal.
type SurveyPrompter struct {
	In  terminal.FileReader
	Out terminal.FileWriter
}

// Ask implements Prompter.
func (p *SurveyPrompter) Ask(message string) (string, error) {
	var answer string
	err := survey.AskOne(
		&survey.Input{Message: message},
		&answer,
		survey.WithStdio(p.In, p.Out, p.Out),
	)
	if stderrors.Is(err, terminal.InterruptErr) {
		return "", errors.NewAborted()
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

// LinePrompter reads newline-terminated answers from a plain reader.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask implements Prompter. EOF yields an empty answer.
func (p *LinePrompter) Ask(message string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Scripted answers prompts from a fixed list, recording every message asked.
// Once the answers run out it returns empty strings.
type Scripted struct {
	Answers []string
	Asked   []string
}

// Ask implements Prompter.
func (s *Scripted) Ask(message string) (string, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Answers) == 0 {
		return "", nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
