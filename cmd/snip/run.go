package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/ops"
	"github.com/hpungsan/snip/internal/runner"
	"github.com/hpungsan/snip/internal/safety"
	"github.com/hpungsan/snip/internal/template"
)

// RunPrompt is asked by `snip run` before execution when confirm_run is on.
const RunPrompt = "Run snippet? (y/N)"

type executeOptions struct {
	DryRun bool
	Force  bool
	Yes    bool
	// Preview prints the resolved content before any confirmation.
	Preview bool
	// Confirm asks RunPrompt unless Yes is set or confirm_run is off.
	Confirm bool
	Values  map[string]string
}

// execute resolves, fills, gates and runs one snippet, returning its exit status.
// Declining or interrupting the run prompt returns 0. Declining or interrupting
// the danger gate returns DANGEROUS_CONTENT_BLOCKED. An interrupted variable
// prompt returns ABORTED.
func (a *appEnv) execute(ctx context.Context, ref string, opts executeOptions) (int, error) {
	s, err := ops.Resolve(ctx, a.db, ref)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(s.Content) == "" {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("snippet %q has no content", s.Name))
	}

	content, err := template.Fill(s.Content, opts.Values, a.prompter, a.stderr)
	if err != nil {
		return 0, err
	}

	if opts.Preview {
		fmt.Fprintln(a.stderr, "--- Preview ---")
		fmt.Fprintln(a.stderr, content)
		fmt.Fprintln(a.stderr, "---------------")
	}

	// The gate checks the filled content, so values supplied at run time are covered.
	if !opts.Force && safety.IsDangerous(content) {
		ok, err := safety.ConfirmDangerous(content, a.prompter, a.stderr)
		if err != nil && !errors.Is(err, errors.ErrAborted) {
			return 0, err
		}
		if !ok {
			fmt.Fprintln(a.stderr, "Aborted.")
			return 0, errors.NewDangerousContentBlocked(s.Name)
		}
	}

	engine := a.runEngine()
	if opts.DryRun {
		return engine.Run(content, runner.Options{DryRun: true}), nil
	}

	if opts.Confirm && !opts.Yes && a.cfg.ShouldConfirmRun() {
		answer, err := a.prompter.Ask(RunPrompt)
		if err != nil && !errors.Is(err, errors.ErrAborted) {
			return 0, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(a.stderr, "Aborted.")
			return 0, nil
		}
	}

	r := runner.Resolve(s.Language, a.cfg.Shell())
	logrus.WithFields(logrus.Fields{
		"snippet": s.Name,
		"runner":  r.Label(),
	}).Debug("executing snippet")

	status := engine.Run(content, runner.Options{Runner: &r})
	if status == 0 {
		if err := ops.Touch(ctx, a.db, s.ID); err != nil {
			logrus.WithError(err).Warn("failed to record snippet usage")
		}
	}
	return status, nil
}
