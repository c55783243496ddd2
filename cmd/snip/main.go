package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/editor"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/prompt"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return true
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	env := &appEnv{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdinTTY: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		prompter: prompt.New(os.Stdin, os.Stderr),
		edit:     editor.OpenExt,
	}

	// Help and version need no database
	if !isHelpOrVersion(os.Args) {
		baseDir, err := config.BaseDir()
		if err != nil {
			fatal(err)
		}
		database, err := db.Init(baseDir)
		if err != nil {
			fatal(fmt.Errorf("failed to initialize database: %w", err))
		}
		defer database.Close()

		cfg, err := config.Load(baseDir)
		if err != nil {
			fatal(fmt.Errorf("failed to load config: %w", err))
		}
		db.ConfigurePool(database, cfg)

		env.db = database
		env.cfg = cfg
		env.baseDir = baseDir
	}

	err := newCLIApp(env).Run(os.Args)
	if err == nil {
		return
	}
	code := errors.ExitFailure
	if exitErr, ok := err.(cli.ExitCoder); ok {
		code = exitErr.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	if env.db != nil {
		env.db.Close()
	}
	os.Exit(code)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(errors.ExitFailure)
}
