package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/sirupsen/logrus"
)

// DryRunMarker precedes the echoed content in dry-run output.
const DryRunMarker = "--- DRY RUN ---"

// Exit statuses produced by the engine itself.
const (
	ExitLaunchFailure = 1
	ExitNotFound      = 127
)

// Options controls a single Run.
type Options struct {
	DryRun   bool
	Language string
	// Shell replaces the default fallback shell for unrecognized languages.
	Shell string
	// Runner skips resolution when set.
	Runner *Runner
}

// Engine executes snippet content through an interpreter.
type Engine struct {
	Launcher Launcher
	Stdout   io.Writer
	Stderr   io.Writer
	// TempRoot is the parent for per-run temp directories; "" means os.TempDir().
	TempRoot string

	slot *TempSlot
}

// NewEngine returns an engine that spawns real processes with inherited stdio
// and cleans up on SIGINT/SIGTERM.
func NewEngine() *Engine {
	installSignalHandlers(ActiveTemp)
	return &Engine{
		Launcher: ExecLauncher{},
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		slot:     ActiveTemp,
	}
}

// Run executes content and returns the process exit status: the child's own
// status, 127 when the interpreter is missing, or 1 when it could not be started.
// Dry runs only echo the content and always return 0.
func (e *Engine) Run(content string, opts Options) int {
	if opts.DryRun {
		fmt.Fprintln(e.stdout(), DryRunMarker)
		fmt.Fprintln(e.stdout(), content)
		return 0
	}

	r := Resolve(opts.Language, opts.Shell)
	if opts.Runner != nil {
		r = *opts.Runner
	}
	return e.runLive(content, r)
}

func (e *Engine) runLive(content string, r Runner) int {
	dir, err := os.MkdirTemp(e.TempRoot, "snip-")
	if err != nil {
		fmt.Fprintf(e.stderr(), "Failed to create temp directory: %v\n", err)
		return ExitLaunchFailure
	}
	slot := e.tempSlot()
	slot.Register(dir)
	defer slot.Release(dir)

	file := filepath.Join(dir, "snippet."+r.Extension)
	if err := os.WriteFile(file, []byte(content), 0700); err != nil {
		fmt.Fprintf(e.stderr(), "Failed to write snippet: %v\n", err)
		return ExitLaunchFailure
	}
	// WriteFile is subject to umask
	if err := os.Chmod(file, 0700); err != nil {
		fmt.Fprintf(e.stderr(), "Failed to write snippet: %v\n", err)
		return ExitLaunchFailure
	}

	logrus.Debugf("running %s as %s", shellescape.QuoteCommand([]string{r.Command, file}), r.Label())

	code, err := e.launcher().Launch(r.Command, file)
	if err != nil {
		if IsNotFound(err) {
			fmt.Fprintf(e.stderr(), "Interpreter not found for %q: %s\n", r.Label(), r.Command)
			return ExitNotFound
		}
		fmt.Fprintf(e.stderr(), "Failed to execute snippet: %v\n", err)
		return ExitLaunchFailure
	}
	return code
}

func (e *Engine) launcher() Launcher {
	if e.Launcher == nil {
		return ExecLauncher{}
	}
	return e.Launcher
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Engine) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (e *Engine) tempSlot() *TempSlot {
	if e.slot == nil {
		return ActiveTemp
	}
	return e.slot
}
