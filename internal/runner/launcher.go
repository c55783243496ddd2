package runner

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
)

// Launcher starts a process and waits for it. A non-nil error means the process
// could not be started; a process that ran and failed reports its status with a
// nil error.
type Launcher interface {
	Launch(name string, args ...string) (int, error)
}

// LaunchFunc adapts a function to the Launcher interface.
type LaunchFunc func(name string, args ...string) (int, error)

// Launch implements Launcher.
func (f LaunchFunc) Launch(name string, args ...string) (int, error) {
	return f(name, args...)
}

// ExecLauncher runs commands with os/exec. Nil streams inherit the caller's stdio.
type ExecLauncher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launch implements Launcher.
func (l ExecLauncher) Launch(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = orReader(l.Stdin, os.Stdin)
	cmd.Stdout = orWriter(l.Stdout, os.Stdout)
	cmd.Stderr = orWriter(l.Stderr, os.Stderr)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return 1, nil
	}
	return -1, err
}

// IsNotFound reports whether a launch error means the interpreter binary is missing.
func IsNotFound(err error) bool {
	return stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist)
}

func orReader(r io.Reader, def *os.File) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func orWriter(w io.Writer, def *os.File) io.Writer {
	if w != nil {
		return w
	}
	return def
}
