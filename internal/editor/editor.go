// Package editor opens content in the user's editor and reads it back.
package editor

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/snip/internal/runner"
)

// launcher runs the editor process. Tests swap it out.
var launcher runner.Launcher = runner.ExecLauncher{}

// Open writes initial to a private temp file, runs editorCmd on it with
// inherited stdio, and returns the edited bytes.
func Open(editorCmd string, initial []byte) ([]byte, error) {
	return OpenExt(editorCmd, initial, "txt")
}

// OpenExt is Open with the temp file extension set, so editors pick a syntax mode.
func OpenExt(editorCmd string, initial []byte, ext string) ([]byte, error) {
	args, err := shellwords.Parse(editorCmd)
	if err != nil {
		return nil, fmt.Errorf("parse editor command %q: %w", editorCmd, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}

	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "txt"
	}

	f, err := os.CreateTemp("", "snip-edit-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).Debugf("editor: failed to remove %s", path)
		}
	}()

	if err := f.Chmod(0600); err != nil {
		f.Close()
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := f.Write(initial); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	argv := append(args[1:], path)
	logrus.Debugf("editor: %s %v", args[0], argv)
	code, err := launcher.Launch(args[0], argv...)
	if err != nil {
		return nil, fmt.Errorf("run editor %q: %w", args[0], err)
	}
	if code != 0 {
		return nil, fmt.Errorf("editor %q exited with status %d", args[0], code)
	}

	return os.ReadFile(path)
}
