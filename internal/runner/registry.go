package runner

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// TempSlot holds the single temp directory that is live while a snippet runs.
// The engine and the signal handler both release it, so Release and Clear are
// idempotent.
type TempSlot struct {
	mu  sync.Mutex
	dir string
}

// ActiveTemp is the process-wide slot watched by the signal handler.
var ActiveTemp = &TempSlot{}

// Register records dir as the live temp directory.
func (s *TempSlot) Register(dir string) {
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
}

// Current returns the registered directory, or "".
func (s *TempSlot) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Release removes dir and unregisters it if it is still the live directory.
func (s *TempSlot) Release(dir string) {
	s.mu.Lock()
	if s.dir == dir {
		s.dir = ""
	}
	s.mu.Unlock()
	removeDir(dir)
}

// Clear removes whichever directory is registered and empties the slot.
func (s *TempSlot) Clear() {
	s.mu.Lock()
	dir := s.dir
	s.dir = ""
	s.mu.Unlock()
	if dir != "" {
		removeDir(dir)
	}
}

func removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logrus.WithError(err).Warnf("failed to remove temp directory %s", dir)
	}
}
