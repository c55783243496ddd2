package runner

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

var (
	signalOnce sync.Once
	exitFunc   = os.Exit
)

// installSignalHandlers arranges for SIGINT and SIGTERM to remove the live temp
// directory before the process exits. Safe to call more than once.
func installSignalHandlers(slot *TempSlot) {
	signalOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-ch
			exitFunc(handleSignal(slot, sig))
		}()
	})
}

// handleSignal cleans up the slot and returns the exit status for sig.
func handleSignal(slot *TempSlot, sig os.Signal) int {
	logrus.Debugf("received %s, cleaning up", sig)
	slot.Clear()
	return signalExitCode(sig)
}

// signalExitCode follows the 128+N shell convention.
func signalExitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return 130
	case syscall.SIGTERM:
		return 143
	}
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
