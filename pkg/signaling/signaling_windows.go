//go:build windows

package signaling

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/processstate"
)

const (
	SIGKILL = syscall.SIGKILL
	SIGTERM = syscall.SIGTERM
	SIGINT  = syscall.SIGINT
)

var windowsSignals = map[string]Signal{
	"SIGKILL": syscall.SIGKILL,
	"SIGTERM": syscall.SIGTERM,
	"SIGINT":  syscall.SIGINT,
}

func lookupSignal(name string) (Signal, bool) {
	sig, ok := windowsSignals[name]
	return sig, ok
}

type processSender struct{}

// NewSender returns a Sender that terminates processes. Windows has no signals,
// so every signal is delivered as TerminateProcess.
func NewSender() Sender {
	return processSender{}
}

func (processSender) Send(pid int, sig Signal) error {
	if pid <= 0 {
		return errors.NewValidationError("refusing to signal non-positive PID", nil).WithContext("pid", pid)
	}

	running, err := processstate.IsProcessRunning(pid)
	if err == nil && !running {
		return errors.NewNotFoundError("no such process", nil).WithContext("pid", pid)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.NewNotFoundError("no such process", err).WithContext("pid", pid)
	}
	defer process.Release()

	if err := process.Kill(); err != nil {
		if err == os.ErrProcessDone {
			return errors.NewNotFoundError("no such process", err).WithContext("pid", pid)
		}
		return errors.NewSignalError("terminate failed", err).WithContext("pid", pid)
	}
	return nil
}

type taskkill struct{}

// NewNativeTreeKiller returns a killer backed by "taskkill /T /F"
func NewNativeTreeKiller() NativeTreeKiller {
	return taskkill{}
}

func (taskkill) KillTree(ctx context.Context, pid int) error {
	if pid <= 0 {
		return errors.NewValidationError("refusing to kill non-positive PID", nil).WithContext("pid", pid)
	}

	cmd := exec.CommandContext(ctx, "taskkill", "/PID", strconv.Itoa(pid), "/T", "/F")
	output, err := cmd.CombinedOutput()
	if err != nil {
		// exit status 128: "process not found"
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 128 {
			return errors.NewNotFoundError("no such process", err).WithContext("pid", pid)
		}
		return errors.NewSignalError("taskkill failed", err).
			WithContext("pid", pid).
			WithContext("output", strings.TrimSpace(string(output)))
	}
	return nil
}
