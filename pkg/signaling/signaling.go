// Package signaling delivers signals to single processes and, where the OS
// offers it, kills whole process trees natively.
package signaling

import (
	"context"
	"strconv"
	"strings"
	"syscall"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// Signal is the platform signal number
type Signal = syscall.Signal

// Sender delivers a signal to one process. A process that no longer exists is
// reported as a NotFound error.
type Sender interface {
	Send(pid int, sig Signal) error
}

// NativeTreeKiller terminates a process and all its descendants in one OS call
type NativeTreeKiller interface {
	KillTree(ctx context.Context, pid int) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(pid int, sig Signal) error

func (f SenderFunc) Send(pid int, sig Signal) error {
	return f(pid, sig)
}

// ParseSignal accepts "SIGKILL", "KILL", "kill" or a signal number
func ParseSignal(name string) (Signal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.NewValidationError("signal cannot be empty", nil)
	}

	if n, err := strconv.Atoi(name); err == nil {
		if n <= 0 {
			return 0, errors.NewValidationError("signal number must be positive: "+name, nil)
		}
		return Signal(n), nil
	}

	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}

	sig, ok := lookupSignal(upper)
	if !ok {
		return 0, errors.NewValidationError("unknown signal: "+name, nil)
	}
	return sig, nil
}
